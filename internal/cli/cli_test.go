package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/piste/internal/adapters/repository"
	"github.com/okian/piste/internal/cli"
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/reports"
)

func execute(repo *repository.Repo, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := cli.NewRootCommand(cli.WithRepo(repo))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommands(t *testing.T) {
	Convey("Given pistectl over a memory store", t, func() {
		ctx := context.Background()
		repo := repository.NewRepo(repository.NewMemoryStore())
		athletes := writeFile(t, "athletes.csv",
			"first_name,last_name,birthdate,sex,club,nationalteam\n"+
				"Anna,Muster,10.02.2012,female,SC Nord,no\n"+
				"Ben,Beispiel,2013-05-01,male,SC Süd,no\n"+
				"Anna,Muster,10.02.2012,female,SC Nord,no\n")

		Convey("When athletes are imported", func() {
			out, err := execute(repo, "import", "--kind", "athletes", athletes)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "athletes: stored 2, skipped 1")

			rows, err := repo.FetchAll(ctx, model.TableAthletes, nil)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)

			Convey("Then a run reports its stages", func() {
				out, err := execute(repo, "run", "--stage", "piste", "--year", "2025")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "STAGE")
				So(out, ShouldContainSubstring, "piste")
			})

			Convey("Then the athletes export lists them", func() {
				out, err := execute(repo, "export", "athletes")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Muster")
				So(out, ShouldContainSubstring, "Beispiel")
			})

			Convey("Then one can be deleted by id", func() {
				id := rows[0].String("id")
				out, err := execute(repo, "delete-athlete", id)
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "and 0 piste results")

				_, err = execute(repo, "delete-athlete", id)
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When talent cards are listed as JSON", func() {
			So(repo.Upsert(ctx, model.TableSocValues,
				model.Row{"athlete_id": "a1", "pisteyear": 2025},
				model.Row{"first_name": "Anna", "last_name": "Muster", "totalpoints": 42.5, "talentcard": "Regional"}), ShouldBeNil)

			out, err := execute(repo, "talentcards", "--year", "2025", "--json")
			So(err, ShouldBeNil)
			var sum reports.TalentCardSummary
			So(json.Unmarshal([]byte(out), &sum), ShouldBeNil)
			So(sum.Counts["Regional"], ShouldEqual, 1)
		})

		Convey("When arguments are invalid", func() {
			_, err := execute(repo, "import", "--kind", "medals", athletes)
			So(err, ShouldNotBeNil)

			_, err = execute(repo, "run", "--stage", "warmup", "--year", "2025")
			So(err, ShouldNotBeNil)

			_, err = execute(repo, "run", "--stage", "soc")
			So(err, ShouldNotBeNil)

			_, err = execute(repo, "export", "medals")
			So(err, ShouldNotBeNil)

			_, err = execute(repo, "selections", "--year", "2025", "--flag", "olympics")
			So(err, ShouldNotBeNil)
		})
	})
}
