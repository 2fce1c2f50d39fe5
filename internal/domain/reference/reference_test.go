package reference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/reference"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSource struct {
	tables map[string][]model.Row
	fail   string
	reads  []string
}

func (f *fakeSource) FetchAll(_ context.Context, table string, _ model.Row) ([]model.Row, error) {
	f.reads = append(f.reads, table)
	if table == f.fail {
		return nil, errors.New("backend down")
	}
	return f.tables[table], nil
}

func seeded() *fakeSource {
	return &fakeSource{tables: map[string][]model.Row{
		model.TableAgeCategories: {
			{"min_age": 0, "max_age": 12, "category": "Jugend D"},
			{"min_age": "13", "max_age": "15", "category": "Jugend C"},
			{"category": "Catch all"},
		},
		model.TableScoreTables: {
			{"discipline": "JumpHeight", "category": "Jugend C", "sex": "Female", "result_min": "30", "result_max": "40", "points": "12"},
		},
		model.TableSelectionPoints: {
			{"Competition": "JEM", "Discipline": "3m", "category": "Jugend A", "sex": "Female", "points": 300},
			{"Competition": "JEM", "Discipline": "3m", "category": "Jugend A", "sex": "Female", "points": 999},
		},
		model.TableAgeDives: {
			{"sex": "female", "category": "jugend a", "Discipline": "3M", "dives": 8},
		},
		model.TableRefCompPoints: {
			{"Discipline": "3m", "sex": "female", "14": 320, "quality14": 40},
		},
		model.TableRefMinPoints: {
			{"age": 14, "regio_min": 300, "national_min": 500},
		},
		model.TableRefTrainingSince: {{"age": 14, "6": 18}},
		model.TableRefTrainingTime:  {{"age": 14, "12": 9}},
		model.TableCompetitions: {
			{"name": "Junior Cup", "PisteYear": 2025, "qual-JEM": "yes"},
			{"name": "Old Cup", "PisteYear": 2024},
		},
	}}
}

func TestLoad(t *testing.T) {
	Convey("Given a source with every reference table", t, func() {
		src := seeded()

		Convey("When loading", func() {
			tables, err := reference.Load(context.Background(), src)
			So(err, ShouldBeNil)

			Convey("Then bands keep defaults and order", func() {
				So(len(tables.Bands), ShouldEqual, 3)
				So(tables.Bands[2].MinAge, ShouldEqual, 0)
				So(tables.Bands[2].MaxAge, ShouldEqual, 99)
				c, ok := tables.Category(2011, 2025)
				So(ok, ShouldBeTrue)
				So(c, ShouldEqual, "Jugend C")
			})

			Convey("Then the score engine is built", func() {
				So(tables.Scores.Lookup("JumpHeight", 35, "Jugend C", "female").Points(), ShouldEqual, 12)
			})

			Convey("Then joins are case and space insensitive", func() {
				th, ok := tables.Threshold(model.TierJEM, "female", " 3m", "JUGEND A")
				So(ok, ShouldBeTrue)
				So(*th.Points, ShouldEqual, 300)
				d, ok := tables.Dives("Female", "Jugend A", "3m")
				So(ok, ShouldBeTrue)
				So(d, ShouldEqual, 8)
			})

			Convey("Then age-indexed tables resolve", func() {
				ref, ok := tables.RefPoints("3m", "Female", 14)
				So(ok, ShouldBeTrue)
				So(ref, ShouldEqual, 320)
				q, ok := tables.Quality("3m", "female", 14)
				So(ok, ShouldBeTrue)
				So(q, ShouldEqual, 40)
				_, ok = tables.Quality("3m", "female", 15)
				So(ok, ShouldBeFalse)
				m, ok := tables.MinPoints(14)
				So(ok, ShouldBeTrue)
				So(*m.NationalMin, ShouldEqual, 500)
				v, ok := tables.TrainingSince(14, 6)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 18)
				v, ok = tables.TrainingTime(14, 12)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 9)
			})

			Convey("Then competitions are indexed by name and year", func() {
				c, ok := tables.Competition("junior cup")
				So(ok, ShouldBeTrue)
				So(c.Qualifies[model.TierJEM], ShouldBeTrue)
				So(len(tables.CompetitionsIn(2025)), ShouldEqual, 1)
			})
		})

		Convey("When a table read fails", func() {
			src.fail = model.TableAgeDives
			_, err := reference.Load(context.Background(), src)

			Convey("Then the load error names the table", func() {
				So(errors.Is(err, reference.ErrLoad), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, model.TableAgeDives)
			})
		})
	})
}
