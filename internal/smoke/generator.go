package smoke

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/piste/internal/adapters/tabular"
	"github.com/okian/piste/internal/domain/model"
)

const randomFloatDivisor = 1000000

// Generated athletes are 9 to 18 years old in the piste year.
const (
	minAge   = 9
	ageRange = 10
)

var (
	firstNames = []string{"Anna", "Ben", "Clara", "David", "Emma", "Felix", "Greta", "Hugo", "Ida", "Jonas"} //nolint:gochecknoglobals // name pool
	clubs      = []string{"SC Nord", "SV Süd", "TSV Ost", "DSC West"}                                    //nolint:gochecknoglobals // club pool
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomInt(n int) int {
	return int(getRandomFloat() * float64(n))
}

// generateAthletes creates n athletes with distinct last names, so no two
// share a person key.
func generateAthletes(n, year int) []Athlete {
	out := make([]Athlete, n)
	for i := range out {
		age := minAge + randomInt(ageRange)
		sex := "female"
		if i%2 == 1 {
			sex = "male"
		}
		out[i] = Athlete{
			FirstName: firstNames[randomInt(len(firstNames))],
			LastName:  "Smoke-" + uuid.NewString()[:8],
			Birthdate: fmt.Sprintf("%04d-%02d-%02d", year-age, 1+randomInt(12), 1+randomInt(28)),
			Sex:       sex,
			Club:      clubs[randomInt(len(clubs))],
		}
	}
	return out
}

// athleteRows renders the athletes import table.
func athleteRows(athletes []Athlete) ([]string, []model.Row) {
	cols := []string{"first_name", "last_name", "birthdate", "sex", "club", "nationalteam"}
	rows := make([]model.Row, 0, len(athletes))
	for _, a := range athletes {
		rows = append(rows, model.Row{
			"first_name":   a.FirstName,
			"last_name":    a.LastName,
			"birthdate":    a.Birthdate,
			"sex":          a.Sex,
			"club":         a.Club,
			"nationalteam": "no",
		})
	}
	return cols, rows
}

// pisteRows renders one piste result row per athlete. About one value in
// twenty is the no-result sentinel and a few are left blank.
func pisteRows(athletes []Athlete, year int) ([]string, []model.Row) {
	cols := append([]string{"first_name", "last_name", "birthdate", "pisteyear"}, model.PisteDisciplines...)
	rows := make([]model.Row, 0, len(athletes))
	for _, a := range athletes {
		row := model.Row{
			"first_name": a.FirstName,
			"last_name":  a.LastName,
			"birthdate":  a.Birthdate,
			"pisteyear":  year,
		}
		for _, d := range model.PisteDisciplines {
			switch p := getRandomFloat(); {
			case p < 0.05:
				row[d] = model.SentinelNoResult
			case p < 0.1:
			default:
				row[d] = strconv.FormatFloat(1+getRandomFloat()*99, 'f', 1, 64)
			}
		}
		rows = append(rows, row)
	}
	return cols, rows
}

// batches splits rows into chunks of at most size rows.
func batches(rows []model.Row, size int) [][]model.Row {
	if size <= 0 {
		size = len(rows)
	}
	var out [][]model.Row
	for len(rows) > 0 {
		n := min(size, len(rows))
		out = append(out, rows[:n])
		rows = rows[n:]
	}
	return out
}

func encodeCSV(cols []string, rows []model.Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := tabular.Write(&buf, tabular.CSV, cols, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
