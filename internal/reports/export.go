package reports

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
)

// Export kinds.
const (
	ExportSoc      = "soc"
	ExportAthletes = "athletes"
)

var athleteColumns = []string{ //nolint:gochecknoglobals // fixed export layout
	"id", "first_name", "last_name", "full_name", "birthdate", "sex", "club", "nationalteam", "vintage", "category",
}

func socColumns() []string {
	cols := []string{"athlete_id", "first_name", "last_name", "pisteyear", "age", "category"}
	cols = append(cols, model.Contributions...)
	return append(cols,
		"totalpoints", "pisteminregio", "pisteminnational",
		"CompPointsNationalTeam", "CompPointsRegionalTeam", "talentcard")
}

// Table is an export: ordered columns and rows.
type Table struct {
	Columns []string
	Rows    []model.Row
}

// Export returns the rows of kind. For soc a non-zero year restricts the rows to that year.
// Rows are ordered by last name, first name and year.
func (r *Reports) Export(ctx context.Context, kind string, year int) (*Table, error) {
	var (
		table   string
		columns []string
		filters model.Row
	)
	switch natkey.Fold(kind) {
	case ExportSoc:
		table, columns = model.TableSocValues, socColumns()
		if year > 0 {
			filters = model.Row{"pisteyear": year}
		}
	case ExportAthletes:
		table, columns = model.TableAthletes, athleteColumns
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExport, kind)
	}

	rows, err := r.fetch(ctx, table, filters)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if k1, k2 := natkey.Fold(a.String("last_name")), natkey.Fold(b.String("last_name")); k1 != k2 {
			return k1 < k2
		}
		if k1, k2 := natkey.Fold(a.String("first_name")), natkey.Fold(b.String("first_name")); k1 != k2 {
			return k1 < k2
		}
		y1, _ := a.Int("pisteyear")
		y2, _ := b.Int("pisteyear")
		return y1 < y2
	})
	return &Table{Columns: columns, Rows: rows}, nil
}
