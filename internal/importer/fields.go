package importer

import (
	"fmt"
	"strings"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
	"github.com/okian/piste/internal/domain/numeric"
)

// record is an input row with column names folded by natkey.Column.
type record map[string]any

func normalize(r model.Row) record {
	out := make(record, len(r))
	for k, v := range r {
		out[natkey.Column(k)] = v
	}
	return out
}

func (r record) row() model.Row { return model.Row(r) }

// str returns the first non-blank value among names.
func (r record) str(names ...string) string {
	for _, n := range names {
		if s := r.row().String(natkey.Column(n)); s != "" {
			return s
		}
	}
	return ""
}

func (r record) num(names ...string) (float64, bool) {
	for _, n := range names {
		if v, ok := numeric.Parse(r[natkey.Column(n)]); ok {
			return v, true
		}
	}
	return 0, false
}

// year reads the evaluation year under any of its historic column names.
func (r record) year() (int, bool) {
	v, ok := r.num("pisteyear", "PisteYear", "Testjahr", "TestYear", "year")
	if !ok || v <= 0 || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}

// missing lists the required names without a value.
func (r record) missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if r.str(n) == "" {
			out = append(out, n)
		}
	}
	return out
}

// requireColumns fails when a column is absent from every row.
func requireColumns(rows []record, columns ...string) error {
	var absent []string
	for _, c := range columns {
		key := natkey.Column(c)
		found := false
		for _, r := range rows {
			if _, ok := r[key]; ok {
				found = true
				break
			}
		}
		if !found {
			absent = append(absent, c)
		}
	}
	if len(absent) > 0 && len(rows) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(absent, ", "))
	}
	return nil
}
