// Package reports builds read-only views over stored pipeline output.
package reports

import (
	"context"
	"fmt"

	"github.com/okian/piste/internal/domain/model"
)

// Source reads stored rows.
type Source interface {
	FetchAll(ctx context.Context, table string, filters model.Row) ([]model.Row, error)
}

// Reports answers report queries against a Source.
type Reports struct {
	src Source
}

// New creates Reports over src.
func New(src Source) *Reports {
	return &Reports{src: src}
}

func (r *Reports) fetch(ctx context.Context, table string, filters model.Row) ([]model.Row, error) {
	rows, err := r.src.FetchAll(ctx, table, filters)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return rows, nil
}

// competitionsIn returns the folded names of competitions whose PisteYear is year.
func (r *Reports) competitionsIn(ctx context.Context, year int) (map[string]model.Competition, error) {
	rows, err := r.fetch(ctx, model.TableCompetitions, nil)
	if err != nil {
		return nil, err
	}
	out := map[string]model.Competition{}
	for _, row := range rows {
		c := model.CompetitionFromRow(row)
		if c.PisteYear == year {
			out[foldName(c.Name)] = c
		}
	}
	return out, nil
}
