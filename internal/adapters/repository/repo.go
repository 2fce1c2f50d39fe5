package repository

import (
	"context"
	"time"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/pkg/metrics"
)

// Repo wraps a Store with paging and metrics. It satisfies Store itself.
type Repo struct {
	store    Store
	pageSize int
}

var _ Store = (*Repo)(nil)

// NewRepo wraps s.
func NewRepo(s Store, opts ...Option) *Repo {
	r := &Repo{store: s, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PageSize returns the page size FetchAll uses.
func (r *Repo) PageSize() int { return r.pageSize }

// Fetch reads one page.
func (r *Repo) Fetch(ctx context.Context, table string, filters model.Row, page Page) ([]model.Row, error) {
	start := time.Now()
	rows, err := r.store.Fetch(ctx, table, filters, page)
	metrics.RecordStoreOp("fetch", sinceMs(start), err)
	return rows, err
}

// FetchAll pages through every matching row, stopping at the first short page.
func (r *Repo) FetchAll(ctx context.Context, table string, filters model.Row) ([]model.Row, error) {
	var out []model.Row
	for offset := 0; ; offset += r.pageSize {
		rows, err := r.Fetch(ctx, table, filters, Page{Offset: offset, Limit: r.pageSize})
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
		if len(rows) < r.pageSize {
			return out, nil
		}
	}
}

// Upsert updates matching rows or inserts one.
func (r *Repo) Upsert(ctx context.Context, table string, key, fields model.Row) error {
	start := time.Now()
	err := r.store.Upsert(ctx, table, key, fields)
	metrics.RecordStoreOp("upsert", sinceMs(start), err)
	return err
}

// Delete removes matching rows.
func (r *Repo) Delete(ctx context.Context, table string, filters model.Row) (int, error) {
	start := time.Now()
	n, err := r.store.Delete(ctx, table, filters)
	metrics.RecordStoreOp("delete", sinceMs(start), err)
	return n, err
}

// Replace deletes every row matching key and inserts fields merged with key.
// Derived aggregates use it so a rerun never leaves two rows for one key.
func (r *Repo) Replace(ctx context.Context, table string, key, fields model.Row) error {
	if _, err := r.Delete(ctx, table, key); err != nil {
		return err
	}
	return r.Upsert(ctx, table, key, fields)
}

// Close closes the wrapped store.
func (r *Repo) Close() error { return r.store.Close() }

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
