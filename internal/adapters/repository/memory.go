package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/piste/internal/domain/model"
)

// MemoryStore keeps tables in process. Rows are copied on the way in and out.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]model.Row
	closed bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: map[string][]model.Row{}}
}

// Fetch implements Store.
func (s *MemoryStore) Fetch(ctx context.Context, table string, filters model.Row, page Page) ([]model.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(table, filters); err != nil {
		return nil, err
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	var out []model.Row
	skipped := 0
	for _, row := range s.tables[table] {
		if !matches(row, filters) {
			continue
		}
		if skipped < page.Offset {
			skipped++
			continue
		}
		out = append(out, row.Clone())
		if len(out) == page.Limit {
			break
		}
	}
	return out, nil
}

// Upsert implements Store.
func (s *MemoryStore) Upsert(ctx context.Context, table string, key, fields model.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(key) == 0 {
		return fmt.Errorf("%w: table %s", ErrEmptyKey, table)
	}
	if err := validate(table, key, fields); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	updated := false
	for _, row := range s.tables[table] {
		if matches(row, key) {
			row.Merge(fields.Clone())
			updated = true
		}
	}
	if !updated {
		s.tables[table] = append(s.tables[table], newRow(key, fields))
	}
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, table string, filters model.Row) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := validate(table, filters); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	rows := s.tables[table]
	kept := rows[:0]
	removed := 0
	for _, row := range rows {
		if matches(row, filters) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	s.tables[table] = kept
	return removed, nil
}

// Count returns the number of rows in a table.
func (s *MemoryStore) Count(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
