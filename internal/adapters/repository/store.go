// Package repository implements the generic tabular data store: equality
// filtered paged reads, upserts by natural key and filtered deletes.
package repository

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/numeric"
)

// DefaultPageSize is the fixed page size of FetchAll.
const DefaultPageSize = 1000

// Page selects a window of a filtered, insertion-ordered table.
type Page struct {
	Offset int
	Limit  int
}

// Store is the data store contract. Filters match by equality; a nil filter
// value matches an absent or null field. Rows come back in insertion order.
type Store interface {
	// Fetch returns at most page.Limit matching rows starting at page.Offset.
	Fetch(ctx context.Context, table string, filters model.Row, page Page) ([]model.Row, error)
	// Upsert merges fields into every row matching key, or inserts key+fields
	// as a new row when none matches. Inserted rows get an "id" when absent.
	Upsert(ctx context.Context, table string, key, fields model.Row) error
	// Delete removes matching rows and reports how many were removed.
	Delete(ctx context.Context, table string, filters model.Row) (int, error)
	// Close releases the store.
	Close() error
}

var (
	tablePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	columnPattern = regexp.MustCompile(`^[A-Za-z0-9_%\- ]+$`)
)

func validate(table string, rows ...model.Row) error {
	if !tablePattern.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	for _, r := range rows {
		for col := range r {
			if !columnPattern.MatchString(col) {
				return fmt.Errorf("%w: %q", ErrInvalidColumn, col)
			}
		}
	}
	return nil
}

func validatePage(p Page) error {
	if p.Offset < 0 || p.Limit <= 0 {
		return fmt.Errorf("%w: offset %d limit %d", ErrInvalidPage, p.Offset, p.Limit)
	}
	return nil
}

// canonical renders a value the way filters compare it: numbers without
// trailing zeros, bools as true/false, strings verbatim.
func canonical(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	}
	if f, ok := numeric.Parse(v); ok {
		return numeric.Format(f), true
	}
	return fmt.Sprint(v), true
}

// matches reports whether row satisfies every equality filter.
func matches(row, filters model.Row) bool {
	for k, want := range filters {
		have, present := row[k]
		w, wok := canonical(want)
		if !wok {
			if present && have != nil {
				return false
			}
			continue
		}
		h, hok := canonical(have)
		if !hok || h != w {
			return false
		}
	}
	return true
}

func newRow(key, fields model.Row) model.Row {
	row := key.Clone().Merge(fields)
	if _, ok := row["id"]; !ok || row["id"] == nil || row["id"] == "" {
		row["id"] = uuid.NewString()
	}
	return row
}
