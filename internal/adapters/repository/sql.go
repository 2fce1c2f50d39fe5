package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/glebarez/go-sqlite" // registers the "sqlite" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/okian/piste/internal/domain/model"
)

// SQL drivers understood by OpenSQL.
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// dialect abstracts the few statements that differ between sqlite and Postgres.
// Every table lives in one relation holding JSON documents; filters compare
// the text form of a document field.
type dialect struct {
	schema      []string
	placeholder func(n int) string
	field       func(col string) string
	docParam    func(n int) string
	docColumn   string
}

var dialects = map[string]dialect{ //nolint:gochecknoglobals // static dialect table
	DriverSQLite: {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS piste_rows (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				tbl TEXT NOT NULL,
				id  TEXT NOT NULL,
				doc TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS piste_rows_tbl_id ON piste_rows (tbl, id)`,
			`CREATE INDEX IF NOT EXISTS piste_rows_tbl_seq ON piste_rows (tbl, seq)`,
		},
		placeholder: func(int) string { return "?" },
		field: func(col string) string {
			path := `'$."` + col + `"'`
			return `(CASE json_type(doc, ` + path + `) WHEN 'true' THEN 'true' WHEN 'false' THEN 'false' ` +
				`ELSE CAST(json_extract(doc, ` + path + `) AS TEXT) END)`
		},
		docParam:  func(int) string { return "?" },
		docColumn: "doc",
	},
	DriverPgx: {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS piste_rows (
				seq BIGSERIAL PRIMARY KEY,
				tbl TEXT NOT NULL,
				id  TEXT NOT NULL,
				doc JSONB NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS piste_rows_tbl_id ON piste_rows (tbl, id)`,
			`CREATE INDEX IF NOT EXISTS piste_rows_tbl_seq ON piste_rows (tbl, seq)`,
		},
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		field:       func(col string) string { return `(doc->>'` + col + `')` },
		docParam:    func(n int) string { return fmt.Sprintf("CAST($%d AS JSONB)", n) },
		docColumn:   "doc::text",
	},
}

// SQLStore keeps every table in a single JSON document relation, on sqlite
// (glebarez/go-sqlite) or Postgres (pgx).
type SQLStore struct {
	db *sql.DB
	d  dialect
	// mu serializes upserts so read-modify-write stays atomic on sqlite.
	mu sync.Mutex
}

var _ Store = (*SQLStore)(nil)

// OpenSQL opens a database with driver ("sqlite" or "pgx") and applies the schema.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if _, ok := dialects[driver]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection keeps ":memory:" databases shared and writes serialized
		db.SetMaxOpenConns(1)
	}
	s, err := NewSQLStore(ctx, db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore uses an already opened database.
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &SQLStore{db: db, d: d}, nil
}

// where renders the table and filter predicate, numbering placeholders from 1.
func (s *SQLStore) where(table string, filters model.Row) (string, []any) {
	var (
		conds = []string{"tbl = " + s.d.placeholder(1)}
		args  = []any{table}
	)
	cols := make([]string, 0, len(filters))
	for c := range filters {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		v, ok := canonical(filters[c])
		if !ok {
			conds = append(conds, s.d.field(c)+" IS NULL")
			continue
		}
		args = append(args, v)
		conds = append(conds, s.d.field(c)+" = "+s.d.placeholder(len(args)))
	}
	return strings.Join(conds, " AND "), args
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLStore) query(ctx context.Context, q querier, stmt string, args []any) ([]int64, []model.Row, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()
	var (
		seqs []int64
		out  []model.Row
	)
	for rows.Next() {
		var (
			seq int64
			doc string
		)
		if err := rows.Scan(&seq, &doc); err != nil {
			return nil, nil, err
		}
		row := model.Row{}
		if err := json.Unmarshal([]byte(doc), &row); err != nil {
			return nil, nil, fmt.Errorf("decode row %d: %w", seq, err)
		}
		seqs = append(seqs, seq)
		out = append(out, row)
	}
	return seqs, out, rows.Err()
}

// Fetch implements Store.
func (s *SQLStore) Fetch(ctx context.Context, table string, filters model.Row, page Page) ([]model.Row, error) {
	if err := validate(table, filters); err != nil {
		return nil, err
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}
	where, args := s.where(table, filters)
	args = append(args, page.Limit, page.Offset)
	stmt := fmt.Sprintf("SELECT seq, %s FROM piste_rows WHERE %s ORDER BY seq LIMIT %s OFFSET %s",
		s.d.docColumn, where, s.d.placeholder(len(args)-1), s.d.placeholder(len(args)))
	_, rows, err := s.query(ctx, s.db, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	return rows, nil
}

// Upsert implements Store.
func (s *SQLStore) Upsert(ctx context.Context, table string, key, fields model.Row) (err error) {
	if len(key) == 0 {
		return fmt.Errorf("%w: table %s", ErrEmptyKey, table)
	}
	if err := validate(table, key, fields); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	where, args := s.where(table, key)
	seqs, existing, err := s.query(ctx, tx, fmt.Sprintf("SELECT seq, %s FROM piste_rows WHERE %s ORDER BY seq", s.d.docColumn, where), args)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}

	if len(existing) == 0 {
		row := newRow(key, fields)
		doc, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
		stmt := fmt.Sprintf("INSERT INTO piste_rows (tbl, id, doc) VALUES (%s, %s, %s)",
			s.d.placeholder(1), s.d.placeholder(2), s.d.docParam(3))
		if _, err = tx.ExecContext(ctx, stmt, table, fmt.Sprint(row["id"]), string(doc)); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	for i, row := range existing {
		doc, err := json.Marshal(row.Merge(fields))
		if err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
		stmt := fmt.Sprintf("UPDATE piste_rows SET doc = %s WHERE seq = %s", s.d.docParam(1), s.d.placeholder(2))
		if _, err = tx.ExecContext(ctx, stmt, string(doc), seqs[i]); err != nil {
			return fmt.Errorf("update %s: %w", table, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, table string, filters model.Row) (int, error) {
	if err := validate(table, filters); err != nil {
		return 0, err
	}
	where, args := s.where(table, filters)
	res, err := s.db.ExecContext(ctx, "DELETE FROM piste_rows WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	return int(n), nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}
