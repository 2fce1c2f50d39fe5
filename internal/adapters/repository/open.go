package repository

import (
	"context"
	"fmt"
)

// Open returns a Store for the configured driver: "memory", "sqlite" or "pgx".
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case DriverSQLite, DriverPgx:
		return OpenSQL(ctx, driver, dsn)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}
