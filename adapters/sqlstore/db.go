// Package sqlstore persists critique sessions in postgres or sqlite through sqlx.
package sqlstore

import (
	"context"
	"fmt"

	"geoverify/internal/errors"
	"geoverify/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported driver names
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to dsn with the named driver and runs the schema migrations
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, errors.ConfigurationError(fmt.Sprintf("unsupported sql driver %q", driver))
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to "+driver, err)
	}

	if driver == DriverSQLite {
		// One writer keeps :memory: databases on a single connection and
		// avoids SQLITE_BUSY on files.
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{
			"PRAGMA busy_timeout=5000",
			"PRAGMA synchronous=NORMAL",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, errors.DatabaseError("sqlite: exec "+pragma, err)
			}
		}
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.DatabaseError("failed to migrate "+driver, err)
	}
	return db, nil
}
