package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to a Postgres or SQLite database and returns a bun handle.
// SQLite handles are limited to one connection, which serializes writers.
func Open(driver, dsn string, log logrus.FieldLogger) (*bun.DB, error) {
	var db *bun.DB
	switch driver {
	case DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		if err := applyPragmas(sqldb); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	if log != nil {
		db.AddQueryHook(&queryLogger{log: log})
	}
	return db, nil
}

// MemoryDSN names a private in-memory SQLite database.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func isPostgres(db bun.IDB) bool {
	return db.Dialect().Name() == dialect.PG
}

// queryLogger reports slow and failed statements through logrus.
type queryLogger struct {
	log logrus.FieldLogger
}

const slowQuery = 200 * time.Millisecond

func (h *queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	entry := h.log.WithFields(logrus.Fields{
		"operation": event.Operation(),
		"elapsed":   elapsed.String(),
	})
	switch {
	case event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows):
		entry.WithError(event.Err).Debug(event.Query)
	case elapsed > slowQuery:
		entry.Warn("slow query: " + event.Query)
	}
}
