package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the run-history database with the named driver
// ("postgres" or "sqlite3"). In-memory SQLite is pinned to one connection
// so every query sees the same database.
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	if driver == "sqlite3" && strings.Contains(url, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
