// Package history keeps an audit trail of runs and notification attempts in
// SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"ipalert/internal/models"
)

var _ models.History = (*DB)(nil)

// DB wraps sql.DB with additional methods
type DB struct {
	*sql.DB
	now func() time.Time
}

// New creates a new database connection
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	// One writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	return &DB{DB: db, now: time.Now}, nil
}

// Open creates the connection and initializes the schema
func Open(path string) (*DB, error) {
	db, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS observations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        observed_at INTEGER NOT NULL, -- unix milliseconds
        hostname TEXT NOT NULL,
        ip TEXT NOT NULL,
        previous_ip TEXT NOT NULL DEFAULT '',
        changed BOOLEAN NOT NULL,
        forced BOOLEAN NOT NULL DEFAULT 0
    );

    CREATE INDEX IF NOT EXISTS idx_observed_at ON observations(observed_at);

    CREATE TABLE IF NOT EXISTS notifications (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        sent_at INTEGER NOT NULL, -- unix milliseconds
        success BOOLEAN NOT NULL,
        error_message TEXT
    );

    CREATE INDEX IF NOT EXISTS idx_sent_at ON notifications(sent_at);
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}

// cutoff returns the unix millisecond boundary for "the last n days"
func (db *DB) cutoff(days int) int64 {
	return db.now().AddDate(0, 0, -days).UnixMilli()
}
