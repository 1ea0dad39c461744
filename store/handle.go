// Package store owns the embedded SQLite store: a single live Handle,
// the lifecycle manager that initializes it (falling back to an
// in-memory store when the durable one is corrupted), and the
// reset-and-retry wrapper every caller goes through.
package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Handle is a ready-to-use embedded store. It embeds *sqlx.DB, so
// callers query and execute against it directly. The schema has already
// been bootstrapped by the time a Handle is handed out.
type Handle struct {
	*sqlx.DB
	memory bool
}

// InMemory reports whether this handle is the non-durable fallback.
// Data in a fallback handle does not survive the process.
func (h *Handle) InMemory() bool { return h.memory }

// openHandle opens dsn, bootstraps the schema and returns a Handle.
// On schema failure the half-open connection is closed before returning.
func openHandle(dsn string, memory bool) (*Handle, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// One connection, matching the engine's sequential access model and
	// keeping a shared-cache memory store alive for the whole session.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Handle{DB: db, memory: memory}, nil
}
