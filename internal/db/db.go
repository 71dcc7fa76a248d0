// Package db persists landmark sets and computed AC-PC transforms in
// sqlite.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/neuronav-data/stereotax/internal/monitoring"
)

// DB wraps the sqlite handle with the stereotax stores.
type DB struct {
	*sql.DB
}

// New opens (or creates) the database at path and brings the schema up to
// the latest migration. Use ":memory:" for an ephemeral database in
// tests.
func New(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}

	// An in-memory database exists per connection; cap the pool so every
	// statement sees the same one.
	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	// WAL keeps the API responsive while a long read (report generation)
	// is in flight; the busy timeout covers migration races on startup.
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA foreign_keys = ON;",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	monitoring.Logf("database ready at %s", path)
	return db, nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringOrEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
