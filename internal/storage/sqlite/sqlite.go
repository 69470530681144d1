// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface.
//
// SQLite stores everything in a single file on disk. There is no network,
// no separate server process, and no installation beyond the driver.
//
// The queries themselves live in storage/sqldb; this package opens the
// file with the right pragmas, applies migrations, and teaches sqldb how
// to read SQLite's constraint errors.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/storage/sqldb"

	// Importing the driver registers "sqlite3" with database/sql; its
	// Error type and codes are used by classify.
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// SQLite is the concrete SQLite implementation of storage.Storage.
// Every query method is promoted from the embedded *sqldb.Store.
type SQLite struct {
	*sqldb.Store
}

// dsnParams turns on foreign-key enforcement (off by default in SQLite),
// waits on a locked database instead of failing, and reads DATETIME
// columns back in UTC.
const dsnParams = "_foreign_keys=on&_busy_timeout=5000&_loc=UTC"

// ─────────────────────────────────────────────────────────────────────────────
// New opens the SQLite database at cfg.StoragePath, applies pending
// migrations, and returns a ready-to-use *SQLite.
//
// Parameters:
//
//	ctx — bounds the initial ping and the migrations
//	cfg — StoragePath plus the Database pool settings
//	log — receives one line per applied migration
//
// StoragePath may be a file path ("storage/storage.db") or an in-memory
// database (":memory:", or a "file:...?mode=memory" URI). An in-memory
// database lives inside ONE connection: a second connection would see a
// fresh, empty database without any tables. So for those paths the pool
// is pinned to a single connection that is never closed while idle.
// ─────────────────────────────────────────────────────────────────────────────
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*SQLite, error) {
	path := cfg.StoragePath
	memory := isMemory(path)

	// ── Step 1: Make sure the directory for the .db file exists ───────
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create storage dir: %w", err)
		}
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	// ── Step 2: Open the pool ─────────────────────────────────────────
	// sql.Open does NOT open a real connection yet; it only validates the
	// driver name. The first actual connection happens on Ping.
	db, err := sql.Open("sqlite3", path+sep+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if memory {
		// One connection, kept forever: closing it would drop the data.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		if cfg.Database.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		}
		if cfg.Database.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		}
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w", err)
	}

	// ── Step 3: Build the schema ──────────────────────────────────────
	migrations, err := sqldb.Migrations("sqlite")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	store := sqldb.New(db, sqldb.Dialect{
		Name:       "sqlite3",
		Goose:      goose.DialectSQLite3,
		Migrations: migrations,
		Classify:   classify,
	})
	if err := store.Migrate(ctx, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	return &SQLite{Store: store}, nil
}

// isMemory reports whether path names an in-memory database.
func isMemory(path string) bool {
	return path == ":memory:" ||
		strings.HasPrefix(path, "file::memory:") ||
		strings.Contains(path, "mode=memory")
}

// ─────────────────────────────────────────────────────────────────────────────
// classify maps SQLite constraint failures onto storage sentinels.
//
// go-sqlite3 reports every constraint failure with Code == ErrConstraint;
// ExtendedCode says which kind:
//
//	ErrConstraintUnique / ErrConstraintPrimaryKey → storage.ErrDuplicate
//	ErrConstraintForeignKey                       → storage.ErrInvalidReference
//
// Any other error is returned unchanged.
// ─────────────────────────────────────────────────────────────────────────────
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		table, column := constraintTarget(sqliteErr.Error())
		return &storage.ConstraintError{
			Kind:   storage.ErrDuplicate,
			Table:  table,
			Column: column,
			Err:    err,
		}
	case sqlite3.ErrConstraintForeignKey:
		// SQLite does not say which key failed.
		return &storage.ConstraintError{Kind: storage.ErrInvalidReference, Err: err}
	}
	return err
}

// constraintTarget extracts "students" and "email" from
// "UNIQUE constraint failed: students.email". For composite keys only the
// first column is reported.
func constraintTarget(msg string) (table, column string) {
	i := strings.LastIndex(msg, ": ")
	if i < 0 {
		return "", ""
	}
	first, _, _ := strings.Cut(msg[i+2:], ",")
	table, column, ok := strings.Cut(strings.TrimSpace(first), ".")
	if !ok {
		return "", ""
	}
	return table, column
}
