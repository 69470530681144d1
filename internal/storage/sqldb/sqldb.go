// Package sqldb implements storage.Storage on top of database/sql.
//
// The SQL is written once, with ? placeholders, and shared by every engine.
// A Dialect supplies what differs between engines:
//
//   - placeholder style (? for SQLite, $1..$n for PostgreSQL)
//   - the goose dialect and migration files used to build the schema
//   - a classifier that turns driver constraint errors into
//     storage.ConstraintError values
//
// The engine packages (storage/sqlite, storage/postgres) open the *sql.DB,
// pick a Dialect and embed *Store.
package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Migrations returns the migration files for one engine ("sqlite" or
// "postgres").
func Migrations(dir string) (fs.FS, error) {
	sub, err := fs.Sub(migrations, path.Join("migrations", dir))
	if err != nil {
		return nil, fmt.Errorf("sqldb.Migrations: %w", err)
	}
	return sub, nil
}

// Dialect describes one database engine.
type Dialect struct {
	// Name is used in log lines and error messages.
	Name string

	// Goose selects the SQL flavour goose uses for its version table.
	Goose goose.Dialect

	// Migrations holds the numbered goose files at its root.
	Migrations fs.FS

	// NumberedPlaceholders rewrites ? into $1, $2, ... before execution.
	NumberedPlaceholders bool

	// Classify converts a driver error into a *storage.ConstraintError when
	// it is a UNIQUE or FOREIGN KEY violation, and returns it unchanged
	// otherwise.
	Classify func(error) error
}

// Store is the database/sql implementation of storage.Storage.
// A single *sql.DB is a connection pool, safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open connection pool. It does not touch the schema; call
// Migrate for that.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the engine description the store was built with.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// query adapts a ?-style statement to the dialect.
func (s *Store) query(q string) string {
	if s.dialect.NumberedPlaceholders {
		return rebind(q)
	}
	return q
}

// wrap classifies a driver error and prefixes it with the failing operation.
func (s *Store) wrap(op string, err error) error {
	if s.dialect.Classify != nil {
		err = s.dialect.Classify(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// rebind rewrites ? placeholders into PostgreSQL's $n form.
// Statements in this package never contain a literal question mark.
func rebind(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)

	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// checkRowsAffected returns notFound when an UPDATE or DELETE matched no row.
func checkRowsAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
