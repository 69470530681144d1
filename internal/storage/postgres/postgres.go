// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Storage interface, using pgx through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/storage/sqldb"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
)

// PostgreSQL SQLSTATE codes for the constraint violations we translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

const pingTimeout = 5 * time.Second

type Postgres struct {
	*sqldb.Store
}

// New connects to cfg.DatabaseURL, applies pending migrations and returns
// a ready-to-use *Postgres.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Postgres, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: open db: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	if cfg.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	migrations, err := sqldb.Migrations("postgres")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: %w", err)
	}

	store := sqldb.New(db, sqldb.Dialect{
		Name:                 "postgres",
		Goose:                goose.DialectPostgres,
		Migrations:           migrations,
		NumberedPlaceholders: true,
		Classify:             classify,
	})
	if err := store.Migrate(ctx, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: %w", err)
	}

	return &Postgres{Store: store}, nil
}

// classify maps PostgreSQL constraint violations onto storage sentinels.
// Unique constraints follow the uq_<table>_<column> naming used by the
// migrations, which is how the column is recovered.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		column := pgErr.ColumnName
		if column == "" {
			column = strings.TrimPrefix(pgErr.ConstraintName, "uq_"+pgErr.TableName+"_")
		}
		return &storage.ConstraintError{
			Kind:   storage.ErrDuplicate,
			Table:  pgErr.TableName,
			Column: column,
			Err:    err,
		}
	case codeForeignKeyViolation:
		return &storage.ConstraintError{
			Kind:   storage.ErrInvalidReference,
			Table:  pgErr.TableName,
			Column: strings.TrimPrefix(pgErr.ConstraintName, "fk_"+pgErr.TableName+"_"),
			Err:    err,
		}
	}
	return err
}
