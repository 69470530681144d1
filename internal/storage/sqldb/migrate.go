package sqldb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// Migrate applies every pending migration of the store's dialect.
//
// It uses goose's Provider API rather than the package-level functions, so
// several stores (one per test, for example) can migrate concurrently
// without sharing global dialect or filesystem settings.
func (s *Store) Migrate(ctx context.Context, log *slog.Logger) error {
	provider, err := goose.NewProvider(s.dialect.Goose, s.db, s.dialect.Migrations)
	if err != nil {
		return fmt.Errorf("sqldb.Migrate: new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("sqldb.Migrate: up: %w", err)
	}

	if len(results) == 0 {
		log.Debug("database schema up to date", slog.String("dialect", s.dialect.Name))
		return nil
	}

	for _, r := range results {
		log.Info("applied migration",
			slog.String("dialect", s.dialect.Name),
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}
	return nil
}
