package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/createconomy/cemvp/migrations"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies all pending embedded migrations
func (db *DB) Migrate(ctx context.Context) error {
	// Goose needs a database/sql handle; reuse the pool's connection settings
	sqlDB := stdlib.OpenDB(*db.Pool.Config().ConnConfig)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err == nil && db.logger != nil {
		db.logger.Info("database migrations applied", slog.Int64("version", version))
	}

	return nil
}
