// Command migrate applies the embedded schema migrations to Postgres.
// The sqlite backend migrates itself at startup and does not need this.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	storepkg "github.com/marketbrief/internal/store"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if !strings.HasPrefix(dbURL, "postgres://") && !strings.HasPrefix(dbURL, "postgresql://") {
		slog.Error("migrate only handles postgres URLs; sqlite migrates itself at startup")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		slog.Error("failed to connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		slog.Error("failed to create migrations table", "err", err)
		os.Exit(1)
	}

	files, err := storepkg.MigrationFiles()
	if err != nil {
		slog.Error("failed to read embedded migrations", "err", err)
		os.Exit(1)
	}

	for _, f := range files {
		version := strings.TrimSuffix(f, ".up.sql")

		var exists bool
		_ = pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`,
			version,
		).Scan(&exists)
		if exists {
			continue
		}

		sql, err := storepkg.MigrationSQL(f)
		if err != nil {
			slog.Error("failed to read migration", "file", f, "err", err)
			os.Exit(1)
		}

		if _, err := pool.Exec(ctx, sql); err != nil {
			slog.Error("migration failed", "version", version, "err", err)
			os.Exit(1)
		}

		if _, err := pool.Exec(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1)`, version,
		); err != nil {
			slog.Error("failed to record migration", "version", version, "err", err)
			os.Exit(1)
		}

		fmt.Printf("applied: %s\n", version)
	}

	fmt.Println("migrations complete")
}
