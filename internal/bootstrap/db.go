package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/haulzy/haulzy-backend/config"
	"github.com/haulzy/haulzy-backend/internal/storage/postgres"
)

// OpenDB connects to the activity database and makes sure its tables exist.
func OpenDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("DB_HOST is not set")
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db schema: %w", err)
	}

	return db, nil
}
