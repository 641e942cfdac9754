package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stemsi/class-subjects/internal/config"
)

// NewPostgresPool opens the pool behind the postgres subjects store and checks
// that the class_subjects table is reachable. Run migrations first.
func NewPostgresPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxDBConns > 0 {
		poolCfg.MaxConns = cfg.MaxDBConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	var records int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM class_subjects`).Scan(&records); err != nil {
		pool.Close()
		return nil, fmt.Errorf("check class_subjects table: %w", err)
	}

	log.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Int32("max_conns", poolCfg.MaxConns).
		Int64("records", records).
		Msg("PostgreSQL connected")

	return pool, nil
}
