package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresConnection создает новый пул подключений к PostgreSQL.
//
// Параметры:
//   - ctx: контекст выполнения
//   - dsn: строка подключения к базе данных (Data Source Name)
//
// Возвращает:
//   - *pgxpool.Pool: пул подключений к PostgreSQL
//   - error: ошибка создания подключения
func NewPostgresConnection(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, confErr := pgxpool.ParseConfig(dsn)
	if confErr != nil {
		return nil, fmt.Errorf("failed to parse config: %w", confErr)
	}
	pool, poolErr := pgxpool.NewWithConfig(ctx, poolConfig)
	if poolErr != nil {
		return nil, fmt.Errorf("failed to create pool: %w", poolErr)
	}
	return pool, nil
}

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS links (
    id BIGSERIAL PRIMARY KEY,
    short_code VARCHAR(20) NOT NULL,
    original_url TEXT NOT NULL,
    created_at timestamp with time zone NOT NULL,
    expires_at timestamp with time zone NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    total_clicks INTEGER NOT NULL DEFAULT 0,
    created_by VARCHAR(64) NOT NULL DEFAULT 'anonymous'
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_links_short_code ON links (short_code);
CREATE INDEX IF NOT EXISTS idx_links_created_at ON links (created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_links_expires_at ON links (expires_at);

CREATE TABLE IF NOT EXISTS clicks (
    id BIGSERIAL PRIMARY KEY,
    link_id BIGINT NOT NULL REFERENCES links (id) ON DELETE CASCADE,
    occurred_at timestamp with time zone NOT NULL,
    referrer TEXT NOT NULL,
    user_agent VARCHAR(200) NOT NULL,
    ip_address VARCHAR(64) NOT NULL,
    location_country VARCHAR(64) NOT NULL,
    location_city VARCHAR(64) NOT NULL,
    location_region VARCHAR(64) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks (link_id, id);
`

// MigratePostgres создает таблицы links и clicks, если их ещё нет.
func MigratePostgres(ctx context.Context, conn *pgxpool.Pool) error {
	_, err := conn.Exec(ctx, postgresSchemaSQL)
	return err //nolint:wrapcheck
}
