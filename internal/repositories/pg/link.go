package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/repositories"
)

// LinkRepo репозиторий коротких ссылок в PostgreSQL. Переходы лежат в отдельной таблице clicks.
type LinkRepo struct {
	pool *pgxpool.Pool
}

func NewLinkRepo(pool *pgxpool.Pool) *LinkRepo {
	return &LinkRepo{pool: pool}
}

const linkColumns = `id, short_code, original_url, created_at, expires_at, is_active, total_clicks, created_by`

func (r *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	const q = `INSERT INTO links (short_code, original_url, created_at, expires_at, is_active, total_clicks, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := r.pool.QueryRow(ctx, q,
		link.ShortCode, link.OriginalURL, link.CreatedAt, link.ExpiresAt,
		link.IsActive, link.TotalClicks, link.CreatedBy,
	).Scan(&link.ID)
	if err != nil {
		return fmt.Errorf("failed to create record %s: %w", link.ShortCode, convertErrorType(err))
	}
	if link.Clicks == nil {
		link.Clicks = []models.Click{}
	}
	return nil
}

func (r *LinkRepo) Exists(ctx context.Context, shortCode string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM links WHERE short_code = $1)`, shortCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check record %s: %w", shortCode, convertErrorType(err))
	}
	return exists, nil
}

func (r *LinkRepo) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	link, err := scanLink(r.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM links WHERE short_code = $1`, shortCode))
	if err != nil {
		return nil, fmt.Errorf("failed to get record by short code %s: %w", shortCode, convertErrorType(err))
	}

	rows, err := r.pool.Query(ctx, `SELECT id, link_id, occurred_at, referrer, user_agent, ip_address,
		location_country, location_city, location_region
		FROM clicks WHERE link_id = $1 ORDER BY id`, link.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get clicks of %s: %w", shortCode, convertErrorType(err))
	}
	clicks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Click, error) {
		var c models.Click
		scanErr := row.Scan(&c.ID, &c.LinkID, &c.Timestamp, &c.Referrer, &c.UserAgent, &c.IPAddress,
			&c.Location.Country, &c.Location.City, &c.Location.Region)
		c.Timestamp = c.Timestamp.UTC()
		return c, scanErr //nolint:wrapcheck
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read clicks of %s: %w", shortCode, convertErrorType(err))
	}
	link.Clicks = clicks
	return link, nil
}

func (r *LinkRepo) List(ctx context.Context, limit int) ([]models.Link, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+linkColumns+` FROM links ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", convertErrorType(err))
	}
	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Link, error) {
		link, scanErr := scanLink(row)
		if scanErr != nil {
			return models.Link{}, scanErr
		}
		return *link, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", convertErrorType(err))
	}
	return links, nil
}

// Delete удаляет ссылку, переходы удаляются каскадно.
func (r *LinkRepo) Delete(ctx context.Context, shortCode string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM links WHERE short_code = $1`, shortCode)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", shortCode, convertErrorType(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s: %w", shortCode, repositories.ErrNotFound)
	}
	return nil
}

func (r *LinkRepo) SetActive(ctx context.Context, shortCode string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE links SET is_active = $2 WHERE short_code = $1`, shortCode, active)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", shortCode, convertErrorType(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s: %w", shortCode, repositories.ErrNotFound)
	}
	return nil
}

// AppendClick блокирует строку ссылки (FOR UPDATE), поэтому конкурентные переходы
// по одной ссылке записываются последовательно.
func (r *LinkRepo) AppendClick(ctx context.Context, shortCode string, click *models.Click) (int, error) {
	var total int
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id uint
		if err := tx.QueryRow(ctx,
			`SELECT id FROM links WHERE short_code = $1 FOR UPDATE`, shortCode).Scan(&id); err != nil {
			return err //nolint:wrapcheck
		}
		if _, err := tx.Exec(ctx, `INSERT INTO clicks (link_id, occurred_at, referrer, user_agent, ip_address,
			location_country, location_city, location_region) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, click.Timestamp, click.Referrer, click.UserAgent, click.IPAddress,
			click.Location.Country, click.Location.City, click.Location.Region,
		); err != nil {
			return err //nolint:wrapcheck
		}
		return tx.QueryRow(ctx, `UPDATE links SET total_clicks = (SELECT COUNT(*) FROM clicks WHERE link_id = $1)
			WHERE id = $1 RETURNING total_clicks`, id).Scan(&total) //nolint:wrapcheck
	})
	if err != nil {
		return 0, fmt.Errorf("failed to append click to %s: %w", shortCode, convertErrorType(err))
	}
	return total, nil
}

func (r *LinkRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM links WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired records: %w", convertErrorType(err))
	}
	return tag.RowsAffected(), nil
}

func (r *LinkRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx) //nolint:wrapcheck
}

func scanLink(row pgx.Row) (*models.Link, error) {
	var link models.Link
	err := row.Scan(&link.ID, &link.ShortCode, &link.OriginalURL, &link.CreatedAt, &link.ExpiresAt,
		&link.IsActive, &link.TotalClicks, &link.CreatedBy)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	link.CreatedAt = link.CreatedAt.UTC()
	link.ExpiresAt = link.ExpiresAt.UTC()
	return &link, nil
}
