package sql

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/repositories"
)

type LinkRepo struct {
	db *gorm.DB
}

func NewLinkRepo(db *gorm.DB) *LinkRepo {
	return &LinkRepo{db: db}
}

func (r *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(link).Error; err != nil {
		return errors.Wrapf(convertErrorType(err), "failed to create record %s", link.ShortCode)
	}
	return nil
}

func (r *LinkRepo) Exists(ctx context.Context, shortCode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("short_code = ?", shortCode).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrapf(convertErrorType(err), "failed to check record %s", shortCode)
	}
	return count > 0, nil
}

func (r *LinkRepo) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	var link models.Link
	err := r.db.WithContext(ctx).
		Preload("Clicks", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("id ASC")
		}).
		Where("short_code = ?", shortCode).
		First(&link).Error
	if err != nil {
		return nil, errors.Wrapf(convertErrorType(err), "failed to get record by short code %s", shortCode)
	}
	return &link, nil
}

func (r *LinkRepo) List(ctx context.Context, limit int) ([]models.Link, error) {
	var links []models.Link
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&links).Error
	if err != nil {
		return nil, errors.Wrap(convertErrorType(err), "failed to list records")
	}
	return links, nil
}

// Delete удаляет ссылку вместе с переходами.
func (r *LinkRepo) Delete(ctx context.Context, shortCode string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := linkID(tx, shortCode)
		if err != nil {
			return err
		}
		if err = tx.Where("link_id = ?", id).Delete(&models.Click{}).Error; err != nil {
			return err //nolint:wrapcheck
		}
		return tx.Delete(&models.Link{}, id).Error //nolint:wrapcheck
	})
	if err != nil {
		return errors.Wrapf(convertErrorType(err), "failed to delete record %s", shortCode)
	}
	return nil
}

func (r *LinkRepo) SetActive(ctx context.Context, shortCode string, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("short_code = ?", shortCode).
		Update("is_active", active)
	if res.Error != nil {
		return errors.Wrapf(convertErrorType(res.Error), "failed to update record %s", shortCode)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(repositories.ErrNotFound, "record %s", shortCode)
	}
	return nil
}

// AppendClick в одной транзакции добавляет переход и пересчитывает total_clicks по таблице clicks.
func (r *LinkRepo) AppendClick(ctx context.Context, shortCode string, click *models.Click) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := linkID(tx, shortCode)
		if err != nil {
			return err
		}
		row := *click
		row.ID = 0
		row.LinkID = id
		if err = tx.Create(&row).Error; err != nil {
			return err //nolint:wrapcheck
		}
		if err = tx.Model(&models.Click{}).Where("link_id = ?", id).Count(&total).Error; err != nil {
			return err //nolint:wrapcheck
		}
		return tx.Model(&models.Link{}).Where("id = ?", id).Update("total_clicks", total).Error //nolint:wrapcheck
	})
	if err != nil {
		return 0, errors.Wrapf(convertErrorType(err), "failed to append click to %s", shortCode)
	}
	return int(total), nil
}

func (r *LinkRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&models.Link{}).Select("id").Where("expires_at < ?", before)
		if err := tx.Where("link_id IN (?)", expired).Delete(&models.Click{}).Error; err != nil {
			return err //nolint:wrapcheck
		}
		res := tx.Where("expires_at < ?", before).Delete(&models.Link{})
		deleted = res.RowsAffected
		return res.Error //nolint:wrapcheck
	})
	if err != nil {
		return 0, errors.Wrap(convertErrorType(err), "failed to purge expired records")
	}
	return deleted, nil
}

func (r *LinkRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql db")
	}
	return sqlDB.PingContext(ctx) //nolint:wrapcheck
}

func linkID(tx *gorm.DB, shortCode string) (uint, error) {
	var link models.Link
	if err := tx.Select("id").Where("short_code = ?", shortCode).First(&link).Error; err != nil {
		return 0, err //nolint:wrapcheck
	}
	return link.ID, nil
}
