package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/db/memory"
	"github.com/fsdevblog/shortlinks/internal/models"
)

// LinkRepo представляет собой репозиторий коротких ссылок в памяти.
// Ключ записи короткий код, переходы хранятся внутри ссылки.
type LinkRepo struct {
	s   *db.MemoryStorage
	seq atomic.Uint64
}

// NewLinkRepo создает новый экземпляр репозитория.
//
// Параметры:
//   - store: экземпляр хранилища в памяти
//
// Возвращает:
//   - *LinkRepo: инициализированный репозиторий
func NewLinkRepo(store *db.MemoryStorage) *LinkRepo {
	return &LinkRepo{
		s: store,
	}
}

// Create сохраняет новую ссылку. Если код уже занят, возвращает repositories.ErrDuplicateKey.
//
// Параметры:
//   - ctx: контекст выполнения
//   - link: новая ссылка, поле ID заполняется при успехе
//
// Возвращает:
//   - error: ошибка создания (преобразованная через convertErrorType)
func (r *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	if link.Clicks == nil {
		link.Clicks = []models.Click{}
	}
	link.ID = uint(r.seq.Add(1))
	if err := memory.Set(ctx, link.ShortCode, link, r.s.MStorage); err != nil {
		link.ID = 0
		return fmt.Errorf("failed to create record: %w", convertErrorType(err))
	}
	return nil
}

func (r *LinkRepo) Exists(ctx context.Context, shortCode string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, convertErrorType(err)
	}
	return r.s.IsExist(shortCode), nil
}

// GetByShortCode возвращает ссылку вместе со всеми переходами.
func (r *LinkRepo) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	link, err := memory.Get[models.Link](ctx, shortCode, r.s.MStorage)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get record by short code %s: %w",
			shortCode, convertErrorType(err),
		)
	}
	return link, nil
}

// List возвращает не более limit последних созданных ссылок без переходов.
func (r *LinkRepo) List(ctx context.Context, limit int) ([]models.Link, error) {
	links, err := memory.GetAll[models.Link](ctx, r.s.MStorage)
	if err != nil {
		return nil, fmt.Errorf("failed to get all records: %w", convertErrorType(err))
	}
	slices.SortFunc(links, func(a, b models.Link) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(links) > limit {
		links = links[:limit]
	}
	for i := range links {
		links[i].Clicks = nil
	}
	return links, nil
}

func (r *LinkRepo) Delete(ctx context.Context, shortCode string) error {
	if err := memory.Delete(ctx, shortCode, r.s.MStorage); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", shortCode, convertErrorType(err))
	}
	return nil
}

func (r *LinkRepo) SetActive(ctx context.Context, shortCode string, active bool) error {
	err := memory.Update(ctx, shortCode, r.s.MStorage, func(link *models.Link) error {
		link.IsActive = active
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", shortCode, convertErrorType(err))
	}
	return nil
}

// AppendClick добавляет переход в конец журнала и пересчитывает TotalClicks.
// Чтение и запись выполняются под одной блокировкой хранилища.
func (r *LinkRepo) AppendClick(ctx context.Context, shortCode string, click *models.Click) (int, error) {
	var total int
	err := memory.Update(ctx, shortCode, r.s.MStorage, func(link *models.Link) error {
		link.Clicks = append(link.Clicks, *click)
		link.TotalClicks = len(link.Clicks)
		total = link.TotalClicks
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to append click to %s: %w", shortCode, convertErrorType(err))
	}
	return total, nil
}

// PurgeExpired удаляет ссылки, истекшие раньше before.
func (r *LinkRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	deleted, err := memory.DeleteFunc(ctx, r.s.MStorage, func(link models.Link) bool {
		return link.ExpiresAt.Before(before)
	})
	if err != nil {
		return int64(deleted), fmt.Errorf("failed to purge expired records: %w", convertErrorType(err))
	}
	return int64(deleted), nil
}

func (r *LinkRepo) Ping(ctx context.Context) error {
	return ctx.Err() //nolint:wrapcheck
}
