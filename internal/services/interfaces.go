package services

import (
	"context"
	"time"

	"github.com/fsdevblog/shortlinks/internal/models"
)

//go:generate mockery --name=LinkRepository --output=smocks --outpkg=smocks

// LinkRepository описывает хранилище коротких ссылок.
//
// Хранилище само обеспечивает уникальность short code: повторная вставка возвращает
// repositories.ErrDuplicateKey независимо от предварительной проверки Exists.
type LinkRepository interface {
	// Create сохраняет новую ссылку.
	Create(ctx context.Context, link *models.Link) error
	// Exists проверяет, занят ли код.
	Exists(ctx context.Context, shortCode string) (bool, error)
	// GetByShortCode возвращает ссылку вместе с переходами в хронологическом порядке.
	GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error)
	// List возвращает последние созданные ссылки без переходов.
	List(ctx context.Context, limit int) ([]models.Link, error)
	Delete(ctx context.Context, shortCode string) error
	SetActive(ctx context.Context, shortCode string, active bool) error
	// AppendClick атомарно дописывает переход и возвращает новое значение TotalClicks.
	AppendClick(ctx context.Context, shortCode string, click *models.Click) (int, error)
	// PurgeExpired удаляет ссылки, истекшие раньше before.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
	Ping(ctx context.Context) error
}

// CodeGenerator возвращает случайный код заданной длины.
type CodeGenerator func(length int) (string, error)
