package controllers

import (
	"context"
	"time"

	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/services"
)

//go:generate mockery --name=LinkService --output=mocksctrl --outpkg=mocksctrl

type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

// LinkService операции над короткими ссылками, которые нужны контроллерам.
type LinkService interface {
	Create(ctx context.Context, p services.CreateParams) (*models.Link, error)
	// Resolve для ErrExpired и ErrInactive возвращает и ссылку, и ошибку.
	Resolve(ctx context.Context, shortCode string) (*models.Link, error)
	Stats(ctx context.Context, shortCode string) (*models.Link, error)
	Info(ctx context.Context, shortCode string) (*models.Link, error)
	List(ctx context.Context, limit int) ([]models.Link, error)
	Delete(ctx context.Context, shortCode string) error
	Deactivate(ctx context.Context, shortCode string) error
	Now() time.Time
}

// ClickDispatcher принимает переход на запись. Запись не должна влиять на ответ.
type ClickDispatcher interface {
	Dispatch(ctx context.Context, link *models.Link, cc models.ClickContext) bool
}
