package smocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fsdevblog/shortlinks/internal/models"
)

type LinkRepositoryMock struct {
	mock.Mock
}

func (m *LinkRepositoryMock) Create(ctx context.Context, link *models.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0) //nolint:wrapcheck
}

func (m *LinkRepositoryMock) Exists(ctx context.Context, shortCode string) (bool, error) {
	args := m.Called(ctx, shortCode)
	return args.Bool(0), args.Error(1) //nolint:wrapcheck
}

func (m *LinkRepositoryMock) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkRepositoryMock) List(ctx context.Context, limit int) ([]models.Link, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck
	}
	return args.Get(0).([]models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkRepositoryMock) Delete(ctx context.Context, shortCode string) error {
	args := m.Called(ctx, shortCode)
	return args.Error(0) //nolint:wrapcheck
}

func (m *LinkRepositoryMock) SetActive(ctx context.Context, shortCode string, active bool) error {
	args := m.Called(ctx, shortCode, active)
	return args.Error(0) //nolint:wrapcheck
}

func (m *LinkRepositoryMock) AppendClick(ctx context.Context, shortCode string, click *models.Click) (int, error) {
	args := m.Called(ctx, shortCode, click)
	return args.Int(0), args.Error(1) //nolint:wrapcheck
}

func (m *LinkRepositoryMock) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkRepositoryMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0) //nolint:wrapcheck
}
