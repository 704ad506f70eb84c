package mocksctrl

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/services"
)

type LinkServiceMock struct {
	mock.Mock
}

func linkResult(args mock.Arguments) (*models.Link, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkServiceMock) Create(ctx context.Context, p services.CreateParams) (*models.Link, error) {
	return linkResult(m.Called(ctx, p))
}

func (m *LinkServiceMock) Resolve(ctx context.Context, shortCode string) (*models.Link, error) {
	return linkResult(m.Called(ctx, shortCode))
}

func (m *LinkServiceMock) Stats(ctx context.Context, shortCode string) (*models.Link, error) {
	return linkResult(m.Called(ctx, shortCode))
}

func (m *LinkServiceMock) Info(ctx context.Context, shortCode string) (*models.Link, error) {
	return linkResult(m.Called(ctx, shortCode))
}

func (m *LinkServiceMock) List(ctx context.Context, limit int) ([]models.Link, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck
	}
	return args.Get(0).([]models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *LinkServiceMock) Delete(ctx context.Context, shortCode string) error {
	return m.Called(ctx, shortCode).Error(0) //nolint:wrapcheck
}

func (m *LinkServiceMock) Deactivate(ctx context.Context, shortCode string) error {
	return m.Called(ctx, shortCode).Error(0) //nolint:wrapcheck
}

func (m *LinkServiceMock) Now() time.Time {
	return m.Called().Get(0).(time.Time) //nolint:errcheck
}

type ClickDispatcherMock struct {
	mock.Mock
}

func (m *ClickDispatcherMock) Dispatch(ctx context.Context, link *models.Link, cc models.ClickContext) bool {
	return m.Called(ctx, link, cc).Bool(0)
}

type ConnectionCheckerMock struct {
	mock.Mock
}

func (m *ConnectionCheckerMock) CheckConnection(ctx context.Context) error {
	return m.Called(ctx).Error(0) //nolint:wrapcheck
}
