// Package repotest общий набор тестов, которому должен удовлетворять любой репозиторий ссылок.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/repositories"
)

// Store методы репозитория, которые проверяет набор.
type Store interface {
	Create(ctx context.Context, link *models.Link) error
	Exists(ctx context.Context, shortCode string) (bool, error)
	GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error)
	List(ctx context.Context, limit int) ([]models.Link, error)
	Delete(ctx context.Context, shortCode string) error
	SetActive(ctx context.Context, shortCode string, active bool) error
	AppendClick(ctx context.Context, shortCode string, click *models.Click) (int, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
	Ping(ctx context.Context) error
}

// StoreSuite запускается из тестов конкретного репозитория. NewStore вызывается перед
// каждым тестом и должен возвращать пустое хранилище.
type StoreSuite struct {
	suite.Suite
	NewStore func(t *testing.T) Store

	store Store
	base  time.Time
}

func (s *StoreSuite) SetupTest() {
	s.store = s.NewStore(s.T())
	s.base = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
}

func (s *StoreSuite) newLink(code string, createdAt time.Time) *models.Link {
	return &models.Link{
		ShortCode:   code,
		OriginalURL: "https://example.com/" + code,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(models.DefaultValidity),
		IsActive:    true,
		CreatedBy:   models.DefaultCreatedBy,
	}
}

func (s *StoreSuite) mustCreate(code string, createdAt time.Time) {
	s.Require().NoError(s.store.Create(s.T().Context(), s.newLink(code, createdAt)))
}

func (s *StoreSuite) TestCreateAndGet() {
	ctx := s.T().Context()
	link := s.newLink("abc123", s.base)
	s.Require().NoError(s.store.Create(ctx, link))

	got, err := s.store.GetByShortCode(ctx, "abc123")
	s.Require().NoError(err)
	s.Equal("abc123", got.ShortCode)
	s.Equal(link.OriginalURL, got.OriginalURL)
	s.WithinDuration(link.CreatedAt, got.CreatedAt, time.Millisecond)
	s.WithinDuration(link.ExpiresAt, got.ExpiresAt, time.Millisecond)
	s.True(got.IsActive)
	s.Equal(0, got.TotalClicks)
	s.Empty(got.Clicks)
	s.Equal(models.DefaultCreatedBy, got.CreatedBy)

	_, err = s.store.GetByShortCode(ctx, "missing")
	s.ErrorIs(err, repositories.ErrNotFound)
}

func (s *StoreSuite) TestCreateDuplicate() {
	ctx := s.T().Context()
	s.mustCreate("dup", s.base)

	err := s.store.Create(ctx, s.newLink("dup", s.base.Add(time.Second)))
	s.ErrorIs(err, repositories.ErrDuplicateKey)

	got, err := s.store.GetByShortCode(ctx, "dup")
	s.Require().NoError(err)
	s.WithinDuration(s.base, got.CreatedAt, time.Millisecond)
}

func (s *StoreSuite) TestExists() {
	ctx := s.T().Context()
	ok, err := s.store.Exists(ctx, "here")
	s.Require().NoError(err)
	s.False(ok)

	s.mustCreate("here", s.base)
	ok, err = s.store.Exists(ctx, "here")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *StoreSuite) TestListOrderAndLimit() {
	ctx := s.T().Context()
	for i := range 5 {
		s.mustCreate(fmt.Sprintf("code%d", i), s.base.Add(time.Duration(i)*time.Minute))
	}
	// одинаковое время создания: порядок по вставке, последний первым
	s.mustCreate("tie-a", s.base.Add(time.Hour))
	s.mustCreate("tie-b", s.base.Add(time.Hour))
	_, err := s.store.AppendClick(ctx, "code4", &models.Click{Timestamp: s.base, Referrer: "direct"})
	s.Require().NoError(err)

	links, err := s.store.List(ctx, 4)
	s.Require().NoError(err)
	s.Require().Len(links, 4)
	codes := make([]string, 0, len(links))
	for _, l := range links {
		codes = append(codes, l.ShortCode)
		s.Empty(l.Clicks)
	}
	s.Equal([]string{"tie-b", "tie-a", "code4", "code3"}, codes)
	s.Equal(1, links[2].TotalClicks)

	all, err := s.store.List(ctx, 50)
	s.Require().NoError(err)
	s.Len(all, 7)
}

func (s *StoreSuite) TestDelete() {
	ctx := s.T().Context()
	s.ErrorIs(s.store.Delete(ctx, "nope"), repositories.ErrNotFound)

	s.mustCreate("gone", s.base)
	_, err := s.store.AppendClick(ctx, "gone", &models.Click{Timestamp: s.base})
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(ctx, "gone"))
	_, err = s.store.GetByShortCode(ctx, "gone")
	s.ErrorIs(err, repositories.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, "gone"), repositories.ErrNotFound)

	// код можно использовать снова
	s.mustCreate("gone", s.base)
	got, err := s.store.GetByShortCode(ctx, "gone")
	s.Require().NoError(err)
	s.Empty(got.Clicks)
}

func (s *StoreSuite) TestSetActive() {
	ctx := s.T().Context()
	s.ErrorIs(s.store.SetActive(ctx, "nope", false), repositories.ErrNotFound)

	s.mustCreate("flag", s.base)
	s.Require().NoError(s.store.SetActive(ctx, "flag", false))
	got, err := s.store.GetByShortCode(ctx, "flag")
	s.Require().NoError(err)
	s.False(got.IsActive)

	s.Require().NoError(s.store.SetActive(ctx, "flag", false))
	s.Require().NoError(s.store.SetActive(ctx, "flag", true))
	got, err = s.store.GetByShortCode(ctx, "flag")
	s.Require().NoError(err)
	s.True(got.IsActive)
}

func (s *StoreSuite) TestAppendClickOrder() {
	ctx := s.T().Context()
	_, err := s.store.AppendClick(ctx, "nope", &models.Click{Timestamp: s.base})
	s.ErrorIs(err, repositories.ErrNotFound)

	s.mustCreate("clicks", s.base)
	for i := range 5 {
		total, appendErr := s.store.AppendClick(ctx, "clicks", &models.Click{
			Timestamp: s.base.Add(time.Duration(i) * time.Second),
			Referrer:  fmt.Sprintf("ref-%d", i),
			UserAgent: "agent",
			IPAddress: "127.0.0.1",
			Location:  models.Location{Country: "AU", City: "Sydney", Region: models.UnknownValue},
		})
		s.Require().NoError(appendErr)
		s.Equal(i+1, total)
	}

	got, err := s.store.GetByShortCode(ctx, "clicks")
	s.Require().NoError(err)
	s.Equal(5, got.TotalClicks)
	s.Require().Len(got.Clicks, 5)
	for i, c := range got.Clicks {
		s.Equal(fmt.Sprintf("ref-%d", i), c.Referrer)
		s.WithinDuration(s.base.Add(time.Duration(i)*time.Second), c.Timestamp, time.Millisecond)
		s.Equal("Sydney", c.Location.City)
	}
}

func (s *StoreSuite) TestAppendClickConcurrent() {
	ctx := s.T().Context()
	s.mustCreate("busy", s.base)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.AppendClick(ctx, "busy", &models.Click{
				Timestamp: s.base.Add(time.Duration(i) * time.Millisecond),
				Referrer:  models.DefaultReferrer,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	got, err := s.store.GetByShortCode(ctx, "busy")
	s.Require().NoError(err)
	s.Equal(n, got.TotalClicks)
	s.Len(got.Clicks, n)
}

func (s *StoreSuite) TestPurgeExpired() {
	ctx := s.T().Context()
	s.mustCreate("old", s.base.Add(-2*time.Hour))
	s.mustCreate("fresh", s.base)
	_, err := s.store.AppendClick(ctx, "old", &models.Click{Timestamp: s.base})
	s.Require().NoError(err)

	deleted, err := s.store.PurgeExpired(ctx, s.base)
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)

	_, err = s.store.GetByShortCode(ctx, "old")
	s.ErrorIs(err, repositories.ErrNotFound)
	_, err = s.store.GetByShortCode(ctx, "fresh")
	s.NoError(err)
}

func (s *StoreSuite) TestPing() {
	s.NoError(s.store.Ping(s.T().Context()))
}
