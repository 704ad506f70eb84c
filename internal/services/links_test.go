package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/repositories"
	"github.com/fsdevblog/shortlinks/internal/repositories/memstore"
	"github.com/fsdevblog/shortlinks/internal/services/smocks"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T) (*LinkService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	repo := memstore.NewLinkRepo(db.NewMemStorage())
	return NewLinkService(repo, WithClock(clock.Now)), clock
}

func TestLinkService_Create(t *testing.T) {
	s, clock := newTestService(t)

	for _, v := range []int{1, 30, 720, 1440} {
		link, err := s.Create(t.Context(), CreateParams{OriginalURL: gofakeit.URL(), ValidityMinutes: v})
		require.NoError(t, err)
		assert.Equal(t, time.Duration(v)*time.Minute, link.ExpiresAt.Sub(link.CreatedAt))
		assert.True(t, clock.now.Equal(link.CreatedAt))
		assert.Len(t, link.ShortCode, models.DefaultShortCodeLength)
		assert.True(t, link.IsActive)
		assert.Equal(t, models.DefaultCreatedBy, link.CreatedBy)
	}

	link, err := s.Create(t.Context(), CreateParams{OriginalURL: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", link.OriginalURL)
	assert.Equal(t, models.DefaultValidity, link.ExpiresAt.Sub(link.CreatedAt))
	assert.True(t, IsProbablyURL(link.OriginalURL))
}

func TestLinkService_CreateErrors(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Create(t.Context(), CreateParams{OriginalURL: "https://go.dev", CustomCode: "golang"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		params  CreateParams
		wantErr error
	}{
		{name: "empty url", params: CreateParams{OriginalURL: "   "}, wantErr: ErrURLRequired},
		{name: "bad url", params: CreateParams{OriginalURL: "ftp://files.example.com"}, wantErr: ErrInvalidURL},
		{name: "bad code", params: CreateParams{OriginalURL: "go.dev", CustomCode: "a!"}, wantErr: ErrInvalidShortCode},
		{name: "taken code", params: CreateParams{OriginalURL: "go.dev", CustomCode: "golang"}, wantErr: ErrShortCodeTaken},
		{name: "validity too big", params: CreateParams{OriginalURL: "go.dev", ValidityMinutes: 1441}, wantErr: ErrInvalidValidity},
		{name: "validity negative", params: CreateParams{OriginalURL: "go.dev", ValidityMinutes: -1}, wantErr: ErrInvalidValidity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, createErr := s.Create(t.Context(), tt.params)
			require.ErrorIs(t, createErr, tt.wantErr)
		})
	}
}

func TestLinkService_CreateLateDuplicate(t *testing.T) {
	repo := new(smocks.LinkRepositoryMock)
	repo.On("Exists", mock.Anything, "racy").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Link")).
		Return(fmt.Errorf("insert: %w", repositories.ErrDuplicateKey))

	s := NewLinkService(repo)
	_, err := s.Create(t.Context(), CreateParams{OriginalURL: "https://example.com", CustomCode: "racy"})
	require.ErrorIs(t, err, ErrShortCodeTaken)
	repo.AssertExpectations(t)
}

func TestLinkService_CreateStoreFailure(t *testing.T) {
	repo := new(smocks.LinkRepositoryMock)
	repo.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrUnknown)

	s := NewLinkService(repo)
	_, err := s.Create(t.Context(), CreateParams{OriginalURL: "https://example.com"})
	require.ErrorIs(t, err, ErrUnknown)
}

func TestLinkService_ResolveRoundTrip(t *testing.T) {
	s, clock := newTestService(t)
	created, err := s.Create(t.Context(), CreateParams{OriginalURL: "example.org/a", CustomCode: "round", ValidityMinutes: 10})
	require.NoError(t, err)

	got, err := s.Resolve(t.Context(), "round")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/a", got.OriginalURL)
	assert.False(t, got.IsExpired(clock.now))
	assert.Equal(t, 0, got.TotalClicks)
	assert.True(t, created.ExpiresAt.Equal(got.ExpiresAt))

	remaining := got.TimeRemaining(clock.now)
	clock.Advance(time.Minute)
	again, err := s.Resolve(t.Context(), "round")
	require.NoError(t, err)
	assert.Equal(t, got.OriginalURL, again.OriginalURL)
	assert.True(t, got.CreatedAt.Equal(again.CreatedAt))
	assert.LessOrEqual(t, again.TimeRemaining(clock.now), remaining)
}

func TestLinkService_ResolveLifecycle(t *testing.T) {
	s, clock := newTestService(t)
	_, err := s.Create(t.Context(), CreateParams{OriginalURL: "https://example.com", CustomCode: "edge", ValidityMinutes: 5})
	require.NoError(t, err)

	_, err = s.Resolve(t.Context(), "unknown")
	require.ErrorIs(t, err, ErrNotFound)

	// ровно в момент истечения ссылка ещё действует
	clock.Advance(5 * time.Minute)
	_, err = s.Resolve(t.Context(), "edge")
	require.NoError(t, err)

	clock.Advance(time.Nanosecond)
	link, err := s.Resolve(t.Context(), "edge")
	require.ErrorIs(t, err, ErrExpired)
	require.NotNil(t, link)
	assert.Equal(t, "edge", link.ShortCode)

	// истекшая, но ещё не удалённая ссылка не превращается в NotFound
	_, err = s.Stats(t.Context(), "edge")
	require.ErrorIs(t, err, ErrExpired)
	info, err := s.Info(t.Context(), "edge")
	require.NoError(t, err)
	assert.True(t, info.IsExpired(clock.now))
}

func TestLinkService_Inactive(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Create(t.Context(), CreateParams{OriginalURL: "https://example.com", CustomCode: "off"})
	require.NoError(t, err)

	require.ErrorIs(t, s.Deactivate(t.Context(), "missing"), ErrNotFound)
	require.NoError(t, s.Deactivate(t.Context(), "off"))
	require.NoError(t, s.Deactivate(t.Context(), "off"))

	_, err = s.Resolve(t.Context(), "off")
	require.ErrorIs(t, err, ErrInactive)

	stats, err := s.Stats(t.Context(), "off")
	require.NoError(t, err)
	assert.False(t, stats.IsActive)
}

func TestLinkService_RecordClick(t *testing.T) {
	s, clock := newTestService(t)
	link, err := s.Create(t.Context(), CreateParams{OriginalURL: "https://example.com", CustomCode: "clicky"})
	require.NoError(t, err)

	const n = 5
	for i := range n {
		clock.Advance(time.Second)
		link, err = s.RecordClick(t.Context(), link, models.ClickContext{
			Referrer:  fmt.Sprintf("https://ref%d.example", i),
			UserAgent: strings.Repeat("x", 300),
			IPAddress: "127.0.0.1",
		})
		require.NoError(t, err)
		assert.Equal(t, i+1, link.TotalClicks)
	}

	stored, err := s.Stats(t.Context(), "clicky")
	require.NoError(t, err)
	assert.Equal(t, n, stored.TotalClicks)
	require.Len(t, stored.Clicks, n)
	for i, c := range stored.Clicks {
		assert.Equal(t, fmt.Sprintf("https://ref%d.example", i), c.Referrer)
		assert.Len(t, c.UserAgent, models.MaxUserAgentLen)
		assert.Equal(t, "AU", c.Location.Country)
		if i > 0 {
			assert.True(t, c.Timestamp.After(stored.Clicks[i-1].Timestamp))
		}
	}
}

func TestLinkService_RecordClickDefaults(t *testing.T) {
	s, clock := newTestService(t)
	link, err := s.Create(t.Context(), CreateParams{OriginalURL: "https://example.com", CustomCode: "bare"})
	require.NoError(t, err)

	occurred := clock.now.Add(-time.Second)
	updated, err := s.RecordClick(t.Context(), link, models.ClickContext{OccurredAt: occurred})
	require.NoError(t, err)
	require.Len(t, updated.Clicks, 1)
	c := updated.Clicks[0]
	assert.Equal(t, models.DefaultReferrer, c.Referrer)
	assert.Equal(t, models.UnknownValue, c.UserAgent)
	assert.Equal(t, models.UnknownValue, c.IPAddress)
	assert.Equal(t, "IN", c.Location.Country)
	assert.True(t, occurred.Equal(c.Timestamp))
	assert.Empty(t, link.Clicks)

	_, err = s.RecordClick(t.Context(), &models.Link{ShortCode: "ghost"}, models.ClickContext{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLinkService_List(t *testing.T) {
	s, clock := newTestService(t)
	for i := range 60 {
		clock.Advance(time.Second)
		_, err := s.Create(t.Context(), CreateParams{
			OriginalURL: gofakeit.URL(),
			CustomCode:  fmt.Sprintf("code%02d", i),
		})
		require.NoError(t, err)
	}

	links, err := s.List(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, links, DefaultListLimit)
	assert.Equal(t, "code59", links[0].ShortCode)
	assert.Equal(t, "code10", links[len(links)-1].ShortCode)
	for i := 1; i < len(links); i++ {
		assert.True(t, links[i-1].CreatedAt.After(links[i].CreatedAt))
		assert.Empty(t, links[i].Clicks)
	}

	links, err = s.List(t.Context(), 500)
	require.NoError(t, err)
	assert.Len(t, links, MaxListLimit)

	links, err = s.List(t.Context(), -3)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestLinkService_Delete(t *testing.T) {
	s, _ := newTestService(t)
	require.ErrorIs(t, s.Delete(t.Context(), "unknown"), ErrNotFound)

	_, err := s.Create(t.Context(), CreateParams{OriginalURL: "https://example.com", CustomCode: "bye"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(t.Context(), "bye"))

	_, err = s.Resolve(t.Context(), "bye")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLinkService_PurgeExpired(t *testing.T) {
	s, clock := newTestService(t)
	_, err := s.Create(t.Context(), CreateParams{OriginalURL: "https://a.example", CustomCode: "short", ValidityMinutes: 1})
	require.NoError(t, err)
	_, err = s.Create(t.Context(), CreateParams{OriginalURL: "https://b.example", CustomCode: "long", ValidityMinutes: 1440})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	deleted, err := s.PurgeExpired(t.Context(), 2*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	_, err = s.Resolve(t.Context(), "short")
	require.ErrorIs(t, err, ErrExpired)

	deleted, err = s.PurgeExpired(t.Context(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	_, err = s.Resolve(t.Context(), "short")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Resolve(t.Context(), "long")
	require.NoError(t, err)
}

func BenchmarkLinkService_Create(b *testing.B) {
	repo := memstore.NewLinkRepo(db.NewMemStorage())
	s := NewLinkService(repo)
	urls := make([]string, 1000)
	for i := range urls {
		urls[i] = gofakeit.URL()
	}
	ctx := b.Context()

	b.ResetTimer()
	for i := range b.N {
		if _, err := s.Create(ctx, CreateParams{OriginalURL: urls[i%len(urls)]}); err != nil {
			b.Fatal(err)
		}
	}
}
