package controllers

import (
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fsdevblog/shortlinks/internal/config"
	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/repositories/memstore"
	"github.com/fsdevblog/shortlinks/internal/services"
	"github.com/fsdevblog/shortlinks/internal/workers"
)

type movableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Полный цикл поверх хранилища в памяти: создание, переходы, статистика, истечение.
func TestRouter_LinkLifecycle(t *testing.T) {
	clock := &movableClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	repo := memstore.NewLinkRepo(db.NewMemStorage())
	linkService := services.NewLinkService(repo, services.WithClock(clock.Now))
	clicks := workers.NewClickDispatcher(linkService, 0, 0, zap.NewNop())

	router := SetupRouter(RouterParams{
		LinkService: linkService,
		PingService: services.NewPingService(repo),
		Clicks:      clicks,
		AppConf:     config.Config{BaseURL: "http://sho.rt", VisitorJWTSecret: "secret"},
		Logger:      zap.NewNop(),
	})

	created := makeRequest(t, router, requestFields{
		Method:      http.MethodPost,
		URL:         "/api/shorturls",
		Body:        strings.NewReader(`{"originalUrl":"example.com/docs","customShortCode":"docs","validityMinutes":1}`),
		ContentType: "application/json",
	})
	defer created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)
	data := decodeBody(t, created, false)["data"].(map[string]any)
	assert.Equal(t, "http://sho.rt/docs", data["shortUrl"])
	assert.InDelta(t, 60000, data["timeRemaining"], 0)

	dup := makeRequest(t, router, requestFields{
		Method:      http.MethodPost,
		URL:         "/api/shorturls",
		Body:        strings.NewReader(`{"originalUrl":"example.com","customShortCode":"docs"}`),
		ContentType: "application/json",
	})
	defer dup.Body.Close()
	assert.Equal(t, http.StatusConflict, dup.StatusCode)

	for _, ref := range []string{"https://a.example", ""} {
		res := makeRequest(t, router, requestFields{
			Method:  http.MethodGet,
			URL:     "/docs",
			Headers: map[string]string{"Referer": ref},
		})
		res.Body.Close()
		require.Equal(t, http.StatusFound, res.StatusCode)
		assert.Equal(t, "https://example.com/docs", res.Header.Get("Location"))
		clock.Advance(time.Second)
	}

	stats := makeRequest(t, router, requestFields{Method: http.MethodGet, URL: "/api/shorturls/docs"})
	defer stats.Body.Close()
	require.Equal(t, http.StatusOK, stats.StatusCode)
	clickStats := decodeBody(t, stats, false)["data"].(map[string]any)["clickStats"].(map[string]any)
	assert.InDelta(t, 2, clickStats["total"], 0)
	recent := clickStats["recent"].([]any)
	require.Len(t, recent, 2)
	assert.Equal(t, "https://a.example", recent[0].(map[string]any)["referrer"])
	assert.Equal(t, "direct", recent[1].(map[string]any)["referrer"])

	// ровно в момент истечения ссылка ещё работает
	clock.Advance(58 * time.Second)
	atEdge := makeRequest(t, router, requestFields{Method: http.MethodGet, URL: "/docs"})
	atEdge.Body.Close()
	assert.Equal(t, http.StatusFound, atEdge.StatusCode)

	clock.Advance(time.Millisecond)
	expired := makeRequest(t, router, requestFields{Method: http.MethodGet, URL: "/docs"})
	defer expired.Body.Close()
	assert.Equal(t, http.StatusGone, expired.StatusCode)
	assert.Equal(t, "docs", decodeBody(t, expired, false)["data"].(map[string]any)["shortCode"])

	info := makeRequest(t, router, requestFields{Method: http.MethodGet, URL: "/docs/info"})
	defer info.Body.Close()
	require.Equal(t, http.StatusOK, info.StatusCode)
	infoData := decodeBody(t, info, false)["data"].(map[string]any)
	assert.Equal(t, true, infoData["isExpired"])
	assert.InDelta(t, 3, infoData["totalClicks"], 0)

	deleted := makeRequest(t, router, requestFields{Method: http.MethodDelete, URL: "/api/shorturls/docs"})
	deleted.Body.Close()
	assert.Equal(t, http.StatusOK, deleted.StatusCode)

	gone := makeRequest(t, router, requestFields{Method: http.MethodGet, URL: "/docs"})
	gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestRouter_DeactivatedLink(t *testing.T) {
	repo := memstore.NewLinkRepo(db.NewMemStorage())
	linkService := services.NewLinkService(repo)
	router := SetupRouter(RouterParams{
		LinkService: linkService,
		PingService: services.NewPingService(repo),
		Clicks:      workers.NewClickDispatcher(linkService, 0, 0, nil),
		AppConf:     config.Config{BaseURL: "http://sho.rt", VisitorJWTSecret: "secret"},
		Logger:      zap.NewNop(),
	})

	created := makeRequest(t, router, requestFields{
		Method:      http.MethodPost,
		URL:         "/api/shorturls",
		Body:        strings.NewReader(`{"originalUrl":"https://example.com"}`),
		ContentType: "application/json",
	})
	defer created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)
	code := decodeBody(t, created, false)["data"].(map[string]any)["shortCode"].(string)
	assert.Len(t, code, 8)

	off := makeRequest(t, router, requestFields{Method: http.MethodPatch, URL: "/api/shorturls/" + code + "/deactivate"})
	off.Body.Close()
	require.Equal(t, http.StatusOK, off.StatusCode)

	res := makeRequest(t, router, requestFields{Method: http.MethodGet, URL: "/" + code})
	defer res.Body.Close()
	assert.Equal(t, http.StatusGone, res.StatusCode)
	assert.Equal(t, "Short URL is inactive", decodeBody(t, res, false)["error"])

	stats := makeRequest(t, router, requestFields{Method: http.MethodGet, URL: "/api/shorturls/" + code})
	defer stats.Body.Close()
	require.Equal(t, http.StatusOK, stats.StatusCode)
	assert.Equal(t, false, decodeBody(t, stats, false)["data"].(map[string]any)["isActive"])

	list := makeRequest(t, router, requestFields{Method: http.MethodGet, URL: "/api/shorturls?limit=-5"})
	defer list.Body.Close()
	require.Equal(t, http.StatusOK, list.StatusCode)
	assert.Len(t, decodeBody(t, list, false)["data"].([]any), 1)
}
