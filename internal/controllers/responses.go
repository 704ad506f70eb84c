package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/shortlinks/internal/models"
)

// recentClicksLimit сколько последних переходов показывать в статистике.
const recentClicksLimit = 10

type envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// createdView ответ на создание ссылки. timeRemaining в миллисекундах.
type createdView struct {
	ShortCode     string    `json:"shortCode"`
	ShortURL      string    `json:"shortUrl"`
	OriginalURL   string    `json:"originalUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
	TimeRemaining int64     `json:"timeRemaining"`
}

type summaryView struct {
	createdView
	IsActive    bool   `json:"isActive"`
	IsExpired   bool   `json:"isExpired"`
	TotalClicks int    `json:"totalClicks"`
	CreatedBy   string `json:"createdBy"`
}

type clickView struct {
	Timestamp time.Time       `json:"timestamp"`
	Referrer  string          `json:"referrer"`
	UserAgent string          `json:"userAgent"`
	IPAddress string          `json:"ipAddress"`
	Location  models.Location `json:"location"`
}

type clickStatsView struct {
	Total  int         `json:"total"`
	Recent []clickView `json:"recent"`
}

type statsView struct {
	summaryView
	ClickStats clickStatsView `json:"clickStats"`
}

type expiredView struct {
	ShortCode   string    `json:"shortCode"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiredAt   time.Time `json:"expiredAt"`
}

func newCreatedView(l *models.Link, baseURL string, now time.Time) createdView {
	return createdView{
		ShortCode:     l.ShortCode,
		ShortURL:      l.ShortURL(baseURL),
		OriginalURL:   l.OriginalURL,
		CreatedAt:     l.CreatedAt,
		ExpiresAt:     l.ExpiresAt,
		TimeRemaining: l.TimeRemaining(now).Milliseconds(),
	}
}

func newSummaryView(l *models.Link, baseURL string, now time.Time) summaryView {
	return summaryView{
		createdView: newCreatedView(l, baseURL, now),
		IsActive:    l.IsActive,
		IsExpired:   l.IsExpired(now),
		TotalClicks: l.TotalClicks,
		CreatedBy:   l.CreatedBy,
	}
}

func newStatsView(l *models.Link, baseURL string, now time.Time) statsView {
	recent := l.RecentClicks(recentClicksLimit)
	clicks := make([]clickView, len(recent))
	for i, c := range recent {
		clicks[i] = clickView{
			Timestamp: c.Timestamp,
			Referrer:  c.Referrer,
			UserAgent: models.Truncate(c.UserAgent, models.SummaryAgentLen),
			IPAddress: c.IPAddress,
			Location:  c.Location,
		}
	}
	return statsView{
		summaryView: newSummaryView(l, baseURL, now),
		ClickStats: clickStatsView{
			Total:  l.TotalClicks,
			Recent: clicks,
		},
	}
}

func newExpiredView(l *models.Link) expiredView {
	return expiredView{
		ShortCode:   l.ShortCode,
		OriginalURL: l.OriginalURL,
		CreatedAt:   l.CreatedAt,
		ExpiredAt:   l.ExpiresAt,
	}
}

func ok(c *gin.Context, data any) {
	respond(c, http.StatusOK, "", data)
}
