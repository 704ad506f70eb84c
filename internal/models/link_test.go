package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLink_Expiry(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &Link{ShortCode: "abc", CreatedAt: created, ExpiresAt: created.Add(DefaultValidity), IsActive: true}

	tests := []struct {
		name      string
		now       time.Time
		expired   bool
		valid     bool
		remaining time.Duration
	}{
		{name: "just created", now: created, valid: true, remaining: DefaultValidity},
		{name: "halfway", now: created.Add(15 * time.Minute), valid: true, remaining: 15 * time.Minute},
		{name: "exactly at expiry", now: l.ExpiresAt, valid: true, remaining: 0},
		{name: "one nanosecond later", now: l.ExpiresAt.Add(time.Nanosecond), expired: true, remaining: 0},
		{name: "long after", now: l.ExpiresAt.Add(time.Hour), expired: true, remaining: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, l.IsExpired(tt.now))
			assert.Equal(t, tt.valid, l.IsValid(tt.now))
			assert.Equal(t, tt.remaining, l.TimeRemaining(tt.now))
		})
	}

	l.IsActive = false
	assert.False(t, l.IsValid(created))
	assert.False(t, l.IsExpired(created))
}

func TestLink_ShortURL(t *testing.T) {
	l := &Link{ShortCode: "xyz"}
	assert.Equal(t, "http://localhost:8080/xyz", l.ShortURL("http://localhost:8080"))
	assert.Equal(t, "https://s.example/xyz", l.ShortURL("https://s.example/"))
}

func TestLink_RecentClicks(t *testing.T) {
	l := &Link{}
	assert.Empty(t, l.RecentClicks(10))

	for i := range 15 {
		l.Clicks = append(l.Clicks, Click{Referrer: strings.Repeat("r", i+1)})
	}
	recent := l.RecentClicks(10)
	assert.Len(t, recent, 10)
	assert.Equal(t, strings.Repeat("r", 6), recent[0].Referrer)
	assert.Equal(t, strings.Repeat("r", 15), recent[9].Referrer)
	assert.Len(t, l.RecentClicks(20), 15)
}

func TestClickContext_Normalize(t *testing.T) {
	cc := ClickContext{}.Normalize()
	assert.Equal(t, DefaultReferrer, cc.Referrer)
	assert.Equal(t, UnknownValue, cc.UserAgent)
	assert.Equal(t, UnknownValue, cc.IPAddress)
	assert.Equal(t, "0.0.0.0", cc.LocationKey())

	cc = ClickContext{Referrer: "https://ref", UserAgent: "curl/8", IPAddress: "10.0.0.1"}.Normalize()
	assert.Equal(t, "https://ref", cc.Referrer)
	assert.Equal(t, "curl/8", cc.UserAgent)
	assert.Equal(t, "10.0.0.1", cc.LocationKey())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "пр", Truncate("привет", 2))
	assert.Len(t, []rune(Truncate(strings.Repeat("ж", 300), MaxUserAgentLen)), MaxUserAgentLen)
}
