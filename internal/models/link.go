package models

import (
	"strings"
	"time"
)

// Длины и значения по умолчанию для коротких ссылок.
const (
	DefaultShortCodeLength = 8
	MinShortCodeLength     = 3
	MaxShortCodeLength     = 20
	DefaultValidity        = 30 * time.Minute
	DefaultCreatedBy       = "anonymous"
)

// Link модель короткой ссылки вместе с журналом переходов.
//
// ShortCode, OriginalURL, CreatedAt и ExpiresAt не меняются после создания.
// TotalClicks всегда равен len(Clicks) у полностью загруженной записи.
type Link struct {
	ID          uint      `gorm:"primaryKey"                        json:"id"          bson:"-"`
	ShortCode   string    `gorm:"uniqueIndex;size:20;not null"      json:"shortCode"   bson:"shortCode"`
	OriginalURL string    `gorm:"not null"                          json:"originalUrl" bson:"originalUrl"`
	CreatedAt   time.Time `gorm:"index;not null"                    json:"createdAt"   bson:"createdAt"`
	ExpiresAt   time.Time `gorm:"index;not null"                    json:"expiresAt"   bson:"expiresAt"`
	IsActive    bool      `gorm:"index;not null"                    json:"isActive"    bson:"isActive"`
	TotalClicks int       `gorm:"not null"                          json:"totalClicks" bson:"totalClicks"`
	CreatedBy   string    `gorm:"size:64"                           json:"createdBy"   bson:"createdBy"`
	Clicks      []Click   `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"clicks" bson:"clicks"`
}

// TimeRemaining время до истечения ссылки, не меньше нуля.
func (l *Link) TimeRemaining(now time.Time) time.Duration {
	remaining := l.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpired строгое сравнение: в момент now == ExpiresAt ссылка ещё действительна.
func (l *Link) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// IsValid ссылка активна и не истекла.
func (l *Link) IsValid(now time.Time) bool {
	return l.IsActive && !l.IsExpired(now)
}

// ShortURL собирает полную короткую ссылку относительно baseURL.
func (l *Link) ShortURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/" + l.ShortCode
}

// RecentClicks возвращает не более n последних переходов в хронологическом порядке.
func (l *Link) RecentClicks(n int) []Click {
	if n <= 0 || len(l.Clicks) == 0 {
		return []Click{}
	}
	if len(l.Clicks) <= n {
		return l.Clicks
	}
	return l.Clicks[len(l.Clicks)-n:]
}
