package models

import (
	"time"
	"unicode/utf8"
)

// Значения по умолчанию для полей перехода.
const (
	DefaultReferrer  = "direct"
	UnknownValue     = "unknown"
	MaxUserAgentLen  = 200 // хранится
	SummaryAgentLen  = 50  // показывается в статистике
	fallbackLocation = "0.0.0.0"
)

// Location страна/город/регион перехода.
type Location struct {
	Country string `gorm:"size:64"  json:"country" bson:"country"`
	City    string `gorm:"size:64"  json:"city"    bson:"city"`
	Region  string `gorm:"size:64"  json:"region"  bson:"region"`
}

// Click один переход по короткой ссылке. Существует только внутри Link.
type Click struct {
	ID        uint      `gorm:"primaryKey"     json:"-" bson:"-"`
	LinkID    uint      `gorm:"index;not null" json:"-" bson:"-"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp" bson:"timestamp"`
	Referrer  string    `gorm:"size:2048"      json:"referrer"  bson:"referrer"`
	UserAgent string    `gorm:"size:200"       json:"userAgent" bson:"userAgent"`
	IPAddress string    `gorm:"size:64"        json:"ipAddress" bson:"ipAddress"`
	Location  Location  `gorm:"embedded;embeddedPrefix:location_" json:"location" bson:"location"`
}

// ClickContext данные входящего запроса, из которых строится Click.
// Пустые поля заменяются значениями по умолчанию.
type ClickContext struct {
	Referrer   string
	UserAgent  string
	IPAddress  string
	OccurredAt time.Time
}

// Normalize подставляет значения по умолчанию вместо пустых полей.
func (c ClickContext) Normalize() ClickContext {
	if c.Referrer == "" {
		c.Referrer = DefaultReferrer
	}
	if c.UserAgent == "" {
		c.UserAgent = UnknownValue
	}
	if c.IPAddress == "" {
		c.IPAddress = UnknownValue
	}
	return c
}

// LocationKey адрес, по которому вычисляется местоположение.
func (c ClickContext) LocationKey() string {
	if c.IPAddress == "" || c.IPAddress == UnknownValue {
		return fallbackLocation
	}
	return c.IPAddress
}

// Truncate обрезает строку до max символов (не байт).
func Truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes])
}
