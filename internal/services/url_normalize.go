package services

import (
	"net/url"
	"regexp"
	"strings"
)

var schemePrefix = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL обрезает пробелы и добавляет https://, если схема не указана.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	// чужая схема (ftp://, mailto:...) не подменяется, такой адрес не пройдёт IsProbablyURL
	if !schemePrefix.MatchString(raw) && !strings.Contains(raw, "://") {
		return "https://" + raw
	}
	return raw
}

// IsProbablyURL проверяет, что строка абсолютный http(s) URL с хостом.
func IsProbablyURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}
