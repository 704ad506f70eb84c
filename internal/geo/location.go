// Package geo содержит заглушку геолокации переходов.
//
// Настоящего поиска по IP здесь нет: адрес детерминированно отображается в одну из
// нескольких фиксированных пар (страна, город). Один и тот же адрес всегда даёт одно
// и то же местоположение.
package geo

import "github.com/fsdevblog/shortlinks/internal/models"

var places = []models.Location{
	{Country: "US", City: "NYC"},
	{Country: "UK", City: "London"},
	{Country: "IN", City: "Mumbai"},
	{Country: "DE", City: "Berlin"},
	{Country: "JP", City: "Tokyo"},
	{Country: "AU", City: "Sydney"},
}

// Locate возвращает местоположение для адреса. Регион всегда неизвестен.
func Locate(addr string) models.Location {
	loc := places[index(addr, len(places))]
	loc.Region = models.UnknownValue
	return loc
}

// index строковый хеш вида h = c + (h<<5 - h), где сдвиг выполняется в int32.
func index(addr string, size int) int {
	var h int64
	for _, c := range addr {
		shifted := int64(int32(h) << 5) //nolint:gosec
		h = int64(c) + (shifted - h)
	}
	if h < 0 {
		h = -h
	}
	return int(h % int64(size))
}
