package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/shortlinks/internal/services"
)

// Ошибки.
var (
	ErrInternal       = errors.New("internal error")  // Прочая ошибка
	ErrInvalidRequest = errors.New("invalid request") // Тело или параметры запроса не разобраны

	ErrShortCodeRequired = errors.New("short code is required")
)

// errorMapping таблица соответствия ошибок статусам и сообщениям клиенту.
var errorMapping = []struct {
	target  error
	status  int
	message string
}{
	{services.ErrURLRequired, http.StatusBadRequest, "Original URL is required"},
	{services.ErrInvalidURL, http.StatusBadRequest, "Invalid URL format"},
	{services.ErrInvalidShortCode, http.StatusBadRequest,
		"Custom short code must be 3-20 characters long and contain only letters, numbers, hyphens, and underscores"},
	{services.ErrInvalidValidity, http.StatusBadRequest, "Validity must be between 1 and 1440 minutes"},
	{ErrInvalidRequest, http.StatusBadRequest, "Invalid request"},
	{ErrShortCodeRequired, http.StatusBadRequest, "Short code is required"},
	{services.ErrShortCodeTaken, http.StatusConflict, "Custom short code already exists"},
	{services.ErrNotFound, http.StatusNotFound, "Short URL not found"},
	{services.ErrExpired, http.StatusGone, "Short URL has expired"},
	{services.ErrInactive, http.StatusGone, "Short URL is inactive"},
	{services.ErrAllocationExhausted, http.StatusServiceUnavailable,
		"Failed to generate unique short code. Please try again."},
}

// errorResponse возвращает статус и сообщение для ошибки.
// Неизвестные ошибки превращаются в 500 без подробностей.
func errorResponse(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

type errorEnvelope struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
}

// abortWithError пишет ошибку в контекст gin (её подхватит логгер) и отвечает конвертом ошибки.
func abortWithError(c *gin.Context, err error, data any) {
	status, message := errorResponse(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorEnvelope{
		Success:   false,
		Error:     message,
		Data:      data,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	})
}
