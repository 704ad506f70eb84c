package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fsdevblog/shortlinks/internal/tokens"
)

const (
	VisitorUUIDKey           = "visitorUUID"
	VisitorCookieName        = "visitor"
	VisitorJWTExpireDuration = 24 * time.Hour
)

// VisitorCookieMiddleware определяет посетителя по JWT в cookie и кладёт его UUID в контекст.
// Если cookie нет или токен невалиден, выпускается новый.
func VisitorCookieMiddleware(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorAuthCookie, err := c.Request.Cookie(VisitorCookieName)

		if err != nil && !errors.Is(err, http.ErrNoCookie) {
			// куки не работают. Нам тут делать нечего, отправляем ошибку выше и едем дальше.
			_ = c.Error(fmt.Errorf("visitor cookie middleware: %w", err))
			c.Next()
			return
		}

		var visitorUUID string
		if visitorAuthCookie != nil {
			parsed, parseErr := tokens.ParseVisitorJWT(visitorAuthCookie.Value, jwtSecret)
			if parseErr != nil {
				// выставим новый токен
				_ = c.Error(fmt.Errorf("visitor cookie middleware: %w", parseErr))
			} else {
				visitorUUID = parsed
			}
		}

		if visitorUUID == "" {
			u, uErr := uuid.NewRandom()
			if uErr != nil {
				_ = c.Error(fmt.Errorf("visitor cookie middleware: generate uuid: %w", uErr))
				c.Next()
				return
			}
			tokenString, tokenErr := tokens.GenerateVisitorJWT(u.String(), VisitorJWTExpireDuration, jwtSecret)
			if tokenErr != nil {
				_ = c.Error(fmt.Errorf("visitor cookie middleware: %w", tokenErr))
				c.Next()
				return
			}
			visitorUUID = u.String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(
				VisitorCookieName,
				tokenString,
				int(VisitorJWTExpireDuration.Seconds()),
				"/",
				"",
				false,
				true,
			)
		}

		c.Set(VisitorUUIDKey, visitorUUID)
		c.Next()
	}
}

// VisitorUUID возвращает UUID посетителя, выставленный VisitorCookieMiddleware, или пустую строку.
func VisitorUUID(c *gin.Context) string {
	return c.GetString(VisitorUUIDKey)
}
