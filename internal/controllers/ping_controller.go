package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingController контроллер для проверки работоспособности сервиса.
type PingController struct {
	conn ConnectionChecker // Проверяет соединение с хранилищем
}

func NewPingController(conn ConnectionChecker) *PingController {
	return &PingController{conn: conn}
}

// Ping обрабатывает GET /ping запрос.
//
// В случае успеха возвращает:
//   - HTTP 200 OK с телом "pong"
//
// В случае ошибки хранилища возвращает:
//   - HTTP 500 Internal Server Error
func (p *PingController) Ping(c *gin.Context) {
	pingCtx, cancel := context.WithTimeout(c, DefaultRequestTimeout)
	defer cancel()
	if err := p.conn.CheckConnection(pingCtx); err != nil {
		_ = c.Error(fmt.Errorf("ping error: %w", err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.String(http.StatusOK, "pong")
}
