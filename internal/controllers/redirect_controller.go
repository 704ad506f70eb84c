package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/services"
)

// RedirectController публичная часть: переход по короткой ссылке и её метаданные.
type RedirectController struct {
	links   LinkService
	clicks  ClickDispatcher
	baseURL string
	logger  *zap.Logger
}

func NewRedirectController(
	links LinkService,
	clicks ClickDispatcher,
	baseURL string,
	logger *zap.Logger,
) *RedirectController {
	return &RedirectController{
		links:   links,
		clicks:  clicks,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Redirect обрабатывает GET /:shortCode.
//
// Адрес назначения фиксируется до записи перехода, а сама запись отдаётся диспетчеру:
// её ошибки на ответ не влияют. Истекшая ссылка отдаёт 410 с данными ссылки.
func (r *RedirectController) Redirect(c *gin.Context) {
	code, found := shortCodeParam(c)
	if !found {
		return
	}
	arrived := r.links.Now()

	ctx, cancel := context.WithTimeout(c, DefaultRequestTimeout)
	defer cancel()

	link, err := r.links.Resolve(ctx, code)
	if err != nil {
		var data any
		if errors.Is(err, services.ErrExpired) && link != nil {
			data = newExpiredView(link)
		}
		abortWithError(c, err, data)
		return
	}

	target := link.OriginalURL
	r.clicks.Dispatch(c.Request.Context(), link, models.ClickContext{
		Referrer:   c.GetHeader("Referer"),
		UserAgent:  c.GetHeader("User-Agent"),
		IPAddress:  c.ClientIP(),
		OccurredAt: arrived,
	})

	r.logger.Info("URL redirect successful",
		zap.String("shortCode", code),
		zap.String("originalUrl", target),
	)
	c.Redirect(http.StatusFound, target)
}

// Info обрабатывает GET /:shortCode/info. Переход не записывается, истекшие ссылки отдаются с isExpired.
func (r *RedirectController) Info(c *gin.Context) {
	code, found := shortCodeParam(c)
	if !found {
		return
	}
	ctx, cancel := context.WithTimeout(c, DefaultRequestTimeout)
	defer cancel()

	link, err := r.links.Info(ctx, code)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}
	ok(c, newSummaryView(link, r.baseURL, r.links.Now()))
}
