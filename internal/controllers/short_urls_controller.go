package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fsdevblog/shortlinks/internal/controllers/middlewares"
	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/services"
)

const DefaultRequestTimeout = 3 * time.Second

// CreateShortURLRequest тело POST /api/shorturls.
type CreateShortURLRequest struct {
	OriginalURL     string `json:"originalUrl"`
	CustomShortCode string `json:"customShortCode"`
	// ValidityMinutes nil означает срок по умолчанию.
	ValidityMinutes *int `json:"validityMinutes" binding:"omitempty,min=1,max=1440"`
}

type ShortURLController struct {
	links   LinkService
	baseURL string
	logger  *zap.Logger
}

func NewShortURLController(links LinkService, baseURL string, logger *zap.Logger) *ShortURLController {
	return &ShortURLController{
		links:   links,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Create обрабатывает POST /api/shorturls.
//
// 201 с данными новой ссылки. 400 на некорректное тело, адрес или код, 409 если код занят.
func (s *ShortURLController) Create(c *gin.Context) {
	var req CreateShortURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err), nil)
		return
	}

	params := services.CreateParams{
		OriginalURL: req.OriginalURL,
		CustomCode:  strings.TrimSpace(req.CustomShortCode),
		CreatedBy:   requester(c),
	}
	if req.ValidityMinutes != nil {
		params.ValidityMinutes = *req.ValidityMinutes
	}

	ctx, cancel := context.WithTimeout(c, DefaultRequestTimeout)
	defer cancel()

	link, err := s.links.Create(ctx, params)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}
	respond(c, http.StatusCreated, "", newCreatedView(link, s.baseURL, s.links.Now()))
}

// List обрабатывает GET /api/shorturls?limit=N.
func (s *ShortURLController) List(c *gin.Context) {
	var limit int
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, ErrInvalidRequest, nil)
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c, DefaultRequestTimeout)
	defer cancel()

	links, err := s.links.List(ctx, limit)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}
	now := s.links.Now()
	views := make([]summaryView, len(links))
	for i := range links {
		views[i] = newSummaryView(&links[i], s.baseURL, now)
	}
	ok(c, views)
}

// Stats обрабатывает GET /api/shorturls/:shortCode.
func (s *ShortURLController) Stats(c *gin.Context) {
	code, found := shortCodeParam(c)
	if !found {
		return
	}
	ctx, cancel := context.WithTimeout(c, DefaultRequestTimeout)
	defer cancel()

	link, err := s.links.Stats(ctx, code)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}
	ok(c, newStatsView(link, s.baseURL, s.links.Now()))
}

// Delete обрабатывает DELETE /api/shorturls/:shortCode.
func (s *ShortURLController) Delete(c *gin.Context) {
	code, found := shortCodeParam(c)
	if !found {
		return
	}
	ctx, cancel := context.WithTimeout(c, DefaultRequestTimeout)
	defer cancel()

	if err := s.links.Delete(ctx, code); err != nil {
		abortWithError(c, err, nil)
		return
	}
	respond(c, http.StatusOK, "Deleted", gin.H{"shortCode": code})
}

// Deactivate обрабатывает PATCH /api/shorturls/:shortCode/deactivate.
func (s *ShortURLController) Deactivate(c *gin.Context) {
	code, found := shortCodeParam(c)
	if !found {
		return
	}
	ctx, cancel := context.WithTimeout(c, DefaultRequestTimeout)
	defer cancel()

	if err := s.links.Deactivate(ctx, code); err != nil {
		abortWithError(c, err, nil)
		return
	}
	respond(c, http.StatusOK, "Deactivated", gin.H{"shortCode": code, "isActive": false})
}

// shortCodeParam достаёт код из пути. При пустом коде отвечает 400.
func shortCodeParam(c *gin.Context) (string, bool) {
	code := strings.TrimSpace(c.Param("shortCode"))
	if code == "" {
		abortWithError(c, ErrShortCodeRequired, nil)
		return "", false
	}
	return code, true
}

// requester автор ссылки: UUID посетителя из cookie, иначе IP клиента, иначе anonymous.
func requester(c *gin.Context) string {
	if id := middlewares.VisitorUUID(c); id != "" {
		return id
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return models.DefaultCreatedBy
}

// bindError отделяет выход validityMinutes за диапазон от прочих ошибок разбора тела.
func bindError(err error) error {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, fe := range vErrs {
			if fe.Field() == "ValidityMinutes" {
				return services.ErrInvalidValidity
			}
		}
	}
	return ErrInvalidRequest
}
