package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fsdevblog/shortlinks/internal/geo"
	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/repositories"
)

const (
	// DefaultListLimit и MaxListLimit ограничивают размер списка ссылок.
	DefaultListLimit = 50
	MaxListLimit     = 50
	// MaxValidityMinutes максимальный срок жизни ссылки (сутки).
	MaxValidityMinutes = 1440
)

// ErrInvalidValidity срок жизни вне диапазона 1..MaxValidityMinutes.
var ErrInvalidValidity = errors.New("[service]: validity minutes out of range")

// CreateParams параметры создания короткой ссылки.
type CreateParams struct {
	OriginalURL string
	// CustomCode пустой означает случайный код.
	CustomCode string
	// ValidityMinutes ноль означает срок по умолчанию.
	ValidityMinutes int
	CreatedBy       string
}

// LinkService жизненный цикл коротких ссылок: создание, разрешение, учёт переходов, удаление.
type LinkService struct {
	repo            LinkRepository
	allocator       *Allocator
	generate        CodeGenerator
	now             func() time.Time
	logger          *zap.Logger
	codeLength      int
	defaultValidity time.Duration
}

type Option func(*LinkService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *LinkService) {
		s.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *LinkService) {
		s.logger = logger
	}
}

func WithCodeGenerator(generate CodeGenerator) Option {
	return func(s *LinkService) {
		s.generate = generate
	}
}

func WithCodeLength(length int) Option {
	return func(s *LinkService) {
		if length > 0 {
			s.codeLength = length
		}
	}
}

func WithDefaultValidity(d time.Duration) Option {
	return func(s *LinkService) {
		if d > 0 {
			s.defaultValidity = d
		}
	}
}

func NewLinkService(repo LinkRepository, opts ...Option) *LinkService {
	s := &LinkService{
		repo:            repo,
		now:             func() time.Time { return time.Now().UTC() },
		logger:          zap.NewNop(),
		codeLength:      models.DefaultShortCodeLength,
		defaultValidity: models.DefaultValidity,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.allocator = NewAllocator(repo, s.generate, s.logger)
	return s
}

// Create нормализует URL, подбирает код и сохраняет новую активную ссылку.
//
// Ошибки:
//   - ErrURLRequired, ErrInvalidURL: некорректный исходный адрес
//   - ErrInvalidShortCode, ErrShortCodeTaken: некорректный или занятый пользовательский код
//   - ErrInvalidValidity: срок жизни вне диапазона
//   - ErrAllocationExhausted: не удалось подобрать случайный код
func (s *LinkService) Create(ctx context.Context, p CreateParams) (*models.Link, error) {
	if strings.TrimSpace(p.OriginalURL) == "" {
		return nil, ErrURLRequired
	}
	originalURL := NormalizeURL(p.OriginalURL)
	if !IsProbablyURL(originalURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, p.OriginalURL)
	}

	validity := s.defaultValidity
	if p.ValidityMinutes != 0 {
		if p.ValidityMinutes < 1 || p.ValidityMinutes > MaxValidityMinutes {
			return nil, fmt.Errorf("%w: %d", ErrInvalidValidity, p.ValidityMinutes)
		}
		validity = time.Duration(p.ValidityMinutes) * time.Minute
	}

	var (
		code string
		err  error
	)
	if p.CustomCode != "" {
		code, err = s.allocator.AllocateCustom(ctx, p.CustomCode)
	} else {
		code, err = s.allocator.AllocateRandom(ctx, s.codeLength)
	}
	if err != nil {
		return nil, convertRepoError(err)
	}

	createdBy := p.CreatedBy
	if createdBy == "" {
		createdBy = models.DefaultCreatedBy
	}
	now := s.now()
	link := &models.Link{
		ShortCode:   code,
		OriginalURL: originalURL,
		CreatedAt:   now,
		ExpiresAt:   now.Add(validity),
		IsActive:    true,
		TotalClicks: 0,
		CreatedBy:   createdBy,
		Clicks:      []models.Click{},
	}
	if createErr := s.repo.Create(ctx, link); createErr != nil {
		// код заняли между проверкой и вставкой
		if errors.Is(createErr, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrShortCodeTaken, code)
		}
		return nil, convertRepoError(createErr)
	}

	s.logger.Info("Short URL created",
		zap.String("shortCode", link.ShortCode),
		zap.String("originalUrl", link.OriginalURL),
		zap.Time("expiresAt", link.ExpiresAt),
		zap.String("createdBy", link.CreatedBy),
	)
	return link, nil
}

// Resolve находит ссылку для перенаправления.
//
// Для ErrExpired и ErrInactive вместе с ошибкой возвращается и сама ссылка,
// чтобы вызывающий код мог показать её данные.
func (s *LinkService) Resolve(ctx context.Context, shortCode string) (*models.Link, error) {
	link, err := s.get(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	if link.IsExpired(s.now()) {
		return link, fmt.Errorf("%w: %s", ErrExpired, shortCode)
	}
	if !link.IsActive {
		return link, fmt.Errorf("%w: %s", ErrInactive, shortCode)
	}
	return link, nil
}

// RecordClick дописывает переход к ссылке и возвращает её обновлённую копию.
// Время перехода берётся из cc.OccurredAt, а если оно пустое, то текущее.
func (s *LinkService) RecordClick(ctx context.Context, link *models.Link, cc models.ClickContext) (*models.Link, error) {
	cc = cc.Normalize()
	ts := cc.OccurredAt
	if ts.IsZero() {
		ts = s.now()
	}
	click := models.Click{
		Timestamp: ts.UTC(),
		Referrer:  cc.Referrer,
		UserAgent: models.Truncate(cc.UserAgent, models.MaxUserAgentLen),
		IPAddress: cc.IPAddress,
		Location:  geo.Locate(cc.LocationKey()),
	}
	total, err := s.repo.AppendClick(ctx, link.ShortCode, &click)
	if err != nil {
		return nil, convertRepoError(err)
	}

	updated := *link
	updated.Clicks = append(slices.Clone(link.Clicks), click)
	updated.TotalClicks = total
	return &updated, nil
}

// Stats возвращает ссылку с переходами. Истекшая ссылка возвращается вместе с ErrExpired,
// деактивированная отдаётся как есть.
func (s *LinkService) Stats(ctx context.Context, shortCode string) (*models.Link, error) {
	link, err := s.get(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	if link.IsExpired(s.now()) {
		return link, fmt.Errorf("%w: %s", ErrExpired, shortCode)
	}
	return link, nil
}

// Info метаданные ссылки без учёта перехода. Истекшие ссылки тоже возвращаются.
func (s *LinkService) Info(ctx context.Context, shortCode string) (*models.Link, error) {
	return s.get(ctx, shortCode)
}

// List последние созданные ссылки. limit вне 1..MaxListLimit приводится к границам,
// ноль означает DefaultListLimit.
func (s *LinkService) List(ctx context.Context, limit int) ([]models.Link, error) {
	switch {
	case limit == 0:
		limit = DefaultListLimit
	case limit < 1:
		limit = 1
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	links, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, convertRepoError(err)
	}
	return links, nil
}

func (s *LinkService) Delete(ctx context.Context, shortCode string) error {
	if err := s.repo.Delete(ctx, shortCode); err != nil {
		return convertRepoError(err)
	}
	s.logger.Info("Short URL deleted", zap.String("shortCode", shortCode))
	return nil
}

// Deactivate выключает ссылку. Повторный вызов не ошибка.
func (s *LinkService) Deactivate(ctx context.Context, shortCode string) error {
	if err := s.repo.SetActive(ctx, shortCode, false); err != nil {
		return convertRepoError(err)
	}
	s.logger.Info("Short URL deactivated", zap.String("shortCode", shortCode))
	return nil
}

// PurgeExpired удаляет ссылки, истекшие более чем grace назад.
func (s *LinkService) PurgeExpired(ctx context.Context, grace time.Duration) (int64, error) {
	before := s.now().Add(-grace)
	deleted, err := s.repo.PurgeExpired(ctx, before)
	if err != nil {
		return deleted, convertRepoError(err)
	}
	if deleted > 0 {
		s.logger.Info("Expired short URLs purged", zap.Int64("count", deleted), zap.Time("before", before))
	}
	return deleted, nil
}

// Now текущее время сервиса.
func (s *LinkService) Now() time.Time {
	return s.now()
}

func (s *LinkService) get(ctx context.Context, shortCode string) (*models.Link, error) {
	link, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, convertRepoError(err)
	}
	return link, nil
}

// convertRepoError переводит ошибки репозитория в ошибки сервиса.
// Ошибки сервиса (например, от аллокатора) проходят без изменений.
func convertRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repositories.ErrDuplicateKey):
		return fmt.Errorf("%w: %w", ErrShortCodeTaken, err)
	case isServiceError(err):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUnknown, err)
	}
}

func isServiceError(err error) bool {
	for _, target := range []error{
		ErrURLRequired, ErrInvalidURL, ErrInvalidShortCode, ErrShortCodeTaken,
		ErrAllocationExhausted, ErrNotFound, ErrExpired, ErrInactive, ErrInvalidValidity,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
