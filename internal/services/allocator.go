package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/fsdevblog/shortlinks/internal/models"
)

// MaxAllocationAttempts количество попыток подобрать свободный случайный код.
const MaxAllocationAttempts = 7

// CodeAlphabet URL-safe алфавит случайных кодов.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

var customCodePattern = regexp.MustCompile(
	fmt.Sprintf(`^[a-zA-Z0-9_-]{%d,%d}$`, models.MinShortCodeLength, models.MaxShortCodeLength),
)

// ValidShortCode проверяет синтаксис пользовательского кода.
func ValidShortCode(code string) bool {
	return customCodePattern.MatchString(code)
}

// RandomCode генерирует код из CodeAlphabet с помощью crypto/rand.
// Алфавит из 64 символов, поэтому младшие 6 бит байта дают равномерное распределение.
func RandomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = CodeAlphabet[b&63]
	}
	return string(buf), nil
}

// Allocator подбирает короткий код для новой ссылки.
//
// Проверка занятости через Exists лишь предварительная: между проверкой и вставкой код может
// занять другой запрос, окончательно уникальность гарантирует хранилище.
type Allocator struct {
	repo     LinkRepository
	generate CodeGenerator
	logger   *zap.Logger
}

func NewAllocator(repo LinkRepository, generate CodeGenerator, logger *zap.Logger) *Allocator {
	if generate == nil {
		generate = RandomCode
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{repo: repo, generate: generate, logger: logger}
}

// AllocateCustom проверяет пользовательский код и возвращает его без изменений.
//
// Ошибки:
//   - ErrInvalidShortCode: код не соответствует [a-zA-Z0-9_-]{3,20}
//   - ErrShortCodeTaken: код уже занят
func (a *Allocator) AllocateCustom(ctx context.Context, candidate string) (string, error) {
	if !ValidShortCode(candidate) {
		return "", fmt.Errorf("%w: %q", ErrInvalidShortCode, candidate)
	}
	taken, err := a.repo.Exists(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("check short code %s: %w", candidate, err)
	}
	if taken {
		return "", fmt.Errorf("%w: %s", ErrShortCodeTaken, candidate)
	}
	return candidate, nil
}

// AllocateRandom генерирует случайный свободный код длины length.
// После MaxAllocationAttempts совпадений подряд возвращает ErrAllocationExhausted.
func (a *Allocator) AllocateRandom(ctx context.Context, length int) (string, error) {
	if length <= 0 {
		length = models.DefaultShortCodeLength
	}
	for attempt := 1; attempt <= MaxAllocationAttempts; attempt++ {
		code, err := a.generate(length)
		if err != nil {
			return "", err
		}
		taken, err := a.repo.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check short code %s: %w", code, err)
		}
		if !taken {
			return code, nil
		}
		a.logger.Debug("short code collision", zap.String("code", code), zap.Int("attempt", attempt))
	}
	return "", ErrAllocationExhausted
}
