// Package tokens выпускает и проверяет JWT посетителя.
//
// Токен хранится в cookie и несёт только UUID посетителя, которым подписываются
// созданные им короткие ссылки (поле createdBy).
package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// VisitorClaims данные JWT токена посетителя.
type VisitorClaims struct {
	jwt.RegisteredClaims
	UUID string `json:"uuid"`
}

// GenerateVisitorJWT создает подписанный HS256 токен для посетителя с UUID visitorUUID,
// действующий expire.
func GenerateVisitorJWT(visitorUUID string, expire time.Duration, key []byte) (string, error) {
	now := time.Now()
	claims := VisitorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
		UUID: visitorUUID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("generating visitor jwt token: %w", err)
	}
	return token, nil
}

// ParseVisitorJWT проверяет подпись и срок действия токена и возвращает UUID посетителя.
//
// Ошибки:
//   - ErrTokenExpired: срок действия истёк
//   - ErrInvalidClaims: в токене нет UUID
func ParseVisitorJWT(tokenString string, key []byte) (string, error) {
	claims := new(VisitorClaims)
	_, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", errors.Wrap(err, "parsing visitor jwt token")
	}
	if claims.UUID == "" {
		return "", ErrInvalidClaims
	}
	return claims.UUID, nil
}
