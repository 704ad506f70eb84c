package services

import "errors"

var (
	ErrUnknown             = errors.New("[service]: unknown error")
	ErrURLRequired         = errors.New("[service]: original url is required")
	ErrInvalidURL          = errors.New("[service]: invalid url")
	ErrInvalidShortCode    = errors.New("[service]: invalid short code")
	ErrShortCodeTaken      = errors.New("[service]: short code already taken")
	ErrAllocationExhausted = errors.New("[service]: failed to allocate unique short code")
	ErrNotFound            = errors.New("[service]: record not found")
	ErrExpired             = errors.New("[service]: short url expired")
	ErrInactive            = errors.New("[service]: short url inactive")
)
