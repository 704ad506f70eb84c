// Package pg предоставляет реализацию репозитория коротких ссылок для PostgreSQL (pgx).
//
// Ошибки PostgreSQL преобразуются в общие ошибки уровня репозитория с помощью convertErrorType:
//   - uniqueViolationCode (23505) -> repositories.ErrDuplicateKey
//   - pgx.ErrNoRows -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
package pg
