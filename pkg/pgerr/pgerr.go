// Package pgerr классифицирует ошибки PostgreSQL по SQLSTATE
package pgerr

import (
	"errors"

	"github.com/lib/pq"
)

const (
	CodeUniqueViolation      = "23505"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
	CodeLockNotAvailable     = "55P03"
	CodeQueryCanceled        = "57014"
)

// Code возвращает SQLSTATE из цепочки ошибок или пустую строку
func Code(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation нарушение уникального индекса
func IsUniqueViolation(err error) bool {
	return Code(err) == CodeUniqueViolation
}

// IsLockTimeout истёк lock_timeout
// 57014 сюда не относится: его же сервер возвращает при отмене контекста клиента
func IsLockTimeout(err error) bool {
	return Code(err) == CodeLockNotAvailable
}

// IsQueryCanceled statement отменён (отмена контекста или statement_timeout)
func IsQueryCanceled(err error) bool {
	return Code(err) == CodeQueryCanceled
}

// IsRetriable ошибки, после которых транзакцию можно безопасно повторить
func IsRetriable(err error) bool {
	code := Code(err)
	return code == CodeSerializationFailure || code == CodeDeadlockDetected
}
