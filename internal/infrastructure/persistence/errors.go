package persistence

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations
const pgUniqueViolation = "23505"

// isUniqueViolation reports whether an error is a unique constraint violation,
// either translated by the GORM postgres driver or raw from lib/pq
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
