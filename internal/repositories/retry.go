package repositories

import (
	"errors"

	"github.com/lib/pq"
)

// withRetry runs fn and retries it exactly once when the failure is a
// transient Postgres condition (serialization failure or deadlock).
func withRetry(fn func() error) error {
	err := fn()
	if err != nil && isTransient(err) {
		return fn()
	}
	return err
}

func isTransient(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
