package repository

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means a unique lookup matched zero rows. Callers must
	// branch on it; it is an expected outcome, not a fault.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a store-level uniqueness rule rejected a write.
	ErrDuplicate = errors.New("duplicate record")
)

func translate(err error) error {
	if err == nil {
		return nil
	}
	if err == gorm.ErrRecordNotFound {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// isUniqueViolation also matches on message text because the sqlite driver
// used in tests does not translate constraint errors into gorm sentinels.
func isUniqueViolation(err error) bool {
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
