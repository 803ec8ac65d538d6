package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyExists is returned by repos when a write hits a unique constraint.
	ErrAlreadyExists = errors.New("already exists")
)

// IsUniqueViolation reports whether err is a unique-constraint failure from postgres
// (SQLSTATE 23505) or from a gorm dialect that translates it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate 23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint failed")
}

// MapConflict wraps unique violations with ErrAlreadyExists and passes everything else through.
func MapConflict(err error) error {
	if IsUniqueViolation(err) {
		return errors.Join(ErrAlreadyExists, err)
	}
	return err
}
