// Package store persists users and bookmarks through gorm.
// Uniqueness is enforced by the schema; the stores translate constraint
// violations into sentinel errors the services can act on.
package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrUsernameTaken  = errors.New("username already registered")
	ErrURLTaken       = errors.New("url already bookmarked")
	ErrShortCodeTaken = errors.New("short code already in use")
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint failure.
// gorm translates it when TranslateError is set; the driver checks cover handles opened without it.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
