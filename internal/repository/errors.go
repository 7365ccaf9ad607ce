package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors surfaced by the repositories. Services translate
// these into domain errors; handlers never see them directly. The
// per-entity sentinels wrap ErrNotFound so generic callers can match
// the whole family with errors.Is.
var (
	ErrNotFound = errors.New("record not found")

	ErrProductNotFound  = fmt.Errorf("%w: product", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("%w: category", ErrNotFound)
	ErrAddressNotFound  = fmt.Errorf("%w: address", ErrNotFound)
	ErrWishlistNotFound = fmt.Errorf("%w: wishlist", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token has been revoked")

	// ErrUniqueViolation wraps a database unique-constraint failure.
	// The constraint closes the check-then-create race that a pre-check
	// in the service layer alone cannot.
	ErrUniqueViolation = errors.New("unique constraint violation")
)

const pgUniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}
