package service

import (
	"errors"

	"greenmarket/internal/domain"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
)

// mapNotFound translates the repository not-found family into a domain
// not-found error for the given entity. Other errors pass through
// untouched.
func mapNotFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewNotFoundError(entity, id)
	}
	return err
}

// mapConflict translates a repository unique violation into a domain
// conflict with the given reason. Other errors pass through untouched.
func mapConflict(err error, reason, message string) error {
	if errors.Is(err, repository.ErrUniqueViolation) {
		return domain.NewConflictError(reason, message)
	}
	return err
}
