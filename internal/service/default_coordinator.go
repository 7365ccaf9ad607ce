package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenmarket/internal/domain"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Flagged is a record carrying an owner-scoped default flag.
// DefaultCoordinator maintains the invariant that at most one record
// per owner is flagged default at any observable time.
type Flagged[R any] interface {
	ID() uuid.UUID
	OwnerID() uuid.UUID
	IsDefault() bool
	WithDefault(isDefault bool, now time.Time) R
}

// FlaggedStore is the slice of a repository the coordinator needs. The
// address and wishlist repositories satisfy it structurally.
type FlaggedStore[R Flagged[R]] interface {
	FindByID(ctx context.Context, id uuid.UUID) (R, error)
	FindByOwner(ctx context.Context, owner uuid.UUID) ([]R, error)
	Update(ctx context.Context, record R) error
}

// DefaultCoordinator maintains the singleton-default invariant for one
// record type. The clear-then-set sequence is a read-modify-write over
// several rows, so it is serialized per owner key in-process; the
// storage layer's partial unique index on (owner, default) is the
// backstop against writers this process cannot see.
type DefaultCoordinator[R Flagged[R]] struct {
	entity string
	store  FlaggedStore[R]
	locks  *ownerLocks
	logger *zap.Logger
}

// NewDefaultCoordinator creates a coordinator for one record type.
// entity names the record kind in not-found errors ("address",
// "wishlist").
func NewDefaultCoordinator[R Flagged[R]](entity string, store FlaggedStore[R], logger *zap.Logger) *DefaultCoordinator[R] {
	return &DefaultCoordinator[R]{
		entity: entity,
		store:  store,
		locks:  newOwnerLocks(),
		logger: logger,
	}
}

// SetDefault flags the record as its owner's default: every other
// record of the same owner currently flagged is cleared and persisted
// first, then the target is flagged and persisted.
func (c *DefaultCoordinator[R]) SetDefault(ctx context.Context, id uuid.UUID, now time.Time) (R, error) {
	var zero R

	record, err := c.store.FindByID(ctx, id)
	if err != nil {
		return zero, c.mapError(err, id)
	}

	owner := record.OwnerID()
	unlock := c.locks.lock(owner)
	defer unlock()

	// Reload under the lock; the first read may be stale by now.
	record, err = c.store.FindByID(ctx, id)
	if err != nil {
		return zero, c.mapError(err, id)
	}

	if err := c.ClearOthers(ctx, owner, id, now); err != nil {
		return zero, err
	}

	updated := record.WithDefault(true, now)
	if err := c.store.Update(ctx, updated); err != nil {
		return zero, c.mapError(err, id)
	}

	c.logger.Info("default record changed",
		zap.String("entity", c.entity),
		zap.String("owner_id", owner.String()),
		zap.String("record_id", id.String()),
	)

	return updated, nil
}

// WithOwnerLock runs fn while holding the owner's lock, serializing it
// against SetDefault and other locked sections for the same owner.
// Create and update flows that flip the default flag run inside it.
func (c *DefaultCoordinator[R]) WithOwnerLock(owner uuid.UUID, fn func() error) error {
	unlock := c.locks.lock(owner)
	defer unlock()
	return fn()
}

// ClearOthers unflags every record of owner except keep and persists
// each change. Callers other than SetDefault must hold the owner lock
// via WithOwnerLock. Clearing is not all-or-nothing across records;
// a mid-sequence failure leaves fewer flags set, never more, so the
// invariant survives partial completion.
func (c *DefaultCoordinator[R]) ClearOthers(ctx context.Context, owner, keep uuid.UUID, now time.Time) error {
	records, err := c.store.FindByOwner(ctx, owner)
	if err != nil {
		return c.mapError(err, owner)
	}

	for _, record := range records {
		if record.ID() == keep || !record.IsDefault() {
			continue
		}
		if err := c.store.Update(ctx, record.WithDefault(false, now)); err != nil {
			return c.mapError(err, record.ID())
		}
	}

	return nil
}

func (c *DefaultCoordinator[R]) mapError(err error, id uuid.UUID) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return domain.NewNotFoundError(c.entity, id)
	case errors.Is(err, repository.ErrUniqueViolation):
		return domain.NewConflictError("duplicate_default",
			fmt.Sprintf("another %s is already flagged default", c.entity))
	default:
		return err
	}
}
