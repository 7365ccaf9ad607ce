package service

import (
	"context"
	"fmt"

	"greenmarket/internal/domain"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WishlistService defines the interface for wishlist business logic.
// Mutations are scoped to the owning user; reads of foreign wishlists
// succeed only when the list is public.
type WishlistService interface {
	Create(ctx context.Context, userID uuid.UUID, name, description string, isPublic, isDefault bool) (domain.Wishlist, error)
	Update(ctx context.Context, id, userID uuid.UUID, name, description string, isPublic, isDefault bool) (domain.Wishlist, error)
	Rename(ctx context.Context, id, userID uuid.UUID, name string) (domain.Wishlist, error)
	UpdateDescription(ctx context.Context, id, userID uuid.UUID, description string) (domain.Wishlist, error)
	SetVisibility(ctx context.Context, id, userID uuid.UUID, isPublic bool) (domain.Wishlist, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Get(ctx context.Context, id, requesterID uuid.UUID) (domain.Wishlist, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.Wishlist, error)
	GetDefault(ctx context.Context, userID uuid.UUID) (domain.Wishlist, error)
	SetDefault(ctx context.Context, id, userID uuid.UUID) (domain.Wishlist, error)
	AddItem(ctx context.Context, id, userID, productID uuid.UUID) (domain.Wishlist, error)
	RemoveItem(ctx context.Context, id, userID, productID uuid.UUID) (domain.Wishlist, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	coordinator  *DefaultCoordinator[domain.Wishlist]
	clock        Clock
	logger       *zap.Logger
}

// NewWishlistService creates a new instance of WishlistService
func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
	clock Clock,
	logger *zap.Logger,
) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		coordinator:  NewDefaultCoordinator[domain.Wishlist]("wishlist", wishlistRepo, logger),
		clock:        clock,
		logger:       logger,
	}
}

// Create builds and persists a wishlist. Names are unique per user; the
// (user_id, name) unique constraint backs the pre-check. A wishlist
// flagged default clears the user's previous default first, under the
// user's lock.
func (s *wishlistService) Create(ctx context.Context, userID uuid.UUID, name, description string, isPublic, isDefault bool) (domain.Wishlist, error) {
	wishlist, err := domain.NewWishlist(userID, name, description, isPublic, isDefault, s.clock())
	if err != nil {
		return domain.Wishlist{}, err
	}

	if err := s.checkNameFree(ctx, userID, wishlist.Name()); err != nil {
		return domain.Wishlist{}, err
	}

	create := func() error {
		if err := s.wishlistRepo.Create(ctx, wishlist); err != nil {
			return mapConflict(err, domain.ReasonDuplicateWishlist,
				fmt.Sprintf("wishlist %q already exists", wishlist.Name()))
		}
		return nil
	}

	if isDefault {
		err = s.coordinator.WithOwnerLock(userID, func() error {
			if err := s.coordinator.ClearOthers(ctx, userID, wishlist.ID(), s.clock()); err != nil {
				return err
			}
			return create()
		})
	} else {
		err = create()
	}
	if err != nil {
		return domain.Wishlist{}, err
	}

	s.logger.Info("wishlist created",
		zap.String("wishlist_id", wishlist.ID().String()),
		zap.String("user_id", userID.String()),
		zap.Bool("is_default", isDefault),
	)

	return wishlist, nil
}

// Update replaces every editable wishlist field at once. Flipping the
// default flag to true clears the user's previous default first, under
// the user's lock; flipping it to false simply unflags, leaving the
// user with no default wishlist.
func (s *wishlistService) Update(ctx context.Context, id, userID uuid.UUID, name, description string, isPublic, isDefault bool) (domain.Wishlist, error) {
	wishlist, err := s.ownedWishlist(ctx, id, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}

	updated, err := wishlist.UpdateName(name, s.clock())
	if err != nil {
		return domain.Wishlist{}, err
	}
	if updated.Name() != wishlist.Name() {
		if err := s.checkNameFree(ctx, userID, updated.Name()); err != nil {
			return domain.Wishlist{}, err
		}
	}
	updated, err = updated.UpdateDescription(description, s.clock())
	if err != nil {
		return domain.Wishlist{}, err
	}
	updated = updated.WithVisibility(isPublic, s.clock()).WithDefault(isDefault, s.clock())

	persist := func() error {
		if err := s.wishlistRepo.Update(ctx, updated); err != nil {
			err = mapNotFound(err, "wishlist", id)
			return mapConflict(err, domain.ReasonDuplicateWishlist,
				fmt.Sprintf("wishlist %q already exists", updated.Name()))
		}
		return nil
	}

	if isDefault {
		err = s.coordinator.WithOwnerLock(userID, func() error {
			if err := s.coordinator.ClearOthers(ctx, userID, id, s.clock()); err != nil {
				return err
			}
			return persist()
		})
	} else {
		err = persist()
	}
	if err != nil {
		return domain.Wishlist{}, err
	}

	return updated, nil
}

// Rename renames the wishlist, keeping names unique per user
func (s *wishlistService) Rename(ctx context.Context, id, userID uuid.UUID, name string) (domain.Wishlist, error) {
	return s.mutate(ctx, id, userID, func(w domain.Wishlist) (domain.Wishlist, error) {
		renamed, err := w.UpdateName(name, s.clock())
		if err != nil {
			return domain.Wishlist{}, err
		}
		if renamed.Name() != w.Name() {
			if err := s.checkNameFree(ctx, userID, renamed.Name()); err != nil {
				return domain.Wishlist{}, err
			}
		}
		return renamed, nil
	})
}

// UpdateDescription replaces the wishlist description
func (s *wishlistService) UpdateDescription(ctx context.Context, id, userID uuid.UUID, description string) (domain.Wishlist, error) {
	return s.mutate(ctx, id, userID, func(w domain.Wishlist) (domain.Wishlist, error) {
		return w.UpdateDescription(description, s.clock())
	})
}

// SetVisibility flags the wishlist public or private
func (s *wishlistService) SetVisibility(ctx context.Context, id, userID uuid.UUID, isPublic bool) (domain.Wishlist, error) {
	return s.mutate(ctx, id, userID, func(w domain.Wishlist) (domain.Wishlist, error) {
		return w.WithVisibility(isPublic, s.clock()), nil
	})
}

// Delete removes the wishlist and, via cascade, its items. Deleting the
// default wishlist leaves the user with no default.
func (s *wishlistService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.ownedWishlist(ctx, id, userID); err != nil {
		return err
	}

	if err := s.wishlistRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err, "wishlist", id)
	}

	s.logger.Info("wishlist deleted",
		zap.String("wishlist_id", id.String()),
		zap.String("user_id", userID.String()),
	)

	return nil
}

// Get retrieves a wishlist with its items. The owner always sees it;
// anyone else only when it is public.
func (s *wishlistService) Get(ctx context.Context, id, requesterID uuid.UUID) (domain.Wishlist, error) {
	wishlist, err := s.wishlistRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Wishlist{}, mapNotFound(err, "wishlist", id)
	}

	if wishlist.UserID() != requesterID && !wishlist.IsPublic() {
		return domain.Wishlist{}, domain.NewNotFoundError("wishlist", id)
	}

	return s.withItems(ctx, wishlist)
}

// List retrieves all wishlists belonging to the user, without items
func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]domain.Wishlist, error) {
	return s.wishlistRepo.FindByOwner(ctx, userID)
}

// GetDefault retrieves the user's default wishlist with its items
func (s *wishlistService) GetDefault(ctx context.Context, userID uuid.UUID) (domain.Wishlist, error) {
	wishlist, err := s.wishlistRepo.FindDefaultByOwner(ctx, userID)
	if err != nil {
		return domain.Wishlist{}, mapNotFound(err, "wishlist", uuid.Nil)
	}
	return s.withItems(ctx, wishlist)
}

// SetDefault flags the wishlist as the user's default, clearing any
// previous default atomically with respect to other flag changes for
// the same user.
func (s *wishlistService) SetDefault(ctx context.Context, id, userID uuid.UUID) (domain.Wishlist, error) {
	if _, err := s.ownedWishlist(ctx, id, userID); err != nil {
		return domain.Wishlist{}, err
	}
	return s.coordinator.SetDefault(ctx, id, s.clock())
}

// AddItem puts an existing product on the wishlist. Adding a product
// already on the list is a conflict; the composite primary key closes
// the check-then-insert race.
func (s *wishlistService) AddItem(ctx context.Context, id, userID, productID uuid.UUID) (domain.Wishlist, error) {
	wishlist, err := s.ownedWishlist(ctx, id, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return domain.Wishlist{}, mapNotFound(err, "product", productID)
	}

	item, err := domain.NewWishlistItem(id, productID, s.clock())
	if err != nil {
		return domain.Wishlist{}, err
	}

	if err := s.wishlistRepo.AddItem(ctx, item); err != nil {
		return domain.Wishlist{}, mapConflict(err, domain.ReasonDuplicateItem,
			fmt.Sprintf("product %s is already on the wishlist", productID))
	}

	return s.withItems(ctx, wishlist)
}

// RemoveItem takes a product off the wishlist
func (s *wishlistService) RemoveItem(ctx context.Context, id, userID, productID uuid.UUID) (domain.Wishlist, error) {
	wishlist, err := s.ownedWishlist(ctx, id, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}

	if err := s.wishlistRepo.RemoveItem(ctx, id, productID); err != nil {
		return domain.Wishlist{}, mapNotFound(err, "wishlist item", productID)
	}

	return s.withItems(ctx, wishlist)
}

// mutate runs the load, ownership check, apply, persist cycle shared by
// the simple wishlist mutations.
func (s *wishlistService) mutate(ctx context.Context, id, userID uuid.UUID,
	apply func(domain.Wishlist) (domain.Wishlist, error)) (domain.Wishlist, error) {

	wishlist, err := s.ownedWishlist(ctx, id, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}

	updated, err := apply(wishlist)
	if err != nil {
		return domain.Wishlist{}, err
	}

	if err := s.wishlistRepo.Update(ctx, updated); err != nil {
		err = mapNotFound(err, "wishlist", id)
		return domain.Wishlist{}, mapConflict(err, domain.ReasonDuplicateWishlist,
			fmt.Sprintf("wishlist %q already exists", updated.Name()))
	}

	return updated, nil
}

// ownedWishlist loads the wishlist and checks it belongs to the
// requesting user. A mismatch reports not-found so the response does
// not leak that the wishlist exists.
func (s *wishlistService) ownedWishlist(ctx context.Context, id, userID uuid.UUID) (domain.Wishlist, error) {
	wishlist, err := s.wishlistRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Wishlist{}, mapNotFound(err, "wishlist", id)
	}
	if wishlist.UserID() != userID {
		return domain.Wishlist{}, domain.NewNotFoundError("wishlist", id)
	}
	return wishlist, nil
}

func (s *wishlistService) withItems(ctx context.Context, wishlist domain.Wishlist) (domain.Wishlist, error) {
	items, err := s.wishlistRepo.FindItems(ctx, wishlist.ID())
	if err != nil {
		return domain.Wishlist{}, err
	}
	return wishlist.WithItems(items), nil
}

func (s *wishlistService) checkNameFree(ctx context.Context, userID uuid.UUID, name string) error {
	existing, err := s.wishlistRepo.FindByOwner(ctx, userID)
	if err != nil {
		return err
	}
	for _, w := range existing {
		if w.Name() == name {
			return domain.NewConflictError(domain.ReasonDuplicateWishlist,
				fmt.Sprintf("wishlist %q already exists", name))
		}
	}
	return nil
}
