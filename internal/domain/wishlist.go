package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxWishlistNameLength        = 100
	maxWishlistDescriptionLength = 500
)

// WishlistItem ties a product to a wishlist. It has no identity of its
// own: uniqueness is the (wishlistID, productID) pair.
type WishlistItem struct {
	wishlistID uuid.UUID
	productID  uuid.UUID
	addedAt    time.Time
}

// NewWishlistItem records that a product was added to a wishlist.
func NewWishlistItem(wishlistID, productID uuid.UUID, addedAt time.Time) (WishlistItem, error) {
	if wishlistID == uuid.Nil {
		return WishlistItem{}, NewValidationError("wishlist_id", "wishlist id is required")
	}
	if productID == uuid.Nil {
		return WishlistItem{}, NewValidationError("product_id", "product id is required")
	}
	return WishlistItem{wishlistID: wishlistID, productID: productID, addedAt: addedAt}, nil
}

func (i WishlistItem) WishlistID() uuid.UUID { return i.wishlistID }
func (i WishlistItem) ProductID() uuid.UUID  { return i.productID }
func (i WishlistItem) AddedAt() time.Time    { return i.addedAt }

// Wishlist is a user's named collection of products. Like addresses,
// at most one wishlist per user may be flagged default.
type Wishlist struct {
	id          uuid.UUID
	userID      uuid.UUID
	name        string
	description string
	isPublic    bool
	isDefault   bool
	createdAt   time.Time
	updatedAt   time.Time
	items       []WishlistItem
}

// NewWishlist creates a wishlist for userID.
func NewWishlist(userID uuid.UUID, name, description string, isPublic, isDefault bool,
	now time.Time) (Wishlist, error) {

	w := Wishlist{
		id:          uuid.New(),
		userID:      userID,
		name:        strings.TrimSpace(name),
		description: strings.TrimSpace(description),
		isPublic:    isPublic,
		isDefault:   isDefault,
		createdAt:   now,
		updatedAt:   now,
	}
	if err := w.validate(); err != nil {
		return Wishlist{}, err
	}
	return w, nil
}

// RehydrateWishlist rebuilds a wishlist from persisted state. Items are
// loaded separately and attached via WithItems.
func RehydrateWishlist(id, userID uuid.UUID, name, description string,
	isPublic, isDefault bool, createdAt, updatedAt time.Time) (Wishlist, error) {

	w := Wishlist{
		id:          id,
		userID:      userID,
		name:        strings.TrimSpace(name),
		description: strings.TrimSpace(description),
		isPublic:    isPublic,
		isDefault:   isDefault,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
	if err := w.validate(); err != nil {
		return Wishlist{}, err
	}
	return w, nil
}

func (w Wishlist) validate() error {
	if w.userID == uuid.Nil {
		return NewValidationError("user_id", "user id is required")
	}
	if w.name == "" {
		return NewValidationError("name", "wishlist name cannot be empty")
	}
	if len(w.name) > maxWishlistNameLength {
		return NewValidationError("name",
			fmt.Sprintf("wishlist name cannot exceed %d characters", maxWishlistNameLength))
	}
	if len(w.description) > maxWishlistDescriptionLength {
		return NewValidationError("description",
			fmt.Sprintf("wishlist description cannot exceed %d characters", maxWishlistDescriptionLength))
	}
	return nil
}

// UpdateName renames the wishlist.
func (w Wishlist) UpdateName(name string, now time.Time) (Wishlist, error) {
	w.name = strings.TrimSpace(name)
	w.updatedAt = now
	if err := w.validate(); err != nil {
		return Wishlist{}, err
	}
	return w, nil
}

// UpdateDescription replaces the description.
func (w Wishlist) UpdateDescription(description string, now time.Time) (Wishlist, error) {
	w.description = strings.TrimSpace(description)
	w.updatedAt = now
	if err := w.validate(); err != nil {
		return Wishlist{}, err
	}
	return w, nil
}

// WithVisibility returns a copy flagged public or private.
func (w Wishlist) WithVisibility(isPublic bool, now time.Time) Wishlist {
	w.isPublic = isPublic
	w.updatedAt = now
	return w
}

// WithDefault returns a copy with the default flag set as given.
func (w Wishlist) WithDefault(isDefault bool, now time.Time) Wishlist {
	w.isDefault = isDefault
	w.updatedAt = now
	return w
}

// WithItems returns a copy carrying the loaded items.
func (w Wishlist) WithItems(items []WishlistItem) Wishlist {
	w.items = append([]WishlistItem(nil), items...)
	return w
}

// ContainsProduct reports whether the product is already on the list.
func (w Wishlist) ContainsProduct(productID uuid.UUID) bool {
	for _, item := range w.items {
		if item.productID == productID {
			return true
		}
	}
	return false
}

func (w Wishlist) ID() uuid.UUID        { return w.id }
func (w Wishlist) OwnerID() uuid.UUID   { return w.userID }
func (w Wishlist) UserID() uuid.UUID    { return w.userID }
func (w Wishlist) Name() string         { return w.name }
func (w Wishlist) Description() string  { return w.description }
func (w Wishlist) IsPublic() bool       { return w.isPublic }
func (w Wishlist) IsDefault() bool      { return w.isDefault }
func (w Wishlist) CreatedAt() time.Time { return w.createdAt }
func (w Wishlist) UpdatedAt() time.Time { return w.updatedAt }

// Items returns a copy of the loaded items.
func (w Wishlist) Items() []WishlistItem {
	return append([]WishlistItem(nil), w.items...)
}

// ItemCount returns the number of loaded items.
func (w Wishlist) ItemCount() int { return len(w.items) }
