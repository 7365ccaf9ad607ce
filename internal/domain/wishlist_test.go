package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWishlist(t *testing.T) {
	now := time.Now()
	userID := uuid.New()

	w, err := NewWishlist(userID, "Birthday Ideas", "Gifts under 50", false, true, now)
	require.NoError(t, err)
	assert.Equal(t, "Birthday Ideas", w.Name())
	assert.Equal(t, userID, w.OwnerID())
	assert.True(t, w.IsDefault())
	assert.False(t, w.IsPublic())
	assert.Zero(t, w.ItemCount())

	_, err = NewWishlist(uuid.Nil, "x", "", false, false, now)
	assert.True(t, IsValidation(err))

	_, err = NewWishlist(userID, "  ", "", false, false, now)
	assert.True(t, IsValidation(err))

	long := strings.Repeat("x", maxWishlistNameLength+1)
	_, err = NewWishlist(userID, long, "", false, false, now)
	assert.True(t, IsValidation(err))
}

func TestWishlistItems(t *testing.T) {
	now := time.Now()
	w, _ := NewWishlist(uuid.New(), "Favorites", "", true, false, now)
	productID := uuid.New()

	item, err := NewWishlistItem(w.ID(), productID, now)
	require.NoError(t, err)
	assert.Equal(t, w.ID(), item.WishlistID())

	loaded := w.WithItems([]WishlistItem{item})
	assert.Equal(t, 1, loaded.ItemCount())
	assert.True(t, loaded.ContainsProduct(productID))
	assert.False(t, loaded.ContainsProduct(uuid.New()))
	// items are attached to the copy only
	assert.Zero(t, w.ItemCount())

	_, err = NewWishlistItem(uuid.Nil, productID, now)
	assert.True(t, IsValidation(err))

	_, err = NewWishlistItem(w.ID(), uuid.Nil, now)
	assert.True(t, IsValidation(err))
}

func TestWishlistMutators(t *testing.T) {
	now := time.Now()
	w, _ := NewWishlist(uuid.New(), "Favorites", "", false, false, now)

	renamed, err := w.UpdateName("Eco Picks", now)
	require.NoError(t, err)
	assert.Equal(t, "Eco Picks", renamed.Name())

	_, err = w.UpdateName("", now)
	assert.True(t, IsValidation(err))

	public := w.WithVisibility(true, now)
	assert.True(t, public.IsPublic())
	assert.False(t, w.IsPublic())

	flagged := w.WithDefault(true, now)
	assert.True(t, flagged.IsDefault())
}
