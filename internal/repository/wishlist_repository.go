package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"greenmarket/internal/domain"

	"github.com/google/uuid"
)

// WishlistRepository defines the interface for wishlist data access.
// Wishlist names are unique per user and a partial unique index on
// (user_id) WHERE is_default backs the singleton-default invariant.
type WishlistRepository interface {
	Create(ctx context.Context, wishlist domain.Wishlist) error
	Update(ctx context.Context, wishlist domain.Wishlist) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Wishlist, error)
	FindByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Wishlist, error)
	FindDefaultByOwner(ctx context.Context, userID uuid.UUID) (domain.Wishlist, error)
	AddItem(ctx context.Context, item domain.WishlistItem) error
	RemoveItem(ctx context.Context, wishlistID, productID uuid.UUID) error
	FindItems(ctx context.Context, wishlistID uuid.UUID) ([]domain.WishlistItem, error)
}

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a new instance of WishlistRepository
func NewWishlistRepository(db *sql.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

const wishlistColumns = `id, user_id, name, description, is_public, is_default, created_at, updated_at`

// Create inserts a new wishlist
func (r *wishlistRepository) Create(ctx context.Context, wishlist domain.Wishlist) error {
	query := `
		INSERT INTO wishlists (` + wishlistColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		wishlist.ID(),
		wishlist.UserID(),
		wishlist.Name(),
		wishlist.Description(),
		wishlist.IsPublic(),
		wishlist.IsDefault(),
		wishlist.CreatedAt(),
		wishlist.UpdatedAt(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: wishlist %q for user %s", ErrUniqueViolation, wishlist.Name(), wishlist.UserID())
		}
		return fmt.Errorf("failed to create wishlist: %w", err)
	}

	return nil
}

// Update persists the full state of an existing wishlist
func (r *wishlistRepository) Update(ctx context.Context, wishlist domain.Wishlist) error {
	query := `
		UPDATE wishlists
		SET name = $2, description = $3, is_public = $4, is_default = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		wishlist.ID(),
		wishlist.Name(),
		wishlist.Description(),
		wishlist.IsPublic(),
		wishlist.IsDefault(),
		wishlist.UpdatedAt(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: wishlist %q for user %s", ErrUniqueViolation, wishlist.Name(), wishlist.UserID())
		}
		return fmt.Errorf("failed to update wishlist: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrWishlistNotFound
	}

	return nil
}

// Delete removes a wishlist; items go with it via ON DELETE CASCADE
func (r *wishlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM wishlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wishlist: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrWishlistNotFound
	}

	return nil
}

// FindByID retrieves a wishlist by ID, without items
func (r *wishlistRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Wishlist, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlists WHERE id = $1`

	wishlist, err := scanWishlist(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Wishlist{}, ErrWishlistNotFound
		}
		return domain.Wishlist{}, fmt.Errorf("failed to find wishlist by ID: %w", err)
	}

	return wishlist, nil
}

// FindByOwner retrieves all wishlists belonging to a user
func (r *wishlistRepository) FindByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Wishlist, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlists WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlists: %w", err)
	}
	defer rows.Close()

	wishlists := []domain.Wishlist{}
	for rows.Next() {
		wishlist, err := scanWishlist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist: %w", err)
		}
		wishlists = append(wishlists, wishlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishlists: %w", err)
	}

	return wishlists, nil
}

// FindDefaultByOwner retrieves the user's default wishlist, if any
func (r *wishlistRepository) FindDefaultByOwner(ctx context.Context, userID uuid.UUID) (domain.Wishlist, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlists WHERE user_id = $1 AND is_default`

	wishlist, err := scanWishlist(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Wishlist{}, ErrWishlistNotFound
		}
		return domain.Wishlist{}, fmt.Errorf("failed to find default wishlist: %w", err)
	}

	return wishlist, nil
}

// AddItem inserts a wishlist item; the composite primary key rejects
// duplicates.
func (r *wishlistRepository) AddItem(ctx context.Context, item domain.WishlistItem) error {
	query := `
		INSERT INTO wishlist_items (wishlist_id, product_id, added_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, item.WishlistID(), item.ProductID(), item.AddedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product %s already on wishlist %s",
				ErrUniqueViolation, item.ProductID(), item.WishlistID())
		}
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}

	return nil
}

// RemoveItem deletes a wishlist item by its composite key
func (r *wishlistRepository) RemoveItem(ctx context.Context, wishlistID, productID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE wishlist_id = $1 AND product_id = $2`,
		wishlistID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// FindItems retrieves all items on a wishlist
func (r *wishlistRepository) FindItems(ctx context.Context, wishlistID uuid.UUID) ([]domain.WishlistItem, error) {
	query := `
		SELECT wishlist_id, product_id, added_at
		FROM wishlist_items
		WHERE wishlist_id = $1
		ORDER BY added_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	defer rows.Close()

	items := []domain.WishlistItem{}
	for rows.Next() {
		var (
			wid, pid uuid.UUID
			addedAt  time.Time
		)
		if err := rows.Scan(&wid, &pid, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		item, err := domain.NewWishlistItem(wid, pid, addedAt)
		if err != nil {
			return nil, fmt.Errorf("stored wishlist item is invalid: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishlist items: %w", err)
	}

	return items, nil
}

func scanWishlist(row rowScanner) (domain.Wishlist, error) {
	var (
		id, userID           uuid.UUID
		name, description    string
		isPublic, isDefault  bool
		createdAt, updatedAt time.Time
	)

	err := row.Scan(&id, &userID, &name, &description, &isPublic, &isDefault,
		&createdAt, &updatedAt)
	if err != nil {
		return domain.Wishlist{}, err
	}

	wishlist, err := domain.RehydrateWishlist(id, userID, name, description,
		isPublic, isDefault, createdAt, updatedAt)
	if err != nil {
		return domain.Wishlist{}, fmt.Errorf("stored wishlist is invalid: %w", err)
	}

	return wishlist, nil
}
