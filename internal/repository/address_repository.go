package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"greenmarket/internal/domain"

	"github.com/google/uuid"
)

// AddressRepository defines the interface for user address data access.
// A partial unique index on (user_id) WHERE is_default backs the
// singleton-default invariant at the storage level.
type AddressRepository interface {
	Create(ctx context.Context, address domain.UserAddress) error
	Update(ctx context.Context, address domain.UserAddress) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.UserAddress, error)
	FindByOwner(ctx context.Context, userID uuid.UUID) ([]domain.UserAddress, error)
	FindDefaultByOwner(ctx context.Context, userID uuid.UUID) (domain.UserAddress, error)
}

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new instance of AddressRepository
func NewAddressRepository(db *sql.DB) AddressRepository {
	return &addressRepository{db: db}
}

const addressColumns = `id, user_id, street, city, state, zip_code, country, is_default, created_at, updated_at`

// Create inserts a new user address
func (r *addressRepository) Create(ctx context.Context, address domain.UserAddress) error {
	query := `
		INSERT INTO user_addresses (` + addressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	a := address.Address()
	_, err := r.db.ExecContext(
		ctx,
		query,
		address.ID(),
		address.UserID(),
		a.Street(),
		a.City(),
		a.State(),
		a.ZipCode(),
		a.Country(),
		address.IsDefault(),
		address.CreatedAt(),
		address.UpdatedAt(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: default address for user %s", ErrUniqueViolation, address.UserID())
		}
		return fmt.Errorf("failed to create address: %w", err)
	}

	return nil
}

// Update persists the full state of an existing address
func (r *addressRepository) Update(ctx context.Context, address domain.UserAddress) error {
	query := `
		UPDATE user_addresses
		SET street = $2, city = $3, state = $4, zip_code = $5, country = $6,
		    is_default = $7, updated_at = $8
		WHERE id = $1
	`

	a := address.Address()
	result, err := r.db.ExecContext(
		ctx,
		query,
		address.ID(),
		a.Street(),
		a.City(),
		a.State(),
		a.ZipCode(),
		a.Country(),
		address.IsDefault(),
		address.UpdatedAt(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: default address for user %s", ErrUniqueViolation, address.UserID())
		}
		return fmt.Errorf("failed to update address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAddressNotFound
	}

	return nil
}

// Delete removes an address
func (r *addressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_addresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAddressNotFound
	}

	return nil
}

// FindByID retrieves an address by ID
func (r *addressRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.UserAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM user_addresses WHERE id = $1`

	address, err := scanAddress(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.UserAddress{}, ErrAddressNotFound
		}
		return domain.UserAddress{}, fmt.Errorf("failed to find address by ID: %w", err)
	}

	return address, nil
}

// FindByOwner retrieves all addresses saved by a user
func (r *addressRepository) FindByOwner(ctx context.Context, userID uuid.UUID) ([]domain.UserAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM user_addresses WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []domain.UserAddress{}
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, address)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// FindDefaultByOwner retrieves the user's default address, if any
func (r *addressRepository) FindDefaultByOwner(ctx context.Context, userID uuid.UUID) (domain.UserAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM user_addresses WHERE user_id = $1 AND is_default`

	address, err := scanAddress(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.UserAddress{}, ErrAddressNotFound
		}
		return domain.UserAddress{}, fmt.Errorf("failed to find default address: %w", err)
	}

	return address, nil
}

func scanAddress(row rowScanner) (domain.UserAddress, error) {
	var (
		id, userID                           uuid.UUID
		street, city, state, zipCode, country string
		isDefault                            bool
		createdAt, updatedAt                 time.Time
	)

	err := row.Scan(&id, &userID, &street, &city, &state, &zipCode, &country,
		&isDefault, &createdAt, &updatedAt)
	if err != nil {
		return domain.UserAddress{}, err
	}

	postal, err := domain.NewAddress(street, city, state, zipCode, country)
	if err != nil {
		return domain.UserAddress{}, fmt.Errorf("stored address is invalid: %w", err)
	}

	address, err := domain.RehydrateUserAddress(id, userID, postal, isDefault, createdAt, updatedAt)
	if err != nil {
		return domain.UserAddress{}, fmt.Errorf("stored address is invalid: %w", err)
	}

	return address, nil
}
