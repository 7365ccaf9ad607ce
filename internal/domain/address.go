package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Address is a self-validating postal address value object.
type Address struct {
	street  string
	city    string
	state   string
	zipCode string
	country string
}

// NewAddress validates and builds an address. State and zip code are
// optional; street, city and country are not.
func NewAddress(street, city, state, zipCode, country string) (Address, error) {
	a := Address{
		street:  strings.TrimSpace(street),
		city:    strings.TrimSpace(city),
		state:   strings.TrimSpace(state),
		zipCode: strings.TrimSpace(zipCode),
		country: strings.TrimSpace(country),
	}
	switch {
	case a.street == "":
		return Address{}, NewValidationError("street", "street cannot be empty")
	case len(a.street) > 255:
		return Address{}, NewValidationError("street", "street cannot exceed 255 characters")
	case a.city == "":
		return Address{}, NewValidationError("city", "city cannot be empty")
	case len(a.city) > 100:
		return Address{}, NewValidationError("city", "city cannot exceed 100 characters")
	case len(a.state) > 100:
		return Address{}, NewValidationError("state", "state cannot exceed 100 characters")
	case len(a.zipCode) > 20:
		return Address{}, NewValidationError("zip_code", "zip code cannot exceed 20 characters")
	case a.country == "":
		return Address{}, NewValidationError("country", "country cannot be empty")
	case len(a.country) > 100:
		return Address{}, NewValidationError("country", "country cannot exceed 100 characters")
	}
	return a, nil
}

func (a Address) Street() string  { return a.street }
func (a Address) City() string    { return a.city }
func (a Address) State() string   { return a.state }
func (a Address) ZipCode() string { return a.zipCode }
func (a Address) Country() string { return a.country }

// IsInCountry reports whether the address is in the given country,
// case-insensitively.
func (a Address) IsInCountry(country string) bool {
	return strings.EqualFold(a.country, strings.TrimSpace(country))
}

func (a Address) String() string {
	parts := []string{a.street, a.city}
	if a.state != "" {
		parts = append(parts, a.state)
	}
	if a.zipCode != "" {
		parts = append(parts, a.zipCode)
	}
	parts = append(parts, a.country)
	return strings.Join(parts, ", ")
}

// UserAddress is a user's saved shipping address. At most one address
// per user may be flagged default at any observable time; the service
// layer's default coordinator maintains that invariant.
type UserAddress struct {
	id        uuid.UUID
	userID    uuid.UUID
	address   Address
	isDefault bool
	createdAt time.Time
	updatedAt time.Time
}

// NewUserAddress creates a saved address for userID.
func NewUserAddress(userID uuid.UUID, address Address, isDefault bool, now time.Time) (UserAddress, error) {
	if userID == uuid.Nil {
		return UserAddress{}, NewValidationError("user_id", "user id is required")
	}
	return UserAddress{
		id:        uuid.New(),
		userID:    userID,
		address:   address,
		isDefault: isDefault,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// RehydrateUserAddress rebuilds a saved address from persisted state.
func RehydrateUserAddress(id, userID uuid.UUID, address Address, isDefault bool,
	createdAt, updatedAt time.Time) (UserAddress, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return UserAddress{}, NewValidationError("id", "address and user ids are required")
	}
	return UserAddress{
		id:        id,
		userID:    userID,
		address:   address,
		isDefault: isDefault,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// WithDefault returns a copy with the default flag set as given.
func (ua UserAddress) WithDefault(isDefault bool, now time.Time) UserAddress {
	ua.isDefault = isDefault
	ua.updatedAt = now
	return ua
}

// WithAddress returns a copy carrying the new postal address.
func (ua UserAddress) WithAddress(address Address, now time.Time) UserAddress {
	ua.address = address
	ua.updatedAt = now
	return ua
}

func (ua UserAddress) ID() uuid.UUID        { return ua.id }
func (ua UserAddress) OwnerID() uuid.UUID   { return ua.userID }
func (ua UserAddress) UserID() uuid.UUID    { return ua.userID }
func (ua UserAddress) Address() Address     { return ua.address }
func (ua UserAddress) IsDefault() bool      { return ua.isDefault }
func (ua UserAddress) CreatedAt() time.Time { return ua.createdAt }
func (ua UserAddress) UpdatedAt() time.Time { return ua.updatedAt }

func (ua UserAddress) String() string {
	return fmt.Sprintf("UserAddress{%s, default=%t}", ua.address, ua.isDefault)
}
