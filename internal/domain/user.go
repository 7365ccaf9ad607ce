package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles a profile can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UserProfile is the account aggregate. Addresses and wishlists belong
// to the user but are persisted and loaded independently; a profile
// never eagerly carries them.
type UserProfile struct {
	id           uuid.UUID
	email        string
	passwordHash string
	firstName    string
	lastName     string
	avatarURL    string
	role         string
	impactTotal  ImpactScore
	isActive     bool
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUserProfile creates an active profile with the user role and a
// zero impact score. The password arrives already hashed; the domain
// never sees plaintext credentials.
func NewUserProfile(email, passwordHash, firstName, lastName string, now time.Time) (UserProfile, error) {
	u := UserProfile{
		id:           uuid.New(),
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
		firstName:    strings.TrimSpace(firstName),
		lastName:     strings.TrimSpace(lastName),
		role:         RoleUser,
		impactTotal:  ZeroImpactScore(),
		isActive:     true,
		createdAt:    now,
		updatedAt:    now,
	}
	if err := u.validate(); err != nil {
		return UserProfile{}, err
	}
	return u, nil
}

// RehydrateUserProfile rebuilds a profile from persisted state.
func RehydrateUserProfile(id uuid.UUID, email, passwordHash, firstName, lastName, avatarURL,
	role string, impactTotal ImpactScore, isActive bool, createdAt, updatedAt time.Time) (UserProfile, error) {

	u := UserProfile{
		id:           id,
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
		firstName:    strings.TrimSpace(firstName),
		lastName:     strings.TrimSpace(lastName),
		avatarURL:    strings.TrimSpace(avatarURL),
		role:         role,
		impactTotal:  impactTotal,
		isActive:     isActive,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
	if err := u.validate(); err != nil {
		return UserProfile{}, err
	}
	return u, nil
}

func (u UserProfile) validate() error {
	if u.email == "" {
		return NewValidationError("email", "email cannot be empty")
	}
	if !emailPattern.MatchString(u.email) {
		return NewValidationError("email", fmt.Sprintf("invalid email address %q", u.email))
	}
	if u.passwordHash == "" {
		return NewValidationError("password", "password hash cannot be empty")
	}
	if len(u.firstName) > 100 {
		return NewValidationError("first_name", "first name cannot exceed 100 characters")
	}
	if len(u.lastName) > 100 {
		return NewValidationError("last_name", "last name cannot exceed 100 characters")
	}
	if u.role != RoleUser && u.role != RoleAdmin {
		return NewValidationError("role", fmt.Sprintf("unknown role %q", u.role))
	}
	return nil
}

// UpdateProfile replaces the editable profile fields.
func (u UserProfile) UpdateProfile(firstName, lastName, avatarURL string, now time.Time) (UserProfile, error) {
	u.firstName = strings.TrimSpace(firstName)
	u.lastName = strings.TrimSpace(lastName)
	u.avatarURL = strings.TrimSpace(avatarURL)
	u.updatedAt = now
	if err := u.validate(); err != nil {
		return UserProfile{}, err
	}
	return u, nil
}

// AddImpact accumulates earned impact points onto the running total.
func (u UserProfile) AddImpact(earned ImpactScore, now time.Time) (UserProfile, error) {
	total, err := u.impactTotal.Add(earned)
	if err != nil {
		return UserProfile{}, err
	}
	u.impactTotal = total
	u.updatedAt = now
	return u, nil
}

// Activate re-enables the account.
func (u UserProfile) Activate(now time.Time) UserProfile {
	u.isActive = true
	u.updatedAt = now
	return u
}

// Deactivate disables the account without deleting it.
func (u UserProfile) Deactivate(now time.Time) UserProfile {
	u.isActive = false
	u.updatedAt = now
	return u
}

func (u UserProfile) ID() uuid.UUID            { return u.id }
func (u UserProfile) Email() string            { return u.email }
func (u UserProfile) PasswordHash() string     { return u.passwordHash }
func (u UserProfile) FirstName() string        { return u.firstName }
func (u UserProfile) LastName() string         { return u.lastName }
func (u UserProfile) AvatarURL() string        { return u.avatarURL }
func (u UserProfile) Role() string             { return u.role }
func (u UserProfile) ImpactTotal() ImpactScore { return u.impactTotal }
func (u UserProfile) IsActive() bool           { return u.isActive }
func (u UserProfile) CreatedAt() time.Time     { return u.createdAt }
func (u UserProfile) UpdatedAt() time.Time     { return u.updatedAt }
