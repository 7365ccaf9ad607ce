package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"greenmarket/internal/domain"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user profile data access
type UserRepository interface {
	Create(ctx context.Context, user domain.UserProfile) error
	Update(ctx context.Context, user domain.UserProfile) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.UserProfile, error)
	FindByEmail(ctx context.Context, email string) (domain.UserProfile, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, avatar_url,
	role, impact_score, is_active, created_at, updated_at`

// Create inserts a new user profile; the email unique constraint closes
// the registration race.
func (r *userRepository) Create(ctx context.Context, user domain.UserProfile) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID(),
		user.Email(),
		user.PasswordHash(),
		user.FirstName(),
		user.LastName(),
		user.AvatarURL(),
		user.Role(),
		user.ImpactTotal().Hundredths(),
		user.IsActive(),
		user.CreatedAt(),
		user.UpdatedAt(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email %q", ErrUniqueViolation, user.Email())
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Update persists the full state of an existing user profile
func (r *userRepository) Update(ctx context.Context, user domain.UserProfile) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, first_name = $4, last_name = $5,
		    avatar_url = $6, role = $7, impact_score = $8, is_active = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		user.ID(),
		user.Email(),
		user.PasswordHash(),
		user.FirstName(),
		user.LastName(),
		user.AvatarURL(),
		user.Role(),
		user.ImpactTotal().Hundredths(),
		user.IsActive(),
		user.UpdatedAt(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email %q", ErrUniqueViolation, user.Email())
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// FindByID retrieves a user profile by ID
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.UserProfile{}, ErrUserNotFound
		}
		return domain.UserProfile{}, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByEmail retrieves a user profile by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (domain.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.UserProfile{}, ErrUserNotFound
		}
		return domain.UserProfile{}, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// ExistsByEmail reports whether a user with the given email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user email: %w", err)
	}
	return exists, nil
}

func scanUser(row rowScanner) (domain.UserProfile, error) {
	var (
		id                                            uuid.UUID
		email, passwordHash, firstName, lastName      string
		avatarURL, role                               string
		impactHundredths                              int64
		isActive                                      bool
		createdAt, updatedAt                          time.Time
	)

	err := row.Scan(&id, &email, &passwordHash, &firstName, &lastName, &avatarURL,
		&role, &impactHundredths, &isActive, &createdAt, &updatedAt)
	if err != nil {
		return domain.UserProfile{}, err
	}

	impact, err := domain.NewImpactScore(impactHundredths)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("stored impact score is invalid: %w", err)
	}

	user, err := domain.RehydrateUserProfile(id, email, passwordHash, firstName, lastName,
		avatarURL, role, impact, isActive, createdAt, updatedAt)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("stored user is invalid: %w", err)
	}

	return user, nil
}
