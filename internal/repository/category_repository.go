package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"greenmarket/internal/domain"

	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) error
	Update(ctx context.Context, category domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (domain.Category, error)
	FindByParentID(ctx context.Context, parentID uuid.UUID) ([]domain.Category, error)
	FindRoots(ctx context.Context) ([]domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, created_at, updated_at, created_by, updated_by`

// Create inserts a new category. The slug unique constraint is the
// backstop for the service-level existsBySlug pre-check.
func (r *categoryRepository) Create(ctx context.Context, category domain.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID(),
		category.Name(),
		category.Slug(),
		category.Description(),
		category.ParentID(),
		category.CreatedAt(),
		category.UpdatedAt(),
		category.CreatedBy(),
		category.UpdatedBy(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category slug %q", ErrUniqueViolation, category.Slug())
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// Update persists the full state of an existing category
func (r *categoryRepository) Update(ctx context.Context, category domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, parent_id = $5,
		    updated_at = $6, updated_by = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		category.ID(),
		category.Name(),
		category.Slug(),
		category.Description(),
		category.ParentID(),
		category.UpdatedAt(),
		category.UpdatedBy(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category slug %q", ErrUniqueViolation, category.Slug())
		}
		return fmt.Errorf("failed to update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete removes a category. The service layer checks the emptiness
// preconditions first; foreign keys catch anything it missed.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// FindByID retrieves a category by ID
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Category{}, ErrCategoryNotFound
		}
		return domain.Category{}, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// FindBySlug retrieves a category by its slug
func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Category{}, ErrCategoryNotFound
		}
		return domain.Category{}, fmt.Errorf("failed to find category by slug: %w", err)
	}

	return category, nil
}

// FindByParentID retrieves the direct children of a category
func (r *categoryRepository) FindByParentID(ctx context.Context, parentID uuid.UUID) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE parent_id = $1 ORDER BY name ASC`
	return r.queryCategories(ctx, query, parentID)
}

// FindRoots retrieves all categories without a parent
func (r *categoryRepository) FindRoots(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE parent_id IS NULL ORDER BY name ASC`
	return r.queryCategories(ctx, query)
}

// List retrieves all categories as a flat list
func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name ASC`
	return r.queryCategories(ctx, query)
}

// ExistsBySlug reports whether a category with the given slug exists
func (r *categoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category slug: %w", err)
	}
	return exists, nil
}

// CountChildren counts the direct children of a category
func (r *categoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count child categories: %w", err)
	}
	return count, nil
}

func (r *categoryRepository) queryCategories(ctx context.Context, query string, args ...interface{}) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var (
		id, createdBy, updatedBy uuid.UUID
		parentID                 *uuid.UUID
		name, slug, description  string
		createdAt, updatedAt     time.Time
	)

	err := row.Scan(&id, &name, &slug, &description, &parentID,
		&createdAt, &updatedAt, &createdBy, &updatedBy)
	if err != nil {
		return domain.Category{}, err
	}

	category, err := domain.RehydrateCategory(id, name, slug, description, parentID,
		createdAt, updatedAt, createdBy, updatedBy)
	if err != nil {
		return domain.Category{}, fmt.Errorf("stored category is invalid: %w", err)
	}

	return category, nil
}
