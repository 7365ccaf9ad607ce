package service

import (
	"context"
	"fmt"

	"greenmarket/internal/domain"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService defines the interface for category hierarchy business
// logic
type CategoryService interface {
	Create(ctx context.Context, name, description string, parentID *uuid.UUID, actor uuid.UUID) (domain.Category, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	ListRoots(ctx context.Context) ([]domain.Category, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]domain.Category, error)
	Tree(ctx context.Context) ([]*domain.CategoryNode, error)
	Rename(ctx context.Context, id uuid.UUID, name string, actor uuid.UUID) (domain.Category, error)
	UpdateDescription(ctx context.Context, id uuid.UUID, description string, actor uuid.UUID) (domain.Category, error)
	ChangeParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, actor uuid.UUID) (domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	clock        Clock
	logger       *zap.Logger
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	clock Clock,
	logger *zap.Logger,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		clock:        clock,
		logger:       logger,
	}
}

// Create builds and persists a category. The slug derived from the name
// must be free and the parent, when given, must exist. The slug unique
// constraint closes the check-then-create race.
func (s *categoryService) Create(ctx context.Context, name, description string, parentID *uuid.UUID, actor uuid.UUID) (domain.Category, error) {
	if parentID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *parentID); err != nil {
			return domain.Category{}, mapNotFound(err, "category", *parentID)
		}
	}

	if err := s.checkSlugFree(ctx, domain.Slugify(name)); err != nil {
		return domain.Category{}, err
	}

	category, err := domain.NewCategory(name, description, parentID, actor, s.clock())
	if err != nil {
		return domain.Category{}, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return domain.Category{}, mapConflict(err, domain.ReasonDuplicateSlug,
			fmt.Sprintf("category slug %q already exists", category.Slug()))
	}

	s.logger.Info("category created",
		zap.String("category_id", category.ID().String()),
		zap.String("slug", category.Slug()),
	)

	return category, nil
}

// Get retrieves a category by ID
func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Category{}, mapNotFound(err, "category", id)
	}
	return category, nil
}

// GetBySlug retrieves a category by its slug
func (s *categoryService) GetBySlug(ctx context.Context, slug string) (domain.Category, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Category{}, mapNotFound(err, "category", uuid.Nil)
	}
	return category, nil
}

// List retrieves all categories as a flat list
func (s *categoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// ListRoots retrieves all top-level categories
func (s *categoryService) ListRoots(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.FindRoots(ctx)
}

// ListChildren retrieves the direct children of a category
func (s *categoryService) ListChildren(ctx context.Context, parentID uuid.UUID) ([]domain.Category, error) {
	if _, err := s.categoryRepo.FindByID(ctx, parentID); err != nil {
		return nil, mapNotFound(err, "category", parentID)
	}
	return s.categoryRepo.FindByParentID(ctx, parentID)
}

// Tree assembles the full category hierarchy from the flat list
func (s *categoryService) Tree(ctx context.Context) ([]*domain.CategoryNode, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.BuildCategoryTree(categories), nil
}

// Rename renames the category. The slug is re-derived from the new
// name, so the freed slug check runs again unless the slug is
// unchanged.
func (s *categoryService) Rename(ctx context.Context, id uuid.UUID, name string, actor uuid.UUID) (domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Category{}, mapNotFound(err, "category", id)
	}

	newSlug := domain.Slugify(name)
	if newSlug != category.Slug() {
		if err := s.checkSlugFree(ctx, newSlug); err != nil {
			return domain.Category{}, err
		}
	}

	updated, err := category.UpdateName(name, actor, s.clock())
	if err != nil {
		return domain.Category{}, err
	}

	if err := s.categoryRepo.Update(ctx, updated); err != nil {
		err = mapNotFound(err, "category", id)
		return domain.Category{}, mapConflict(err, domain.ReasonDuplicateSlug,
			fmt.Sprintf("category slug %q already exists", updated.Slug()))
	}

	return updated, nil
}

// UpdateDescription replaces the category description
func (s *categoryService) UpdateDescription(ctx context.Context, id uuid.UUID, description string, actor uuid.UUID) (domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Category{}, mapNotFound(err, "category", id)
	}

	updated, err := category.UpdateDescription(description, actor, s.clock())
	if err != nil {
		return domain.Category{}, err
	}

	if err := s.categoryRepo.Update(ctx, updated); err != nil {
		return domain.Category{}, mapNotFound(err, "category", id)
	}

	return updated, nil
}

// ChangeParent re-parents the category. Besides the direct self-parent
// check inside the aggregate, the whole ancestor chain of the new
// parent is walked against the stored hierarchy: a move that would put
// the category underneath one of its own descendants is refused.
func (s *categoryService) ChangeParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, actor uuid.UUID) (domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Category{}, mapNotFound(err, "category", id)
	}

	if parentID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *parentID); err != nil {
			return domain.Category{}, mapNotFound(err, "category", *parentID)
		}

		all, err := s.categoryRepo.List(ctx)
		if err != nil {
			return domain.Category{}, err
		}
		if domain.DetectParentCycle(id, *parentID, all) {
			return domain.Category{}, domain.NewInvariantError(domain.RuleParentCycle,
				fmt.Sprintf("moving category %s under %s would create a cycle", id, *parentID))
		}
	}

	updated, err := category.ChangeParent(parentID, actor, s.clock())
	if err != nil {
		return domain.Category{}, err
	}

	if err := s.categoryRepo.Update(ctx, updated); err != nil {
		return domain.Category{}, mapNotFound(err, "category", id)
	}

	s.logger.Info("category re-parented",
		zap.String("category_id", id.String()),
		zap.Bool("is_root", updated.IsRoot()),
	)

	return updated, nil
}

// Delete removes a category. A category still referenced by products or
// still holding child categories cannot be deleted.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return mapNotFound(err, "category", id)
	}

	productCount, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if productCount > 0 {
		return domain.NewConflictError(domain.ReasonCategoryNotEmpty,
			fmt.Sprintf("category %s still has %d products", id, productCount))
	}

	childCount, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if childCount > 0 {
		return domain.NewConflictError(domain.ReasonCategoryHasChildren,
			fmt.Sprintf("category %s still has %d child categories", id, childCount))
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err, "category", id)
	}

	s.logger.Info("category deleted", zap.String("category_id", id.String()))
	return nil
}

func (s *categoryService) checkSlugFree(ctx context.Context, slug string) error {
	exists, err := s.categoryRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if exists {
		return domain.NewConflictError(domain.ReasonDuplicateSlug,
			fmt.Sprintf("category slug %q already exists", slug))
	}
	return nil
}
