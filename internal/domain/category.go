package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxCategoryNameLength        = 100
	maxCategoryDescriptionLength = 1000
)

// Category is a node in the catalog hierarchy. The slug is always
// derived from the name via Slugify; renaming re-derives it.
type Category struct {
	id          uuid.UUID
	name        string
	slug        string
	description string
	parentID    *uuid.UUID
	createdAt   time.Time
	updatedAt   time.Time
	createdBy   uuid.UUID
	updatedBy   uuid.UUID
}

// NewCategory creates a category, deriving the slug from name. Slug
// uniqueness is a precondition checked by the repository collaborator
// before construction; the database unique constraint is the backstop.
func NewCategory(name, description string, parentID *uuid.UUID,
	actor uuid.UUID, now time.Time) (Category, error) {

	c := Category{
		id:          uuid.New(),
		name:        strings.TrimSpace(name),
		slug:        Slugify(name),
		description: strings.TrimSpace(description),
		parentID:    cloneParentID(parentID),
		createdAt:   now,
		updatedAt:   now,
		createdBy:   actor,
		updatedBy:   actor,
	}
	if err := c.validate(); err != nil {
		return Category{}, err
	}
	return c, nil
}

// RehydrateCategory rebuilds a category from persisted state.
func RehydrateCategory(id uuid.UUID, name, slug, description string, parentID *uuid.UUID,
	createdAt, updatedAt time.Time, createdBy, updatedBy uuid.UUID) (Category, error) {

	c := Category{
		id:          id,
		name:        strings.TrimSpace(name),
		slug:        strings.TrimSpace(strings.ToLower(slug)),
		description: strings.TrimSpace(description),
		parentID:    cloneParentID(parentID),
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		createdBy:   createdBy,
		updatedBy:   updatedBy,
	}
	if err := c.validate(); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (c Category) validate() error {
	if c.name == "" {
		return NewValidationError("name", "category name cannot be empty")
	}
	if len(c.name) > maxCategoryNameLength {
		return NewValidationError("name",
			fmt.Sprintf("category name cannot exceed %d characters", maxCategoryNameLength))
	}
	if c.slug == "" {
		return NewValidationError("slug", "category slug cannot be empty")
	}
	if len(c.slug) > MaxSlugLength {
		return NewValidationError("slug",
			fmt.Sprintf("category slug cannot exceed %d characters", MaxSlugLength))
	}
	if len(c.description) > maxCategoryDescriptionLength {
		return NewValidationError("description",
			fmt.Sprintf("category description cannot exceed %d characters", maxCategoryDescriptionLength))
	}
	if c.parentID != nil && *c.parentID == c.id {
		return NewInvariantError(RuleSelfParent, "category cannot be its own parent")
	}
	return nil
}

// UpdateName renames the category and re-derives its slug so the slug
// stays a pure function of the name.
func (c Category) UpdateName(name string, actor uuid.UUID, now time.Time) (Category, error) {
	c.name = strings.TrimSpace(name)
	c.slug = Slugify(name)
	c.updatedAt = now
	c.updatedBy = actor
	if err := c.validate(); err != nil {
		return Category{}, err
	}
	return c, nil
}

// UpdateDescription replaces the description.
func (c Category) UpdateDescription(description string, actor uuid.UUID, now time.Time) (Category, error) {
	c.description = strings.TrimSpace(description)
	c.updatedAt = now
	c.updatedBy = actor
	if err := c.validate(); err != nil {
		return Category{}, err
	}
	return c, nil
}

// ChangeParent re-parents the category. Only the direct self-parent
// invariant is checked here; the service layer runs the transitive
// ancestor-chain check against the loaded flat list before calling this.
func (c Category) ChangeParent(parentID *uuid.UUID, actor uuid.UUID, now time.Time) (Category, error) {
	c.parentID = cloneParentID(parentID)
	c.updatedAt = now
	c.updatedBy = actor
	if err := c.validate(); err != nil {
		return Category{}, err
	}
	return c, nil
}

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool { return c.parentID == nil }

// HasParent reports whether the category has a parent.
func (c Category) HasParent() bool { return c.parentID != nil }

func (c Category) ID() uuid.UUID        { return c.id }
func (c Category) Name() string         { return c.name }
func (c Category) Slug() string         { return c.slug }
func (c Category) Description() string  { return c.description }
func (c Category) CreatedAt() time.Time { return c.createdAt }
func (c Category) UpdatedAt() time.Time { return c.updatedAt }
func (c Category) CreatedBy() uuid.UUID { return c.createdBy }
func (c Category) UpdatedBy() uuid.UUID { return c.updatedBy }

// ParentID returns a copy of the parent id, nil for roots.
func (c Category) ParentID() *uuid.UUID {
	return cloneParentID(c.parentID)
}

// cloneParentID copies the pointed-to id so neither the caller nor the
// category can mutate the other's state through a shared pointer.
func cloneParentID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	copied := *id
	return &copied
}

// CategoryNode is a category with its resolved children.
type CategoryNode struct {
	Category Category
	Children []*CategoryNode
}

// BuildCategoryTree assembles the hierarchy from the externally-loaded
// flat list: categories with no parent become roots, every other
// category attaches under the node whose id matches its parent id.
// Categories whose parent is missing from the list are dropped. The
// input is assumed acyclic; creation and re-parenting enforce that.
func BuildCategoryTree(categories []Category) []*CategoryNode {
	children := make(map[uuid.UUID][]Category, len(categories))
	var roots []Category
	for _, c := range categories {
		if c.IsRoot() {
			roots = append(roots, c)
			continue
		}
		parent := *c.parentID
		children[parent] = append(children[parent], c)
	}

	var attach func(c Category) *CategoryNode
	attach = func(c Category) *CategoryNode {
		node := &CategoryNode{Category: c}
		for _, child := range children[c.id] {
			node.Children = append(node.Children, attach(child))
		}
		return node
	}

	nodes := make([]*CategoryNode, 0, len(roots))
	for _, root := range roots {
		nodes = append(nodes, attach(root))
	}
	return nodes
}

// DetectParentCycle walks the ancestor chain of newParentID through the
// flat list and reports whether it passes through categoryID. Moving a
// category under one of its own descendants would otherwise detach a
// subtree into an unreachable cycle.
func DetectParentCycle(categoryID uuid.UUID, newParentID uuid.UUID, categories []Category) bool {
	byID := make(map[uuid.UUID]Category, len(categories))
	for _, c := range categories {
		byID[c.id] = c
	}

	seen := make(map[uuid.UUID]bool)
	current := newParentID
	for current != uuid.Nil {
		if current == categoryID {
			return true
		}
		if seen[current] {
			// pre-existing cycle in stored data; refuse the move
			return true
		}
		seen[current] = true
		ancestor, ok := byID[current]
		if !ok || ancestor.parentID == nil {
			return false
		}
		current = *ancestor.parentID
	}
	return false
}
