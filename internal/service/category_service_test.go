package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"greenmarket/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedClock() Clock {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func newCategoryFixture(t *testing.T) (CategoryService, *mockCategoryRepo, *mockProductRepo) {
	t.Helper()
	categoryRepo := newMockCategoryRepo()
	productRepo := newMockProductRepo()
	svc := NewCategoryService(categoryRepo, productRepo, fixedClock(), zap.NewNop())
	return svc, categoryRepo, productRepo
}

func TestCategoryServiceCreate(t *testing.T) {
	svc, _, _ := newCategoryFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	created, err := svc.Create(ctx, "Organic Foods", "Pesticide free", nil, actor)
	require.NoError(t, err)
	assert.Equal(t, "organic-foods", created.Slug())

	child, err := svc.Create(ctx, "Fresh Produce", "", ptr(created.ID()), actor)
	require.NoError(t, err)
	assert.Equal(t, created.ID(), *child.ParentID())
}

func TestCategoryServiceCreateDuplicateSlug(t *testing.T) {
	svc, _, _ := newCategoryFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	_, err := svc.Create(ctx, "Organic Foods", "", nil, actor)
	require.NoError(t, err)

	// a different display name can still collide on the slug
	_, err = svc.Create(ctx, "organic   FOODS", "", nil, actor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateSlug))
}

func TestCategoryServiceCreateMissingParent(t *testing.T) {
	svc, _, _ := newCategoryFixture(t)

	_, err := svc.Create(context.Background(), "Orphan", "", ptr(uuid.New()), uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestCategoryServiceRename(t *testing.T) {
	svc, _, _ := newCategoryFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	c, err := svc.Create(ctx, "Organic Foods", "", nil, actor)
	require.NoError(t, err)
	other, err := svc.Create(ctx, "Zero Waste", "", nil, actor)
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, c.ID(), "Whole Foods", actor)
	require.NoError(t, err)
	assert.Equal(t, "whole-foods", renamed.Slug())

	// renaming onto another category's slug is refused
	_, err = svc.Rename(ctx, c.ID(), "Zero  Waste", actor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateSlug))

	// renaming to the same name keeps the slug without a conflict
	kept, err := svc.Rename(ctx, other.ID(), "Zero Waste", actor)
	require.NoError(t, err)
	assert.Equal(t, "zero-waste", kept.Slug())
}

func TestCategoryServiceChangeParentRejectsCycle(t *testing.T) {
	svc, _, _ := newCategoryFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	root, err := svc.Create(ctx, "Root", "", nil, actor)
	require.NoError(t, err)
	mid, err := svc.Create(ctx, "Mid", "", ptr(root.ID()), actor)
	require.NoError(t, err)
	leaf, err := svc.Create(ctx, "Leaf", "", ptr(mid.ID()), actor)
	require.NoError(t, err)

	_, err = svc.ChangeParent(ctx, root.ID(), ptr(leaf.ID()), actor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParentCycle))

	// a legal move still works
	moved, err := svc.ChangeParent(ctx, leaf.ID(), ptr(root.ID()), actor)
	require.NoError(t, err)
	assert.Equal(t, root.ID(), *moved.ParentID())

	// detaching to a root is always legal
	detached, err := svc.ChangeParent(ctx, mid.ID(), nil, actor)
	require.NoError(t, err)
	assert.True(t, detached.IsRoot())
}

func TestCategoryServiceDeletePreconditions(t *testing.T) {
	svc, _, productRepo := newCategoryFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	parent, err := svc.Create(ctx, "Parent", "", nil, actor)
	require.NoError(t, err)
	child, err := svc.Create(ctx, "Child", "", ptr(parent.ID()), actor)
	require.NoError(t, err)

	// a category with children cannot go
	err = svc.Delete(ctx, parent.ID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCategoryHasChildren))

	// a category with products cannot go
	price, _ := domain.MoneyFromFloat(9.90, "PEN")
	stock, _ := domain.NewStockQuantity(3)
	product, err := domain.NewProduct("Bamboo Cup", "", price, child.ID(), stock, actor, actor, time.Now())
	require.NoError(t, err)
	require.NoError(t, productRepo.Create(ctx, product))

	err = svc.Delete(ctx, child.ID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCategoryNotEmpty))

	// empty the category, then deletion succeeds bottom-up
	require.NoError(t, productRepo.Delete(ctx, product.ID()))
	require.NoError(t, svc.Delete(ctx, child.ID()))
	require.NoError(t, svc.Delete(ctx, parent.ID()))

	err = svc.Delete(ctx, parent.ID())
	assert.True(t, domain.IsNotFound(err))
}

func TestCategoryServiceTree(t *testing.T) {
	svc, _, _ := newCategoryFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	root, err := svc.Create(ctx, "Home", "", nil, actor)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Kitchen", "", ptr(root.ID()), actor)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Garden", "", ptr(root.ID()), actor)
	require.NoError(t, err)

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Home", tree[0].Category.Name())
	assert.Len(t, tree[0].Children, 2)

	roots, err := svc.ListRoots(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)

	children, err := svc.ListChildren(ctx, root.ID())
	require.NoError(t, err)
	assert.Len(t, children, 2)

	_, err = svc.ListChildren(ctx, uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestCategoryServiceGetBySlug(t *testing.T) {
	svc, _, _ := newCategoryFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Organic Foods", "", nil, uuid.New())
	require.NoError(t, err)

	found, err := svc.GetBySlug(ctx, "organic-foods")
	require.NoError(t, err)
	assert.Equal(t, created.ID(), found.ID())

	_, err = svc.GetBySlug(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
}

func ptr[T any](v T) *T { return &v }
