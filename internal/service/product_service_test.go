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

func newProductFixture(t *testing.T) (ProductService, *mockProductRepo, domain.Category) {
	t.Helper()
	categoryRepo := newMockCategoryRepo()
	productRepo := newMockProductRepo()

	category, err := domain.NewCategory("Personal Care", "", nil, uuid.New(), time.Now())
	require.NoError(t, err)
	require.NoError(t, categoryRepo.Create(context.Background(), category))

	svc := NewProductService(productRepo, categoryRepo, fixedClock(), zap.NewNop())
	return svc, productRepo, category
}

func createProductInput(t *testing.T, name string, categoryID uuid.UUID) CreateProductInput {
	t.Helper()
	price, err := domain.MoneyFromFloat(12.50, "PEN")
	require.NoError(t, err)
	stock, err := domain.NewStockQuantity(100)
	require.NoError(t, err)
	return CreateProductInput{
		Name:        name,
		Description: "Biodegradable handle",
		Price:       price,
		CategoryID:  categoryID,
		Stock:       stock,
	}
}

func TestProductServiceCreate(t *testing.T) {
	svc, _, category := newProductFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	created, err := svc.Create(ctx, createProductInput(t, "Bamboo Toothbrush", category.ID()), actor)
	require.NoError(t, err)
	assert.Equal(t, "Bamboo Toothbrush", created.Name())
	assert.Equal(t, actor, created.OwnerID())
	assert.True(t, created.IsActive())

	got, err := svc.Get(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, created.ID(), got.ID())
}

func TestProductServiceCreateMissingCategory(t *testing.T) {
	svc, _, _ := newProductFixture(t)

	_, err := svc.Create(context.Background(),
		createProductInput(t, "Bamboo Toothbrush", uuid.New()), uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestProductServiceCreateDuplicateName(t *testing.T) {
	svc, _, category := newProductFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createProductInput(t, "Bamboo Toothbrush", category.ID()), uuid.New())
	require.NoError(t, err)

	_, err = svc.Create(ctx, createProductInput(t, "Bamboo Toothbrush", category.ID()), uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestProductServiceStockLifecycle(t *testing.T) {
	svc, _, category := newProductFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	created, err := svc.Create(ctx, createProductInput(t, "Solid Shampoo", category.ID()), actor)
	require.NoError(t, err)

	increased, err := svc.IncreaseStock(ctx, created.ID(), 50, actor)
	require.NoError(t, err)
	assert.Equal(t, 150, increased.Stock().Value())

	decreased, err := svc.DecreaseStock(ctx, created.ID(), 150, actor)
	require.NoError(t, err)
	assert.True(t, decreased.IsOutOfStock())

	// nothing left to remove, and the stored state stays at zero
	_, err = svc.DecreaseStock(ctx, created.ID(), 1, actor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	got, err := svc.Get(ctx, created.ID())
	require.NoError(t, err)
	assert.True(t, got.IsOutOfStock())
}

func TestProductServiceUpdatePrice(t *testing.T) {
	svc, _, category := newProductFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	created, err := svc.Create(ctx, createProductInput(t, "Reusable Bottle", category.ID()), actor)
	require.NoError(t, err)

	newPrice, _ := domain.MoneyFromFloat(15.90, "PEN")
	updated, err := svc.UpdatePrice(ctx, created.ID(), newPrice, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(1590), updated.Price().Units())

	_, err = svc.UpdatePrice(ctx, uuid.New(), newPrice, actor)
	assert.True(t, domain.IsNotFound(err))
}

func TestProductServiceChangeCategory(t *testing.T) {
	categoryRepo := newMockCategoryRepo()
	productRepo := newMockProductRepo()
	svc := NewProductService(productRepo, categoryRepo, fixedClock(), zap.NewNop())
	ctx := context.Background()
	actor := uuid.New()

	care, err := domain.NewCategory("Personal Care", "", nil, actor, time.Now())
	require.NoError(t, err)
	kitchen, err := domain.NewCategory("Kitchen", "", nil, actor, time.Now())
	require.NoError(t, err)
	require.NoError(t, categoryRepo.Create(ctx, care))
	require.NoError(t, categoryRepo.Create(ctx, kitchen))

	created, err := svc.Create(ctx, createProductInput(t, "Bamboo Toothbrush", care.ID()), actor)
	require.NoError(t, err)

	moved, err := svc.ChangeCategory(ctx, created.ID(), kitchen.ID(), actor)
	require.NoError(t, err)
	assert.Equal(t, kitchen.ID(), moved.CategoryID())

	_, err = svc.ChangeCategory(ctx, created.ID(), uuid.New(), actor)
	assert.True(t, domain.IsNotFound(err))
}

func TestProductServiceListPagination(t *testing.T) {
	svc, _, category := newProductFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	names := []string{"Bamboo Cup", "Bamboo Plate", "Bamboo Straw"}
	for _, name := range names {
		_, err := svc.Create(ctx, createProductInput(t, name, category.ID()), actor)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, nil, 1, 2, "name", "ASC")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Products, 2)

	// out-of-range paging values are normalized, not rejected
	page, err = svc.List(ctx, nil, 0, -5, "name", "ASC")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.PageSize)

	page, err = svc.List(ctx, nil, 1, 5000, "name", "ASC")
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.PageSize)

	other := uuid.New()
	page, err = svc.List(ctx, &other, 1, 10, "name", "ASC")
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestProductServiceSearch(t *testing.T) {
	svc, _, category := newProductFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	_, err := svc.Create(ctx, createProductInput(t, "Bamboo Toothbrush", category.ID()), actor)
	require.NoError(t, err)
	_, err = svc.Create(ctx, createProductInput(t, "Steel Bottle", category.ID()), actor)
	require.NoError(t, err)

	page, err := svc.Search(ctx, "bamboo", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Bamboo Toothbrush", page.Products[0].Name())
}

func TestProductServiceActivation(t *testing.T) {
	svc, _, category := newProductFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	created, err := svc.Create(ctx, createProductInput(t, "Bamboo Toothbrush", category.ID()), actor)
	require.NoError(t, err)

	off, err := svc.Deactivate(ctx, created.ID(), actor)
	require.NoError(t, err)
	assert.False(t, off.IsActive())

	on, err := svc.Activate(ctx, created.ID(), actor)
	require.NoError(t, err)
	assert.True(t, on.IsActive())
}

func TestProductServiceDelete(t *testing.T) {
	svc, _, category := newProductFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createProductInput(t, "Bamboo Toothbrush", category.ID()), uuid.New())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID()))

	err = svc.Delete(ctx, created.ID())
	assert.True(t, domain.IsNotFound(err))
}
