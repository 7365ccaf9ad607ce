package service

import (
	"context"
	"fmt"

	"greenmarket/internal/domain"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateProductInput carries the fields needed to create a product. The
// price and stock arrive as already-constructed value objects; the
// transport layer parses and validates the raw request first.
type CreateProductInput struct {
	Name        string
	Description string
	Price       domain.Money
	CategoryID  uuid.UUID
	Stock       domain.StockQuantity
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []domain.Product
	Total    int
	Page     int
	PageSize int
}

// ProductService defines the interface for catalog business logic
type ProductService interface {
	Create(ctx context.Context, in CreateProductInput, actor uuid.UUID) (domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
	List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) (ProductPage, error)
	Search(ctx context.Context, query string, page, pageSize int) (ProductPage, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, name, description string, actor uuid.UUID) (domain.Product, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, price domain.Money, actor uuid.UUID) (domain.Product, error)
	ChangeCategory(ctx context.Context, id, categoryID, actor uuid.UUID) (domain.Product, error)
	SetStock(ctx context.Context, id uuid.UUID, stock domain.StockQuantity, actor uuid.UUID) (domain.Product, error)
	IncreaseStock(ctx context.Context, id uuid.UUID, delta int, actor uuid.UUID) (domain.Product, error)
	DecreaseStock(ctx context.Context, id uuid.UUID, delta int, actor uuid.UUID) (domain.Product, error)
	Activate(ctx context.Context, id, actor uuid.UUID) (domain.Product, error)
	Deactivate(ctx context.Context, id, actor uuid.UUID) (domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	clock        Clock
	logger       *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	clock Clock,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		clock:        clock,
		logger:       logger,
	}
}

// Create builds and persists a new product owned by the acting user.
// The referenced category must exist.
func (s *productService) Create(ctx context.Context, in CreateProductInput, actor uuid.UUID) (domain.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		return domain.Product{}, mapNotFound(err, "category", in.CategoryID)
	}

	product, err := domain.NewProduct(in.Name, in.Description, in.Price, in.CategoryID,
		in.Stock, actor, actor, s.clock())
	if err != nil {
		return domain.Product{}, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return domain.Product{}, mapConflict(err, "duplicate_product_name",
			fmt.Sprintf("product %q already exists", product.Name()))
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID().String()),
		zap.String("name", product.Name()),
		zap.String("owner_id", actor.String()),
	)

	return product, nil
}

// Get retrieves a product by ID
func (s *productService) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, mapNotFound(err, "product", id)
	}
	return product, nil
}

// List retrieves a page of products, optionally filtered by category
func (s *productService) List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) (ProductPage, error) {
	page, pageSize = normalizePage(page, pageSize)

	products, total, err := s.productRepo.List(ctx, categoryID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		return ProductPage{}, err
	}

	return ProductPage{Products: products, Total: total, Page: page, PageSize: pageSize}, nil
}

// Search retrieves a page of products matching the query by name or
// description
func (s *productService) Search(ctx context.Context, query string, page, pageSize int) (ProductPage, error) {
	page, pageSize = normalizePage(page, pageSize)

	products, total, err := s.productRepo.Search(ctx, query, page, pageSize)
	if err != nil {
		return ProductPage{}, err
	}

	return ProductPage{Products: products, Total: total, Page: page, PageSize: pageSize}, nil
}

// UpdateDetails renames the product and replaces its description
func (s *productService) UpdateDetails(ctx context.Context, id uuid.UUID, name, description string, actor uuid.UUID) (domain.Product, error) {
	return s.mutate(ctx, id, func(p domain.Product) (domain.Product, error) {
		p, err := p.UpdateName(name, actor, s.clock())
		if err != nil {
			return domain.Product{}, err
		}
		return p.UpdateDescription(description, actor, s.clock())
	})
}

// UpdatePrice sets a new price on the product
func (s *productService) UpdatePrice(ctx context.Context, id uuid.UUID, price domain.Money, actor uuid.UUID) (domain.Product, error) {
	return s.mutate(ctx, id, func(p domain.Product) (domain.Product, error) {
		return p.UpdatePrice(price, actor, s.clock())
	})
}

// ChangeCategory moves the product to another existing category
func (s *productService) ChangeCategory(ctx context.Context, id, categoryID, actor uuid.UUID) (domain.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return domain.Product{}, mapNotFound(err, "category", categoryID)
	}
	return s.mutate(ctx, id, func(p domain.Product) (domain.Product, error) {
		return p.ChangeCategory(categoryID, actor, s.clock())
	})
}

// SetStock replaces the stock level outright
func (s *productService) SetStock(ctx context.Context, id uuid.UUID, stock domain.StockQuantity, actor uuid.UUID) (domain.Product, error) {
	return s.mutate(ctx, id, func(p domain.Product) (domain.Product, error) {
		return p.UpdateStock(stock, actor, s.clock())
	})
}

// IncreaseStock adds delta units to the product's stock
func (s *productService) IncreaseStock(ctx context.Context, id uuid.UUID, delta int, actor uuid.UUID) (domain.Product, error) {
	return s.mutate(ctx, id, func(p domain.Product) (domain.Product, error) {
		return p.IncreaseStock(delta, actor, s.clock())
	})
}

// DecreaseStock removes delta units from the product's stock. The
// decrement is all-or-nothing: on insufficient stock the stored state
// is untouched.
func (s *productService) DecreaseStock(ctx context.Context, id uuid.UUID, delta int, actor uuid.UUID) (domain.Product, error) {
	return s.mutate(ctx, id, func(p domain.Product) (domain.Product, error) {
		return p.DecreaseStock(delta, actor, s.clock())
	})
}

// Activate puts the product back on sale
func (s *productService) Activate(ctx context.Context, id, actor uuid.UUID) (domain.Product, error) {
	return s.mutate(ctx, id, func(p domain.Product) (domain.Product, error) {
		return p.Activate(actor, s.clock())
	})
}

// Deactivate withdraws the product from sale
func (s *productService) Deactivate(ctx context.Context, id, actor uuid.UUID) (domain.Product, error) {
	return s.mutate(ctx, id, func(p domain.Product) (domain.Product, error) {
		return p.Deactivate(actor, s.clock())
	})
}

// Delete removes the product permanently
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err, "product", id)
	}

	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}

// mutate runs the load, apply, persist cycle shared by every product
// mutation. The domain operation either returns a fully valid rebuilt
// aggregate or an error; nothing partial is ever persisted.
func (s *productService) mutate(ctx context.Context, id uuid.UUID,
	apply func(domain.Product) (domain.Product, error)) (domain.Product, error) {

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, mapNotFound(err, "product", id)
	}

	updated, err := apply(product)
	if err != nil {
		return domain.Product{}, err
	}

	if err := s.productRepo.Update(ctx, updated); err != nil {
		err = mapNotFound(err, "product", id)
		return domain.Product{}, mapConflict(err, "duplicate_product_name",
			fmt.Sprintf("product %q already exists", updated.Name()))
	}

	return updated, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
