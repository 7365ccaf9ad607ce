package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"greenmarket/internal/domain"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
)

// In-memory repositories backed by maps. They mirror the behavior the
// services rely on: sentinel not-found errors and unique-violation
// errors on duplicate keys.

type mockCategoryRepo struct {
	mu         sync.Mutex
	categories map[uuid.UUID]domain.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[uuid.UUID]domain.Category)}
}

func (m *mockCategoryRepo) Create(_ context.Context, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Slug() == category.Slug() {
			return fmt.Errorf("%w: category slug %q", repository.ErrUniqueViolation, category.Slug())
		}
	}
	m.categories[category.ID()] = category
	return nil
}

func (m *mockCategoryRepo) Update(_ context.Context, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[category.ID()]; !ok {
		return repository.ErrCategoryNotFound
	}
	for id, c := range m.categories {
		if id != category.ID() && c.Slug() == category.Slug() {
			return fmt.Errorf("%w: category slug %q", repository.ErrUniqueViolation, category.Slug())
		}
	}
	m.categories[category.ID()] = category
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return domain.Category{}, repository.ErrCategoryNotFound
	}
	return c, nil
}

func (m *mockCategoryRepo) FindBySlug(_ context.Context, slug string) (domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Slug() == slug {
			return c, nil
		}
	}
	return domain.Category{}, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepo) FindByParentID(_ context.Context, parentID uuid.UUID) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Category
	for _, c := range m.categories {
		if p := c.ParentID(); p != nil && *p == parentID {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out, nil
}

func (m *mockCategoryRepo) FindRoots(_ context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Category
	for _, c := range m.categories {
		if c.IsRoot() {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out, nil
}

func (m *mockCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sortCategories(out)
	return out, nil
}

func (m *mockCategoryRepo) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Slug() == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCategoryRepo) CountChildren(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.categories {
		if p := c.ParentID(); p != nil && *p == id {
			count++
		}
	}
	return count, nil
}

func sortCategories(categories []domain.Category) {
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name() < categories[j].Name()
	})
}

type mockProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[uuid.UUID]domain.Product)}
}

func (m *mockProductRepo) Create(_ context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Name() == product.Name() {
			return fmt.Errorf("%w: product name %q", repository.ErrUniqueViolation, product.Name())
		}
	}
	m.products[product.ID()] = product
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID()]; !ok {
		return repository.ErrProductNotFound
	}
	for id, p := range m.products {
		if id != product.ID() && p.Name() == product.Name() {
			return fmt.Errorf("%w: product name %q", repository.ErrUniqueViolation, product.Name())
		}
	}
	m.products[product.ID()] = product
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) FindByID(_ context.Context, id uuid.UUID) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepo) List(_ context.Context, categoryID *uuid.UUID, page, pageSize int,
	_ string, _ repository.SortOrder) ([]domain.Product, int, error) {

	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Product
	for _, p := range m.products {
		if categoryID != nil && p.CategoryID() != *categoryID {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	return paginate(all, page, pageSize), len(all), nil
}

func (m *mockProductRepo) Search(_ context.Context, query string, page, pageSize int) ([]domain.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	query = strings.ToLower(query)
	var all []domain.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name()), query) ||
			strings.Contains(strings.ToLower(p.Description()), query) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	return paginate(all, page, pageSize), len(all), nil
}

func (m *mockProductRepo) CountByCategory(_ context.Context, categoryID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, p := range m.products {
		if p.CategoryID() == categoryID {
			count++
		}
	}
	return count, nil
}

func (m *mockProductRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Name() == name {
			return true, nil
		}
	}
	return false, nil
}

func paginate(products []domain.Product, page, pageSize int) []domain.Product {
	start := (page - 1) * pageSize
	if start >= len(products) {
		return nil
	}
	end := start + pageSize
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}
