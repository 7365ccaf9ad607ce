package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxProductNameLength        = 255
	maxProductDescriptionLength = 1000
)

// Product is the catalog aggregate. All fields are private: mutation
// happens only through named business operations, each of which returns
// a rebuilt value, re-runs full validation and stamps the audit trail
// from the caller-supplied actor and timestamp.
type Product struct {
	id          uuid.UUID
	name        string
	description string
	price       Money
	categoryID  uuid.UUID
	stock       StockQuantity
	isActive    bool
	ownerID     uuid.UUID
	createdAt   time.Time
	updatedAt   time.Time
	createdBy   uuid.UUID
	updatedBy   uuid.UUID
}

// NewProduct creates an active product owned by ownerID. The clock and
// acting user are threaded in explicitly; the domain never reads system
// time or auth context.
func NewProduct(name, description string, price Money, categoryID uuid.UUID,
	stock StockQuantity, ownerID, actor uuid.UUID, now time.Time) (Product, error) {

	p := Product{
		id:          uuid.New(),
		name:        strings.TrimSpace(name),
		description: strings.TrimSpace(description),
		price:       price,
		categoryID:  categoryID,
		stock:       stock,
		isActive:    true,
		ownerID:     ownerID,
		createdAt:   now,
		updatedAt:   now,
		createdBy:   actor,
		updatedBy:   actor,
	}
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// RehydrateProduct rebuilds a product from persisted state, re-running
// the aggregate invariants.
func RehydrateProduct(id uuid.UUID, name, description string, price Money,
	categoryID uuid.UUID, stock StockQuantity, isActive bool, ownerID uuid.UUID,
	createdAt, updatedAt time.Time, createdBy, updatedBy uuid.UUID) (Product, error) {

	p := Product{
		id:          id,
		name:        strings.TrimSpace(name),
		description: strings.TrimSpace(description),
		price:       price,
		categoryID:  categoryID,
		stock:       stock,
		isActive:    isActive,
		ownerID:     ownerID,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		createdBy:   createdBy,
		updatedBy:   updatedBy,
	}
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// validate runs the full set of aggregate invariants. Every mutator
// calls it so a valid field change cannot combine with stale state into
// an invalid aggregate.
func (p Product) validate() error {
	if p.name == "" {
		return NewValidationError("name", "product name cannot be empty")
	}
	if len(p.name) > maxProductNameLength {
		return NewValidationError("name",
			fmt.Sprintf("product name cannot exceed %d characters", maxProductNameLength))
	}
	if len(p.description) > maxProductDescriptionLength {
		return NewValidationError("description",
			fmt.Sprintf("product description cannot exceed %d characters", maxProductDescriptionLength))
	}
	if p.price.IsZero() {
		return NewValidationError("price", "product price cannot be zero")
	}
	if p.categoryID == uuid.Nil {
		return NewValidationError("category_id", "product category is required")
	}
	if p.ownerID == uuid.Nil {
		return NewValidationError("owner_id", "product owner is required")
	}
	return nil
}

func (p Product) stamped(actor uuid.UUID, now time.Time) Product {
	p.updatedAt = now
	p.updatedBy = actor
	return p
}

// UpdateName renames the product.
func (p Product) UpdateName(name string, actor uuid.UUID, now time.Time) (Product, error) {
	p.name = strings.TrimSpace(name)
	p = p.stamped(actor, now)
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// UpdateDescription replaces the description.
func (p Product) UpdateDescription(description string, actor uuid.UUID, now time.Time) (Product, error) {
	p.description = strings.TrimSpace(description)
	p = p.stamped(actor, now)
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// UpdatePrice sets a new price.
func (p Product) UpdatePrice(price Money, actor uuid.UUID, now time.Time) (Product, error) {
	p.price = price
	p = p.stamped(actor, now)
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// ChangeCategory moves the product to another category.
func (p Product) ChangeCategory(categoryID uuid.UUID, actor uuid.UUID, now time.Time) (Product, error) {
	p.categoryID = categoryID
	p = p.stamped(actor, now)
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// UpdateStock replaces the stock level outright.
func (p Product) UpdateStock(stock StockQuantity, actor uuid.UUID, now time.Time) (Product, error) {
	p.stock = stock
	p = p.stamped(actor, now)
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// IncreaseStock adds delta units.
func (p Product) IncreaseStock(delta int, actor uuid.UUID, now time.Time) (Product, error) {
	stock, err := p.stock.Add(delta)
	if err != nil {
		return Product{}, err
	}
	return p.UpdateStock(stock, actor, now)
}

// DecreaseStock removes delta units. When delta exceeds the current
// stock it fails with an insufficient-stock violation and the receiver
// is left untouched; no partial decrement is possible.
func (p Product) DecreaseStock(delta int, actor uuid.UUID, now time.Time) (Product, error) {
	stock, err := p.stock.Sub(delta)
	if err != nil {
		return Product{}, err
	}
	return p.UpdateStock(stock, actor, now)
}

// Activate puts the product back on sale.
func (p Product) Activate(actor uuid.UUID, now time.Time) (Product, error) {
	p.isActive = true
	p = p.stamped(actor, now)
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Deactivate withdraws the product from sale without deleting it.
func (p Product) Deactivate(actor uuid.UUID, now time.Time) (Product, error) {
	p.isActive = false
	p = p.stamped(actor, now)
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// IsAvailable reports whether the product can currently be bought.
func (p Product) IsAvailable() bool { return p.isActive && p.stock.IsPositive() }

// IsOutOfStock reports whether the stock level is zero.
func (p Product) IsOutOfStock() bool { return p.stock.IsZero() }

// HasSufficientStock reports whether quantity units could be removed.
func (p Product) HasSufficientStock(quantity int) bool { return p.stock.Value() >= quantity }

func (p Product) ID() uuid.UUID         { return p.id }
func (p Product) Name() string          { return p.name }
func (p Product) Description() string   { return p.description }
func (p Product) Price() Money          { return p.price }
func (p Product) CategoryID() uuid.UUID { return p.categoryID }
func (p Product) Stock() StockQuantity  { return p.stock }
func (p Product) IsActive() bool        { return p.isActive }
func (p Product) OwnerID() uuid.UUID    { return p.ownerID }
func (p Product) CreatedAt() time.Time  { return p.createdAt }
func (p Product) UpdatedAt() time.Time  { return p.updatedAt }
func (p Product) CreatedBy() uuid.UUID  { return p.createdBy }
func (p Product) UpdatedBy() uuid.UUID  { return p.updatedBy }
