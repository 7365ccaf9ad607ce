package domain

import "fmt"

// MaxStockQuantity is the upper bound for any product's stock level.
const MaxStockQuantity = 1_000_000

// StockQuantity is an immutable stock level, 0..MaxStockQuantity.
// Arithmetic is checked: it fails instead of wrapping or clamping.
type StockQuantity struct {
	value int
}

// NewStockQuantity validates and builds a stock quantity.
func NewStockQuantity(value int) (StockQuantity, error) {
	if value < 0 {
		return StockQuantity{}, NewValidationError("stock", "stock quantity cannot be negative")
	}
	if value > MaxStockQuantity {
		return StockQuantity{}, NewValidationError("stock",
			fmt.Sprintf("stock quantity cannot exceed %d", MaxStockQuantity))
	}
	return StockQuantity{value: value}, nil
}

// ZeroStock returns an empty stock level.
func ZeroStock() StockQuantity { return StockQuantity{} }

// Value returns the quantity as an int.
func (q StockQuantity) Value() int { return q.value }

// IsZero reports whether the stock is empty.
func (q StockQuantity) IsZero() bool { return q.value == 0 }

// IsPositive reports whether any stock is available.
func (q StockQuantity) IsPositive() bool { return q.value > 0 }

// Add returns q + delta, failing if the result exceeds MaxStockQuantity.
func (q StockQuantity) Add(delta int) (StockQuantity, error) {
	if delta <= 0 {
		return StockQuantity{}, NewValidationError("quantity", "quantity must be positive")
	}
	return NewStockQuantity(q.value + delta)
}

// Sub returns q - delta. It fails with an insufficient-stock violation
// when delta exceeds the current value; it never clamps at zero.
func (q StockQuantity) Sub(delta int) (StockQuantity, error) {
	if delta <= 0 {
		return StockQuantity{}, NewValidationError("quantity", "quantity must be positive")
	}
	if delta > q.value {
		return StockQuantity{}, NewInvariantError(RuleInsufficientStock,
			fmt.Sprintf("cannot remove %d units from stock of %d", delta, q.value))
	}
	return NewStockQuantity(q.value - delta)
}

func (q StockQuantity) String() string { return fmt.Sprintf("%d", q.value) }
