package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies a domain failure. The web layer maps kinds to status
// codes; the domain never formats user-facing responses itself.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInvariant  Kind = "invariant_violation"
)

// Invariant rule identifiers. Stable, machine-readable.
const (
	RuleCurrencyMismatch  = "currency_mismatch"
	RuleNegativeResult    = "negative_result"
	RuleInsufficientStock = "insufficient_stock"
	RuleStockExceedsLimit = "stock_exceeds_limit"
	RuleSelfParent        = "self_parent"
	RuleParentCycle       = "parent_cycle"
)

// Conflict reason identifiers.
const (
	ReasonDuplicateSlug       = "duplicate_slug"
	ReasonDuplicateEmail      = "duplicate_email"
	ReasonDuplicateWishlist   = "duplicate_wishlist_name"
	ReasonDuplicateItem       = "duplicate_wishlist_item"
	ReasonCategoryNotEmpty    = "category_not_empty"
	ReasonCategoryHasChildren = "category_has_children"
)

// Error is the single error type surfaced by domain operations. An
// operation either fully succeeds or reports exactly one Error.
type Error struct {
	Kind    Kind
	Field   string // set for validation errors
	Entity  string // set for not-found errors
	Rule    string // set for invariant violations and conflicts
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	case e.Rule != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Rule, e.Message)
	case e.Entity != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Entity, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Is matches on kind and, when the target specifies one, the rule. This
// lets callers use errors.Is against the sentinel values below without
// caring about the descriptive message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	if t.Rule != "" && e.Rule != t.Rule {
		return false
	}
	return true
}

// NewValidationError reports malformed input caught at construction.
func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NewNotFoundError reports a missing referenced entity.
func NewNotFoundError(entity string, id uuid.UUID) *Error {
	return &Error{
		Kind:    KindNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewConflictError reports a uniqueness or referential conflict.
func NewConflictError(reason, message string) *Error {
	return &Error{Kind: KindConflict, Rule: reason, Message: message}
}

// NewInvariantError reports a business-rule breach after construction.
func NewInvariantError(rule, message string) *Error {
	return &Error{Kind: KindInvariant, Rule: rule, Message: message}
}

// Sentinels for errors.Is checks.
var (
	ErrCurrencyMismatch  = &Error{Kind: KindInvariant, Rule: RuleCurrencyMismatch}
	ErrNegativeResult    = &Error{Kind: KindInvariant, Rule: RuleNegativeResult}
	ErrInsufficientStock = &Error{Kind: KindInvariant, Rule: RuleInsufficientStock}
	ErrSelfParent        = &Error{Kind: KindInvariant, Rule: RuleSelfParent}
	ErrParentCycle       = &Error{Kind: KindInvariant, Rule: RuleParentCycle}

	ErrCategoryNotEmpty    = &Error{Kind: KindConflict, Rule: ReasonCategoryNotEmpty}
	ErrCategoryHasChildren = &Error{Kind: KindConflict, Rule: ReasonCategoryHasChildren}
	ErrDuplicateSlug       = &Error{Kind: KindConflict, Rule: ReasonDuplicateSlug}
)

// IsValidation reports whether err is a domain validation error.
func IsValidation(err error) bool { return hasKind(err, KindValidation) }

// IsNotFound reports whether err is a domain not-found error.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsConflict reports whether err is a domain conflict error.
func IsConflict(err error) bool { return hasKind(err, KindConflict) }

// IsInvariantViolation reports whether err is a business-rule violation.
func IsInvariantViolation(err error) bool { return hasKind(err, KindInvariant) }

func hasKind(err error, kind Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}
