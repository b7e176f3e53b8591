package catalog

import (
	"errors"
	"fmt"
)

type ValidationKind string

const (
	EmptyName           ValidationKind = "empty_name"
	NameTooLong         ValidationKind = "name_too_long"
	DescriptionTooLong  ValidationKind = "description_too_long"
	NegativePrice       ValidationKind = "negative_price"
	PriceOutOfRange     ValidationKind = "price_out_of_range"
	NegativeStock       ValidationKind = "negative_stock"
	StockExceedsMaximum ValidationKind = "stock_exceeds_maximum"
)

// ValidationError rejects a payload before any shared state is touched.
type ValidationError struct {
	Kind  ValidationKind
	Field string
	Value any
	Limit int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case NameTooLong, DescriptionTooLong, StockExceedsMaximum, PriceOutOfRange:
		return fmt.Sprintf("invalid %s: %s (limit=%d)", e.Field, e.Kind, e.Limit)
	case "":
		return "validation failed"
	default:
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Kind)
	}
}

// Is matches another *ValidationError of the same kind; a target without a
// kind matches every validation error.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && (t.Kind == "" || t.Kind == e.Kind)
}

type CatalogErrorKind string

const (
	NotFound     CatalogErrorKind = "not_found"
	InvalidStock CatalogErrorKind = "invalid_stock"
)

// CatalogError is an operational failure against an existing catalog.
type CatalogError struct {
	Kind  CatalogErrorKind
	ID    uint64
	Stock int
	Cause error
}

func (e *CatalogError) Error() string {
	switch e.Kind {
	case NotFound:
		return fmt.Sprintf("product not found: id=%d", e.ID)
	case InvalidStock:
		if e.Cause != nil {
			return fmt.Sprintf("invalid stock %d for id=%d: %v", e.Stock, e.ID, e.Cause)
		}
		return fmt.Sprintf("invalid stock %d for id=%d", e.Stock, e.ID)
	default:
		return "catalog error"
	}
}

func (e *CatalogError) Is(target error) bool {
	t, ok := target.(*CatalogError)
	return ok && (t.Kind == "" || t.Kind == e.Kind)
}

func (e *CatalogError) Unwrap() error { return e.Cause }

var (
	ErrValidation          = &ValidationError{}
	ErrEmptyName           = &ValidationError{Kind: EmptyName, Field: "name"}
	ErrNameTooLong         = &ValidationError{Kind: NameTooLong, Field: "name"}
	ErrDescriptionTooLong  = &ValidationError{Kind: DescriptionTooLong, Field: "description"}
	ErrNegativePrice       = &ValidationError{Kind: NegativePrice, Field: "price"}
	ErrPriceOutOfRange     = &ValidationError{Kind: PriceOutOfRange, Field: "price"}
	ErrNegativeStock       = &ValidationError{Kind: NegativeStock, Field: "stock"}
	ErrStockExceedsMaximum = &ValidationError{Kind: StockExceedsMaximum, Field: "stock"}

	ErrNotFound     = &CatalogError{Kind: NotFound}
	ErrInvalidStock = &CatalogError{Kind: InvalidStock}
)

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsInvalidStock(err error) bool { return errors.Is(err, ErrInvalidStock) }

func notFound(id uint64) error {
	return &CatalogError{Kind: NotFound, ID: id}
}

func invalidStock(id uint64, stock int, cause error) error {
	return &CatalogError{Kind: InvalidStock, ID: id, Stock: stock, Cause: cause}
}
