package catalog

import (
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// MaxPriceScale bounds the decimal exponent of any price or price filter
	// in both directions.
	MaxPriceScale = 18
	// MaxPriceDigits bounds the number of digits in a price coefficient.
	MaxPriceDigits = 38
)

var priceCoefficientCeil = new(big.Int).Exp(big.NewInt(10), big.NewInt(MaxPriceDigits), nil)

// ValidateNewProduct checks np against b. It has no side effects.
func ValidateNewProduct(np NewProduct, b Bounds) error {
	if strings.TrimSpace(np.Name) == "" {
		return &ValidationError{Kind: EmptyName, Field: "name", Value: np.Name}
	}
	if n := utf8.RuneCountInString(np.Name); n > b.MaxNameLen {
		return &ValidationError{Kind: NameTooLong, Field: "name", Value: n, Limit: b.MaxNameLen}
	}
	if n := utf8.RuneCountInString(np.Description); n > b.MaxDescriptionLen {
		return &ValidationError{Kind: DescriptionTooLong, Field: "description", Value: n, Limit: b.MaxDescriptionLen}
	}
	if np.Price.IsNegative() {
		return &ValidationError{Kind: NegativePrice, Field: "price", Value: np.Price.String()}
	}
	if err := validatePrice("price", np.Price); err != nil {
		return err
	}
	return ValidateStock(np.Stock, b)
}

func ValidateStock(stock int, b Bounds) error {
	if stock < 0 {
		return &ValidationError{Kind: NegativeStock, Field: "stock", Value: stock}
	}
	if stock > b.MaxStock {
		return &ValidationError{Kind: StockExceedsMaximum, Field: "stock", Value: stock, Limit: b.MaxStock}
	}
	return nil
}

// ValidateFilter rejects price bounds that cannot be compared in bounded time.
func ValidateFilter(f Filter) error {
	if f.MinPrice != nil {
		if err := validatePrice("min_price", *f.MinPrice); err != nil {
			return err
		}
	}
	if f.MaxPrice != nil {
		if err := validatePrice("max_price", *f.MaxPrice); err != nil {
			return err
		}
	}
	return nil
}

// validatePrice keeps d within MaxPriceScale and MaxPriceDigits. Comparing
// two decimals rescales to the smaller exponent, so an unbounded exponent
// turns a single Cmp into a power of ten with millions of digits.
func validatePrice(field string, d decimal.Decimal) error {
	if !priceInRange(d) {
		return &ValidationError{Kind: PriceOutOfRange, Field: field, Value: d.Exponent(), Limit: MaxPriceScale}
	}
	return nil
}

func priceInRange(d decimal.Decimal) bool {
	if e := d.Exponent(); e > MaxPriceScale || e < -MaxPriceScale {
		return false
	}
	return new(big.Int).Abs(d.Coefficient()).Cmp(priceCoefficientCeil) < 0
}
