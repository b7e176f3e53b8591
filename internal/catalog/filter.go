package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// matcher is a Filter prepared for repeated evaluation.
type matcher struct {
	needle    string
	hasNeedle bool
	min, max  *decimal.Decimal
	inStock   bool
}

func (f Filter) matcher() matcher {
	m := matcher{min: f.MinPrice, max: f.MaxPrice, inStock: f.InStockOnly}
	if f.NameContains != nil {
		m.needle = strings.ToLower(*f.NameContains)
		m.hasNeedle = true
	}
	return m
}

// Match reports whether p satisfies every set criterion of f.
func (f Filter) Match(p Product) bool {
	return f.matcher().match(p)
}

func (m matcher) match(p Product) bool {
	if m.hasNeedle && !strings.Contains(strings.ToLower(p.Name), m.needle) {
		return false
	}
	if m.min != nil && p.Price.Cmp(*m.min) < 0 {
		return false
	}
	if m.max != nil && p.Price.Cmp(*m.max) > 0 {
		return false
	}
	if m.inStock && p.Stock <= 0 {
		return false
	}
	return true
}

func filterProducts(in []Product, f Filter) []Product {
	if f.IsEmpty() {
		return cloneProducts(in)
	}
	m := f.matcher()
	out := make([]Product, 0, len(in))
	for _, p := range in {
		if m.match(p) {
			out = append(out, p)
		}
	}
	return out
}

func cloneProducts(in []Product) []Product {
	out := make([]Product, len(in))
	copy(out, in)
	return out
}
