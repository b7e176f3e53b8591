package catalog

import "github.com/shopspring/decimal"

// Product is a catalog record. ID is assigned by the Service and never changes.
type Product struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// NewProduct is the creation payload accepted by Service.Create.
type NewProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// Filter selects products. A nil or false field imposes no constraint;
// set fields are combined with AND.
type Filter struct {
	NameContains *string          `json:"name_contains,omitempty"`
	MinPrice     *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice     *decimal.Decimal `json:"max_price,omitempty"`
	InStockOnly  bool             `json:"in_stock_only,omitempty"`
}

func (f Filter) IsEmpty() bool {
	return f.NameContains == nil && f.MinPrice == nil && f.MaxPrice == nil && !f.InStockOnly
}

func (np NewProduct) product(id uint64) Product {
	return Product{
		ID:          id,
		Name:        np.Name,
		Description: np.Description,
		Price:       np.Price,
		Stock:       np.Stock,
	}
}
