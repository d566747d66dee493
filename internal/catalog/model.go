// Package catalog manages the product inventory: pricing, stock levels and
// time-boxed sale windows.
package catalog

import "time"

// Product is a sellable item. Type is a single-letter merchandise code.
type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Price       float64    `json:"price"`
	Stock       int        `json:"stock"`
	Active      bool       `json:"active"`
	SalePrice   *float64   `json:"sale_price,omitempty"`
	SaleStart   *time.Time `json:"sale_start,omitempty"`
	SaleEnd     *time.Time `json:"sale_end,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Type        *string    `json:"type,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OnSale reports whether the sale window is open at the given instant. A sale
// requires a sale price and both window bounds; the window is exclusive on
// both ends.
func (p Product) OnSale(now time.Time) bool {
	if p.SalePrice == nil || p.SaleStart == nil || p.SaleEnd == nil {
		return false
	}
	return now.After(*p.SaleStart) && now.Before(*p.SaleEnd)
}

// CurrentPrice returns the sale price while the sale window is open, the
// regular price otherwise.
func (p Product) CurrentPrice(now time.Time) float64 {
	if p.OnSale(now) {
		return *p.SalePrice
	}
	return p.Price
}

// InStock reports whether any units remain.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// IsLowStock reports whether stock fell to or below the threshold while some
// units remain.
func (p Product) IsLowStock(threshold int) bool {
	return p.Stock > 0 && p.Stock <= threshold
}
