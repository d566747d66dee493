// Package basket implements the shopping basket and its order lifecycle.
package basket

import (
	"time"

	"github.com/bbbrewery/backend/internal/shared"
)

// Basket is a shopper's cart. Once it leaves StatusActive it doubles as the
// order record.
type Basket struct {
	ID        int64            `json:"id"`
	ShopperID int64            `json:"shopper_id"`
	Status    Status           `json:"status"`
	Quantity  int              `json:"quantity"`
	Subtotal  float64          `json:"subtotal"`
	Tax       float64          `json:"tax"`
	Shipping  float64          `json:"shipping"`
	Total     float64          `json:"total"`
	ShipTo    *ShippingAddress `json:"ship_to,omitempty"`
	OrderedAt *time.Time       `json:"ordered_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Items     []BasketItem     `json:"items,omitempty"`
}

// BasketItem is a single product line. Price is a snapshot taken when the
// item was added.
type BasketItem struct {
	ID          int64   `json:"id"`
	BasketID    int64   `json:"basket_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Option1     *int    `json:"option1,omitempty"`
	Option2     *int    `json:"option2,omitempty"`
	Size        *string `json:"size,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// ShippingAddress is where the order ships once placed.
type ShippingAddress struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Address1  string  `json:"address1"`
	Address2  *string `json:"address2,omitempty"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip       string  `json:"zip"`
	Country   string  `json:"country"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// LineTotal is the extended price for the line.
func (i BasketItem) LineTotal() float64 {
	return shared.Round2(i.Price * float64(i.Quantity))
}

// IsEmpty reports whether the basket has no items.
func (b *Basket) IsEmpty() bool {
	return len(b.Items) == 0
}

// ItemCount returns the number of distinct lines.
func (b *Basket) ItemCount() int {
	return len(b.Items)
}

// TotalQuantity returns the total number of units across all lines.
func (b *Basket) TotalQuantity() int {
	total := 0
	for _, item := range b.Items {
		total += item.Quantity
	}
	return total
}

// FindItem returns the line for the product, or nil.
func (b *Basket) FindItem(productID int64) *BasketItem {
	for i := range b.Items {
		if b.Items[i].ProductID == productID {
			return &b.Items[i]
		}
	}
	return nil
}

// RecomputeTotals rederives quantity, subtotal and total from the item lines
// and the current tax and shipping charges.
func (b *Basket) RecomputeTotals() {
	b.Quantity = 0
	subtotal := 0.0
	for _, item := range b.Items {
		b.Quantity += item.Quantity
		subtotal += item.Price * float64(item.Quantity)
	}
	b.Subtotal = shared.Round2(subtotal)
	b.Total = shared.Round2(b.Subtotal + b.Tax + b.Shipping)
}

// AgeInDays returns whole days since the basket was created.
func (b *Basket) AgeInDays(now time.Time) int {
	return int(now.Sub(b.CreatedAt).Hours() / 24)
}
