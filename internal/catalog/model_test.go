package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func saleProduct(price, salePrice float64, start, end time.Time) Product {
	return Product{
		Name:      "Winter Ale",
		Price:     price,
		SalePrice: &salePrice,
		SaleStart: &start,
		SaleEnd:   &end,
	}
}

func TestProductOnSale(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("inside window", func(t *testing.T) {
		p := saleProduct(10, 8, now.Add(-24*time.Hour), now.Add(24*time.Hour))
		assert.True(t, p.OnSale(now))
		assert.Equal(t, 8.0, p.CurrentPrice(now))
	})

	t.Run("before window", func(t *testing.T) {
		p := saleProduct(10, 8, now.Add(time.Hour), now.Add(48*time.Hour))
		assert.False(t, p.OnSale(now))
		assert.Equal(t, 10.0, p.CurrentPrice(now))
	})

	t.Run("after window", func(t *testing.T) {
		p := saleProduct(10, 8, now.Add(-48*time.Hour), now.Add(-time.Hour))
		assert.False(t, p.OnSale(now))
		assert.Equal(t, 10.0, p.CurrentPrice(now))
	})

	t.Run("window bounds are exclusive", func(t *testing.T) {
		p := saleProduct(10, 8, now, now.Add(24*time.Hour))
		assert.False(t, p.OnSale(now))
	})

	t.Run("no sale price", func(t *testing.T) {
		p := Product{Name: "Stout", Price: 12}
		assert.False(t, p.OnSale(now))
		assert.Equal(t, 12.0, p.CurrentPrice(now))
	})

	t.Run("sale price without window", func(t *testing.T) {
		sale := 8.0
		p := Product{Name: "Stout", Price: 12, SalePrice: &sale}
		assert.False(t, p.OnSale(now))
	})
}

func TestProductStockHelpers(t *testing.T) {
	assert.True(t, Product{Stock: 1}.InStock())
	assert.False(t, Product{Stock: 0}.InStock())

	assert.True(t, Product{Stock: 3}.IsLowStock(5))
	assert.True(t, Product{Stock: 5}.IsLowStock(5))
	assert.False(t, Product{Stock: 6}.IsLowStock(5))
	assert.False(t, Product{Stock: 0}.IsLowStock(5), "out of stock is not low stock")
}
