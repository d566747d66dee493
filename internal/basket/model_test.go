package basket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeTotals(t *testing.T) {
	b := Basket{
		Tax:      2.10,
		Shipping: 8.00,
		Items: []BasketItem{
			{ProductID: 1, Price: 9.99, Quantity: 2},
			{ProductID: 2, Price: 4.50, Quantity: 3},
		},
	}
	b.RecomputeTotals()

	assert.Equal(t, 5, b.Quantity)
	assert.Equal(t, 33.48, b.Subtotal)
	assert.Equal(t, 43.58, b.Total)
}

func TestRecomputeTotalsEmpty(t *testing.T) {
	b := Basket{Tax: 1.50, Shipping: 8.00}
	b.RecomputeTotals()

	assert.Equal(t, 0, b.Quantity)
	assert.Equal(t, 0.0, b.Subtotal)
	assert.Equal(t, 9.50, b.Total)
}

func TestFindItem(t *testing.T) {
	b := Basket{Items: []BasketItem{
		{ProductID: 7, Quantity: 1},
		{ProductID: 9, Quantity: 2},
	}}

	item := b.FindItem(9)
	assert.NotNil(t, item)
	assert.Equal(t, 2, item.Quantity)
	assert.Nil(t, b.FindItem(42))
}

func TestItemHelpers(t *testing.T) {
	item := BasketItem{Price: 3.33, Quantity: 3}
	assert.Equal(t, 9.99, item.LineTotal())

	b := Basket{Items: []BasketItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 5},
	}}
	assert.Equal(t, 2, b.ItemCount())
	assert.Equal(t, 7, b.TotalQuantity())
	assert.False(t, b.IsEmpty())
	assert.True(t, (&Basket{}).IsEmpty())
}

func TestAgeInDays(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	b := Basket{CreatedAt: now.AddDate(0, 0, -31)}
	assert.Equal(t, 31, b.AgeInDays(now))
}
