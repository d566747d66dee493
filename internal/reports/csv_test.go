package reports

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProductSalesCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteProductSalesCSV(&buf, []ProductSales{
		{ProductID: 1, Name: "Amber Ale", UnitsSold: 12, Revenue: 107.88},
		{ProductID: 2, Name: "Porter, Dark", UnitsSold: 4, Revenue: 39.8},
	})
	require.NoError(t, err)

	want := "Product ID,Name,Units Sold,Revenue\n" +
		"1,Amber Ale,12,107.88\n" +
		"2,\"Porter, Dark\",4,39.80\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteRevenueCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRevenueCSV(&buf, []RevenuePoint{
		{Period: "2026-04", Orders: 8, Revenue: 412.5},
	})
	require.NoError(t, err)

	assert.Equal(t, "Period,Orders,Revenue\n2026-04,8,412.50\n", buf.String())
}

func TestWriteStockCSVHandlesMissingCategory(t *testing.T) {
	var buf bytes.Buffer
	category := "ales"
	err := WriteStockCSV(&buf, []StockRow{
		{ProductID: 1, Name: "Amber Ale", Category: &category, Price: 8.99, Stock: 20, UnitsSold: 12, StockValue: 179.8},
		{ProductID: 2, Name: "Sampler", Price: 19.99, Stock: 3, UnitsSold: 0, StockValue: 59.97},
	})
	require.NoError(t, err)

	want := "Product ID,Name,Category,Price,Stock,Units Sold,Stock Value\n" +
		"1,Amber Ale,ales,8.99,20,12,179.80\n" +
		"2,Sampler,,19.99,3,0,59.97\n"
	assert.Equal(t, want, buf.String())
}
