package reports

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteProductSalesCSV serialises the product sales report to CSV.
func WriteProductSalesCSV(w io.Writer, sales []ProductSales) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Product ID", "Name", "Units Sold", "Revenue"}); err != nil {
		return err
	}
	for _, row := range sales {
		if err := writer.Write([]string{
			strconv.FormatInt(row.ProductID, 10),
			row.Name,
			strconv.Itoa(row.UnitsSold),
			formatFloat(row.Revenue),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteStockCSV serialises the stock report to CSV.
func WriteStockCSV(w io.Writer, report []StockRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Product ID", "Name", "Category", "Price", "Stock", "Units Sold", "Stock Value"}); err != nil {
		return err
	}
	for _, row := range report {
		category := ""
		if row.Category != nil {
			category = *row.Category
		}
		if err := writer.Write([]string{
			strconv.FormatInt(row.ProductID, 10),
			row.Name,
			category,
			formatFloat(row.Price),
			strconv.Itoa(row.Stock),
			strconv.Itoa(row.UnitsSold),
			formatFloat(row.StockValue),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRevenueCSV emits revenue buckets as CSV.
func WriteRevenueCSV(w io.Writer, points []RevenuePoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Period", "Orders", "Revenue"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			point.Period,
			strconv.Itoa(point.Orders),
			formatFloat(point.Revenue),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
