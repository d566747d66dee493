package reports

import "time"

// StockRow is one product line of the stock report.
type StockRow struct {
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"name"`
	Category   *string `json:"category,omitempty"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	UnitsSold  int     `json:"units_sold"`
	StockValue float64 `json:"stock_value"`
}

// CustomerPurchases summarises one shopper's ordered baskets.
type CustomerPurchases struct {
	ShopperID  int64      `json:"shopper_id"`
	Name       string     `json:"name"`
	Email      *string    `json:"email,omitempty"`
	Orders     int        `json:"orders"`
	TotalSpent float64    `json:"total_spent"`
	LastOrder  *time.Time `json:"last_order,omitempty"`
}

// ProductSales is one product line of the sales report.
type ProductSales struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitsSold int     `json:"units_sold"`
	Revenue   float64 `json:"revenue"`
}

// RevenuePoint is one bucket of the revenue-by-period report. Period is
// formatted per the requested granularity (2006-01-02, 2006-01 or 2006).
type RevenuePoint struct {
	Period  string  `json:"period"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// MonthlySales is one month of the sales-for-a-year report. Months with no
// orders are present with zero values.
type MonthlySales struct {
	Month   int     `json:"month"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// TaxCollected aggregates applied taxes per state.
type TaxCollected struct {
	State     string  `json:"state"`
	Baskets   int     `json:"baskets"`
	Collected float64 `json:"collected"`
}

// Dashboard carries the KPI tiles of the admin landing page.
type Dashboard struct {
	ActiveProducts int     `json:"active_products"`
	Shoppers       int     `json:"shoppers"`
	ActiveBaskets  int     `json:"active_baskets"`
	OrdersToday    int     `json:"orders_today"`
	RevenueToday   float64 `json:"revenue_today"`
	RevenueMonth   float64 `json:"revenue_month"`
	LowStock       int     `json:"low_stock"`
}

// SalesStatistics summarises orders placed inside a window.
type SalesStatistics struct {
	From              time.Time `json:"from"`
	To                time.Time `json:"to"`
	Orders            int       `json:"orders"`
	Revenue           float64   `json:"revenue"`
	AverageOrderValue float64   `json:"average_order_value"`
	LargestOrder      float64   `json:"largest_order"`
	ItemsSold         int       `json:"items_sold"`
}
