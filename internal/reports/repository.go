package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	StockReport(ctx context.Context) ([]StockRow, error)
	PurchasesByShopper(ctx context.Context, shopperID int64) (*CustomerPurchases, error)
	TopCustomers(ctx context.Context, limit int) ([]CustomerPurchases, error)
	ProductSalesReport(ctx context.Context) ([]ProductSales, error)
	BestSellers(ctx context.Context, limit int) ([]ProductSales, error)
	RevenueByPeriod(ctx context.Context, format string, from, to time.Time) ([]RevenuePoint, error)
	MonthlySalesForYear(ctx context.Context, year int) ([]MonthlySales, error)
	TaxCollectedByState(ctx context.Context) ([]TaxCollected, error)
	Dashboard(ctx context.Context, lowStockThreshold int) (*Dashboard, error)
	SalesStatistics(ctx context.Context, from, to time.Time) (*SalesStatistics, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// orderedFilter limits baskets to placed orders: an order timestamp exists
// and the basket was neither abandoned, cancelled nor refunded.
const orderedFilter = `b.ordered_at IS NOT NULL AND b.status NOT IN (0, 6, 7)`

func (r *repository) StockReport(ctx context.Context) ([]StockRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.category, p.price, p.stock,
		       COALESCE(SUM(bi.quantity) FILTER (WHERE `+orderedFilter+`), 0) AS units_sold,
		       ROUND((p.price * p.stock)::numeric, 2) AS stock_value
		FROM products p
		LEFT JOIN basket_items bi ON bi.product_id = p.id
		LEFT JOIN baskets b ON b.id = bi.basket_id
		GROUP BY p.id, p.name, p.category, p.price, p.stock
		ORDER BY p.name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []StockRow
	for rows.Next() {
		var row StockRow
		if err := rows.Scan(&row.ProductID, &row.Name, &row.Category, &row.Price,
			&row.Stock, &row.UnitsSold, &row.StockValue); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

const customerColumns = `s.id, s.first_name || ' ' || s.last_name, s.email,
	COUNT(b.id) FILTER (WHERE ` + orderedFilter + `),
	COALESCE(SUM(b.total) FILTER (WHERE ` + orderedFilter + `), 0),
	MAX(b.ordered_at) FILTER (WHERE ` + orderedFilter + `)`

func (r *repository) PurchasesByShopper(ctx context.Context, shopperID int64) (*CustomerPurchases, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM shoppers s
		LEFT JOIN baskets b ON b.shopper_id = s.id
		WHERE s.id = $1
		GROUP BY s.id, s.first_name, s.last_name, s.email`,
		shopperID,
	)
	var c CustomerPurchases
	err := row.Scan(&c.ShopperID, &c.Name, &c.Email, &c.Orders, &c.TotalSpent, &c.LastOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShopperNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) TopCustomers(ctx context.Context, limit int) ([]CustomerPurchases, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+customerColumns+`
		FROM shoppers s
		JOIN baskets b ON b.shopper_id = s.id
		WHERE `+orderedFilter+`
		GROUP BY s.id, s.first_name, s.last_name, s.email
		ORDER BY SUM(b.total) DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCustomers(rows)
}

const productSalesQuery = `
	SELECT p.id, p.name,
	       COALESCE(SUM(bi.quantity), 0) AS units_sold,
	       COALESCE(ROUND(SUM(bi.price * bi.quantity)::numeric, 2), 0) AS revenue
	FROM products p
	JOIN basket_items bi ON bi.product_id = p.id
	JOIN baskets b ON b.id = bi.basket_id
	WHERE ` + orderedFilter + `
	GROUP BY p.id, p.name`

func (r *repository) ProductSalesReport(ctx context.Context) ([]ProductSales, error) {
	rows, err := r.db.Query(ctx, productSalesQuery+` ORDER BY revenue DESC, p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProductSales(rows)
}

func (r *repository) BestSellers(ctx context.Context, limit int) ([]ProductSales, error) {
	rows, err := r.db.Query(ctx, productSalesQuery+` ORDER BY units_sold DESC, p.name LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProductSales(rows)
}

func (r *repository) RevenueByPeriod(ctx context.Context, format string, from, to time.Time) ([]RevenuePoint, error) {
	rows, err := r.db.Query(ctx, `
		SELECT TO_CHAR(b.ordered_at, $1) AS period,
		       COUNT(*), ROUND(SUM(b.total)::numeric, 2)
		FROM baskets b
		WHERE `+orderedFilter+` AND b.ordered_at >= $2 AND b.ordered_at < $3
		GROUP BY period
		ORDER BY period`,
		format, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []RevenuePoint
	for rows.Next() {
		var p RevenuePoint
		if err := rows.Scan(&p.Period, &p.Orders, &p.Revenue); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *repository) MonthlySalesForYear(ctx context.Context, year int) ([]MonthlySales, error) {
	rows, err := r.db.Query(ctx, `
		SELECT EXTRACT(MONTH FROM b.ordered_at)::int AS month,
		       COUNT(*), ROUND(SUM(b.total)::numeric, 2)
		FROM baskets b
		WHERE `+orderedFilter+` AND EXTRACT(YEAR FROM b.ordered_at) = $1
		GROUP BY month
		ORDER BY month`,
		year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMonth := make(map[int]MonthlySales, 12)
	for rows.Next() {
		var m MonthlySales
		if err := rows.Scan(&m.Month, &m.Orders, &m.Revenue); err != nil {
			return nil, err
		}
		byMonth[m.Month] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	months := make([]MonthlySales, 12)
	for i := 1; i <= 12; i++ {
		if m, ok := byMonth[i]; ok {
			months[i-1] = m
		} else {
			months[i-1] = MonthlySales{Month: i}
		}
	}
	return months, nil
}

func (r *repository) TaxCollectedByState(ctx context.Context) ([]TaxCollected, error) {
	rows, err := r.db.Query(ctx, `
		SELECT state, COUNT(DISTINCT basket_id), ROUND(SUM(amount)::numeric, 2)
		FROM basket_taxes
		GROUP BY state
		ORDER BY SUM(amount) DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []TaxCollected
	for rows.Next() {
		var t TaxCollected
		if err := rows.Scan(&t.State, &t.Baskets, &t.Collected); err != nil {
			return nil, err
		}
		report = append(report, t)
	}
	return report, rows.Err()
}

func (r *repository) Dashboard(ctx context.Context, lowStockThreshold int) (*Dashboard, error) {
	var d Dashboard
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products WHERE active),
			(SELECT COUNT(*) FROM shoppers),
			(SELECT COUNT(*) FROM baskets WHERE status = 0),
			(SELECT COUNT(*) FROM baskets b WHERE `+orderedFilter+` AND b.ordered_at >= CURRENT_DATE),
			(SELECT COALESCE(ROUND(SUM(b.total)::numeric, 2), 0) FROM baskets b
			 WHERE `+orderedFilter+` AND b.ordered_at >= CURRENT_DATE),
			(SELECT COALESCE(ROUND(SUM(b.total)::numeric, 2), 0) FROM baskets b
			 WHERE `+orderedFilter+` AND b.ordered_at >= DATE_TRUNC('month', CURRENT_DATE)),
			(SELECT COUNT(*) FROM products WHERE stock > 0 AND stock <= $1)`,
		lowStockThreshold,
	).Scan(&d.ActiveProducts, &d.Shoppers, &d.ActiveBaskets, &d.OrdersToday,
		&d.RevenueToday, &d.RevenueMonth, &d.LowStock)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) SalesStatistics(ctx context.Context, from, to time.Time) (*SalesStatistics, error) {
	stats := SalesStatistics{From: from, To: to}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(ROUND(SUM(b.total)::numeric, 2), 0),
		       COALESCE(ROUND(AVG(b.total)::numeric, 2), 0),
		       COALESCE(MAX(b.total), 0),
		       COALESCE(SUM(b.quantity), 0)
		FROM baskets b
		WHERE `+orderedFilter+` AND b.ordered_at >= $1 AND b.ordered_at < $2`,
		from, to,
	).Scan(&stats.Orders, &stats.Revenue, &stats.AverageOrderValue, &stats.LargestOrder, &stats.ItemsSold)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func collectCustomers(rows pgx.Rows) ([]CustomerPurchases, error) {
	var customers []CustomerPurchases
	for rows.Next() {
		var c CustomerPurchases
		if err := rows.Scan(&c.ShopperID, &c.Name, &c.Email, &c.Orders, &c.TotalSpent, &c.LastOrder); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func collectProductSales(rows pgx.Rows) ([]ProductSales, error) {
	var sales []ProductSales
	for rows.Next() {
		var p ProductSales
		if err := rows.Scan(&p.ProductID, &p.Name, &p.UnitsSold, &p.Revenue); err != nil {
			return nil, err
		}
		sales = append(sales, p)
	}
	return sales, rows.Err()
}
