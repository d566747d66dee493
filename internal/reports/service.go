package reports

import (
	"context"
	"fmt"
	"time"
)

// periodFormats maps the requested granularity to the TO_CHAR pattern used
// for bucketing.
var periodFormats = map[string]string{
	"day":   "YYYY-MM-DD",
	"month": "YYYY-MM",
	"year":  "YYYY",
}

type Service struct {
	repo              Repository
	lowStockThreshold int
}

func NewService(repo Repository, lowStockThreshold int) *Service {
	return &Service{
		repo:              repo,
		lowStockThreshold: lowStockThreshold,
	}
}

func (s *Service) StockReport(ctx context.Context) ([]StockRow, error) {
	return s.repo.StockReport(ctx)
}

func (s *Service) PurchasesByShopper(ctx context.Context, shopperID int64) (*CustomerPurchases, error) {
	return s.repo.PurchasesByShopper(ctx, shopperID)
}

func (s *Service) TopCustomers(ctx context.Context, limit int) ([]CustomerPurchases, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.TopCustomers(ctx, limit)
}

func (s *Service) ProductSalesReport(ctx context.Context) ([]ProductSales, error) {
	return s.repo.ProductSalesReport(ctx)
}

func (s *Service) BestSellers(ctx context.Context, limit int) ([]ProductSales, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.BestSellers(ctx, limit)
}

// RevenueByPeriod buckets order revenue by day, month or year. A zero window
// defaults to the last 30 days.
func (s *Service) RevenueByPeriod(ctx context.Context, period string, from, to time.Time) ([]RevenuePoint, error) {
	format, ok := periodFormats[period]
	if !ok {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidPeriod, period)
	}
	from, to, err := normalizeWindow(from, to)
	if err != nil {
		return nil, err
	}
	return s.repo.RevenueByPeriod(ctx, format, from, to)
}

func (s *Service) MonthlySalesForYear(ctx context.Context, year int) ([]MonthlySales, error) {
	if year <= 0 {
		year = time.Now().Year()
	}
	return s.repo.MonthlySalesForYear(ctx, year)
}

func (s *Service) TaxCollectedByState(ctx context.Context) ([]TaxCollected, error) {
	return s.repo.TaxCollectedByState(ctx)
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	return s.repo.Dashboard(ctx, s.lowStockThreshold)
}

func (s *Service) SalesStatistics(ctx context.Context, from, to time.Time) (*SalesStatistics, error) {
	from, to, err := normalizeWindow(from, to)
	if err != nil {
		return nil, err
	}
	return s.repo.SalesStatistics(ctx, from, to)
}

func normalizeWindow(from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from %s is not before to %s",
			ErrInvalidWindow, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return from, to, nil
}
