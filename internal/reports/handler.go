package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bbbrewery/backend/internal/platform/httpx"
)

// Handler exposes the read-only reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// MountRoutes registers reporting routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/stock", h.Stock)
	r.Get("/stock/export", h.StockCSV)
	r.Get("/customers/top", h.TopCustomers)
	r.Get("/customers/{shopperID}", h.PurchasesByShopper)
	r.Get("/sales/products", h.ProductSales)
	r.Get("/sales/products/export", h.ProductSalesCSV)
	r.Get("/sales/best-sellers", h.BestSellers)
	r.Get("/sales/statistics", h.SalesStatistics)
	r.Get("/revenue", h.Revenue)
	r.Get("/revenue/export", h.RevenueCSV)
	r.Get("/revenue/monthly", h.MonthlySales)
	r.Get("/tax-collected", h.TaxCollected)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.respondError(w, "build dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) Stock(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.StockReport(r.Context())
	if err != nil {
		h.respondError(w, "build stock report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"stock": report})
}

func (h *Handler) StockCSV(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.StockReport(r.Context())
	if err != nil {
		h.respondError(w, "export stock report", err)
		return
	}
	h.writeCSV(w, "stock.csv", func() error { return WriteStockCSV(w, report) })
}

func (h *Handler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	customers, err := h.service.TopCustomers(r.Context(), limit)
	if err != nil {
		h.respondError(w, "build top customers report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (h *Handler) PurchasesByShopper(w http.ResponseWriter, r *http.Request) {
	shopperID, err := strconv.ParseInt(chi.URLParam(r, "shopperID"), 10, 64)
	if err != nil || shopperID <= 0 {
		httpx.BadRequest(w, "invalid shopper id")
		return
	}
	purchases, err := h.service.PurchasesByShopper(r.Context(), shopperID)
	if err != nil {
		h.respondError(w, "build shopper purchase report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchases)
}

func (h *Handler) ProductSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.ProductSalesReport(r.Context())
	if err != nil {
		h.respondError(w, "build product sales report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sales": sales})
}

func (h *Handler) ProductSalesCSV(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.ProductSalesReport(r.Context())
	if err != nil {
		h.respondError(w, "export product sales report", err)
		return
	}
	h.writeCSV(w, "product-sales.csv", func() error { return WriteProductSalesCSV(w, sales) })
}

func (h *Handler) BestSellers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sellers, err := h.service.BestSellers(r.Context(), limit)
	if err != nil {
		h.respondError(w, "build best sellers report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"best_sellers": sellers})
}

func (h *Handler) SalesStatistics(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseWindow(w, r)
	if !ok {
		return
	}
	stats, err := h.service.SalesStatistics(r.Context(), from, to)
	if err != nil {
		h.respondError(w, "build sales statistics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	points, ok := h.revenuePoints(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"revenue": points})
}

func (h *Handler) RevenueCSV(w http.ResponseWriter, r *http.Request) {
	points, ok := h.revenuePoints(w, r)
	if !ok {
		return
	}
	h.writeCSV(w, "revenue.csv", func() error { return WriteRevenueCSV(w, points) })
}

func (h *Handler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	months, err := h.service.MonthlySalesForYear(r.Context(), year)
	if err != nil {
		h.respondError(w, "build monthly sales report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"months": months})
}

func (h *Handler) TaxCollected(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.TaxCollectedByState(r.Context())
	if err != nil {
		h.respondError(w, "build tax collected report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tax_collected": report})
}

func (h *Handler) revenuePoints(w http.ResponseWriter, r *http.Request) ([]RevenuePoint, bool) {
	q := r.URL.Query()
	period := q.Get("period")
	if period == "" {
		period = "day"
	}
	from, to, ok := h.parseWindow(w, r)
	if !ok {
		return nil, false
	}
	points, err := h.service.RevenueByPeriod(r.Context(), period, from, to)
	if err != nil {
		h.respondError(w, "build revenue report", err)
		return nil, false
	}
	return points, true
}

func (h *Handler) parseWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	var from, to time.Time
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		parsed, err := parseTime(v)
		if err != nil {
			httpx.BadRequest(w, "invalid from date")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if v := q.Get("to"); v != "" {
		parsed, err := parseTime(v)
		if err != nil {
			httpx.BadRequest(w, "invalid to date")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	return from, to, true
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func (h *Handler) writeCSV(w http.ResponseWriter, filename string, write func() error) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := write(); err != nil {
		h.logger.Error("write csv export", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrShopperNotFound):
		httpx.NotFound(w, err.Error())
	case errors.Is(err, ErrInvalidPeriod), errors.Is(err, ErrInvalidWindow):
		httpx.BadRequest(w, err.Error())
	default:
		h.logger.Error(op+" failed", "error", err)
		httpx.Internal(w)
	}
}
