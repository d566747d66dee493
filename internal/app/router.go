package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bbbrewery/backend/internal/basket"
	"github.com/bbbrewery/backend/internal/catalog"
	"github.com/bbbrewery/backend/internal/reports"
	"github.com/bbbrewery/backend/internal/shipping"
	"github.com/bbbrewery/backend/internal/shopper"
	"github.com/bbbrewery/backend/internal/tax"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	ShopperHandler  *shopper.Handler
	ProductHandler  *catalog.Handler
	BasketHandler   *basket.Handler
	TaxHandler      *tax.Handler
	ShippingHandler *shipping.Handler
	ReportHandler   *reports.Handler
}

// NewRouter constructs the chi.Router with brewery API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/shoppers", params.ShopperHandler.MountRoutes)
		r.Route("/products", params.ProductHandler.MountRoutes)
		r.Route("/baskets", params.BasketHandler.MountRoutes)
		r.Route("/tax", params.TaxHandler.MountRoutes)
		r.Route("/shipping", params.ShippingHandler.MountRoutes)
		r.Route("/reports", params.ReportHandler.MountRoutes)
	})

	return r
}
