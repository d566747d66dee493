package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bbbrewery/backend/internal/app"
	"github.com/bbbrewery/backend/internal/basket"
	"github.com/bbbrewery/backend/internal/catalog"
	"github.com/bbbrewery/backend/internal/platform/db"
	"github.com/bbbrewery/backend/internal/reports"
	"github.com/bbbrewery/backend/internal/shipping"
	"github.com/bbbrewery/backend/internal/shopper"
	"github.com/bbbrewery/backend/internal/tax"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	shopperService := shopper.NewService(shopper.NewRepository(pool))
	catalogService := catalog.NewService(catalog.NewRepository(pool), cfg.LowStockThreshold)
	basketService := basket.NewService(basket.NewRepository(pool))
	taxService := tax.NewService(tax.NewRepository(pool))
	shippingService := shipping.NewService(shipping.NewRepository(pool))
	reportService := reports.NewService(reports.NewRepository(pool), cfg.LowStockThreshold)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		ShopperHandler:  shopper.NewHandler(logger, shopperService),
		ProductHandler:  catalog.NewHandler(logger, catalogService),
		BasketHandler:   basket.NewHandler(logger, basketService),
		TaxHandler:      tax.NewHandler(logger, taxService),
		ShippingHandler: shipping.NewHandler(logger, shippingService),
		ReportHandler:   reports.NewHandler(logger, reportService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
