package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bbbrewery/backend/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the product catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers catalog routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/categories", h.Categories)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/description", h.UpdateDescription)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/on-sale", h.OnSale)
	r.Get("/{id}/price", h.CurrentPrice)
	r.Get("/{id}/stock", h.StockAvailable)
	r.Post("/{id}/stock/decrease", h.DecreaseStock)
	r.Post("/{id}/stock/increase", h.IncreaseStock)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := ListFilters{
		Category:   q.Get("category"),
		Type:       q.Get("type"),
		Search:     q.Get("search"),
		OnSale:     q.Get("on_sale") == "true",
		InStock:    q.Get("in_stock") == "true",
		OutOfStock: q.Get("out_of_stock") == "true",
		LowStock:   q.Get("low_stock") == "true",
		SortBy:     q.Get("sort_by"),
		SortDir:    q.Get("sort_dir"),
	}
	if v := q.Get("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MinPrice = &f
		}
	}
	if v := q.Get("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MaxPrice = &f
		}
	}
	if v := q.Get("active"); v != "" {
		active := v == "true"
		filters.Active = &active
	}
	if v := q.Get("page"); v != "" {
		filters.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("limit"); v != "" {
		filters.Limit, _ = strconv.Atoi(v)
	}

	products, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, "list products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products": products,
		"total":    total,
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	product, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateProductRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	product, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateDescriptionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	product, err := h.service.UpdateDescription(r.Context(), id, req.Description)
	if err != nil {
		h.respondError(w, "update product description", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) OnSale(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	onSale, err := h.service.IsOnSale(r.Context(), id)
	if err != nil {
		h.respondError(w, "check product on sale", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"on_sale": onSale})
}

func (h *Handler) CurrentPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	price, err := h.service.CurrentPrice(r.Context(), id)
	if err != nil {
		h.respondError(w, "get product price", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"price": price})
}

func (h *Handler) StockAvailable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	quantity := 1
	if v := r.URL.Query().Get("quantity"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			httpx.BadRequest(w, "quantity must be an integer")
			return
		}
		quantity = q
	}
	available, err := h.service.StockAvailable(r.Context(), id, quantity)
	if err != nil {
		h.respondError(w, "check product stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (h *Handler) DecreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.service.DecreaseStock)
}

func (h *Handler) IncreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.service.IncreaseStock)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.respondError(w, "list categories", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64, quantity int) (*Product, error)) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req StockAdjustmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	product, err := fn(r.Context(), id, req.Quantity)
	if err != nil {
		h.respondError(w, "adjust product stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(w, "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.BadRequest(w, err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidSaleWindow):
		httpx.BadRequest(w, err.Error())
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrDuplicateName):
		httpx.Conflict(w, err.Error())
	default:
		h.logger.Error(op+" failed", "error", err)
		httpx.Internal(w)
	}
}
