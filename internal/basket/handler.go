package basket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bbbrewery/backend/internal/platform/httpx"
)

// Handler wires HTTP endpoints for baskets and the order lifecycle.
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

// MountRoutes registers basket routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/abandoned", h.ListAbandoned)
	r.Get("/shopper/{shopperID}/active", h.ActiveForShopper)
	r.Get("/{id}", h.Show)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/counts", h.Counts)
	r.Post("/{id}/items", h.AddItem)
	r.Delete("/{id}/items", h.Clear)
	r.Put("/{id}/items/{productID}", h.UpdateItemQuantity)
	r.Delete("/{id}/items/{productID}", h.RemoveItem)
	r.Post("/{id}/checkout", h.Checkout)
	r.Post("/{id}/cancel", h.Cancel)
	r.Put("/{id}/status", h.UpdateStatus)
	r.Put("/{id}/tax", h.SetTax)
	r.Put("/{id}/shipping", h.SetShipping)
	r.Put("/{id}/shipping-address", h.UpdateShippingAddress)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters ListFilters

	if v := q.Get("shopper_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.BadRequest(w, "shopper_id must be an integer")
			return
		}
		filters.ShopperID = &id
	}
	if v := q.Get("status"); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil {
			httpx.BadRequest(w, "status must be an integer")
			return
		}
		status, err := StatusFromCode(code)
		if err != nil {
			httpx.BadRequest(w, err.Error())
			return
		}
		filters.Status = &status
	}
	filters.CreatedFrom = parseTime(q.Get("created_from"))
	filters.CreatedTo = parseTime(q.Get("created_to"))
	filters.OrderedFrom = parseTime(q.Get("ordered_from"))
	filters.OrderedTo = parseTime(q.Get("ordered_to"))
	if v := q.Get("min_total"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MinTotal = &f
		}
	}
	if v := q.Get("page"); v != "" {
		filters.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("limit"); v != "" {
		filters.Limit, _ = strconv.Atoi(v)
	}

	baskets, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, "list baskets", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"baskets": baskets,
		"total":   total,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBasketRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	b, err := h.service.Create(r.Context(), req.ShopperID)
	if err != nil {
		h.respondError(w, "create basket", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

func (h *Handler) ListAbandoned(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			httpx.BadRequest(w, "days must be an integer")
			return
		}
		days = d
	}
	baskets, err := h.service.ListAbandoned(r.Context(), days)
	if err != nil {
		h.respondError(w, "list abandoned baskets", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"baskets": baskets})
}

func (h *Handler) ActiveForShopper(w http.ResponseWriter, r *http.Request) {
	shopperID, err := strconv.ParseInt(chi.URLParam(r, "shopperID"), 10, 64)
	if err != nil || shopperID <= 0 {
		httpx.BadRequest(w, "invalid shopper id")
		return
	}
	b, err := h.service.ActiveForShopper(r.Context(), shopperID)
	if err != nil {
		h.respondError(w, "get active basket", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get basket", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete basket", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	items, quantity, err := h.service.Counts(r.Context(), id)
	if err != nil {
		h.respondError(w, "count basket items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{
		"items":    items,
		"quantity": quantity,
	})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req AddItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	b, err := h.service.AddItem(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "add basket item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	productID, ok := h.parseProductID(w, r)
	if !ok {
		return
	}
	var req UpdateItemQuantityRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	b, err := h.service.UpdateItemQuantity(r.Context(), id, productID, *req.Quantity)
	if err != nil {
		h.respondError(w, "update basket item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	productID, ok := h.parseProductID(w, r)
	if !ok {
		return
	}
	b, err := h.service.RemoveItem(r.Context(), id, productID)
	if err != nil {
		h.respondError(w, "remove basket item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	b, err := h.service.Clear(r.Context(), id)
	if err != nil {
		h.respondError(w, "clear basket", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	b, err := h.service.Checkout(r.Context(), id)
	if err != nil {
		h.respondError(w, "checkout basket", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	b, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.respondError(w, "cancel basket", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	b, err := h.service.UpdateStatus(r.Context(), id, Status(*req.Status))
	if err != nil {
		h.respondError(w, "update basket status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) SetTax(w http.ResponseWriter, r *http.Request) {
	h.setCharge(w, r, h.service.SetTax, "set basket tax")
}

func (h *Handler) SetShipping(w http.ResponseWriter, r *http.Request) {
	h.setCharge(w, r, h.service.SetShipping, "set basket shipping")
}

func (h *Handler) UpdateShippingAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req ShippingAddressRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	b, err := h.service.UpdateShippingAddress(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update shipping address", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) setCharge(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64, float64) (*Basket, error), op string) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req ChargeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	b, err := fn(r.Context(), id, req.Amount)
	if err != nil {
		h.respondError(w, op, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(w, "invalid basket id")
		return 0, false
	}
	return id, true
}

func (h *Handler) parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
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
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrShopperNotFound),
		errors.Is(err, ErrProductNotFound), errors.Is(err, ErrItemNotFound):
		httpx.NotFound(w, err.Error())
	case errors.Is(err, ErrEmptyBasket):
		httpx.BadRequest(w, err.Error())
	case errors.Is(err, ErrAlreadyOrdered), errors.Is(err, ErrNotModifiable),
		errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrProductInactive):
		httpx.Conflict(w, err.Error())
	default:
		h.logger.Error(op+" failed", "error", err)
		httpx.Internal(w)
	}
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	return nil
}
