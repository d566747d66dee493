package shopper

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bbbrewery/backend/internal/platform/httpx"
)

// Handler wires HTTP endpoints for shopper management.
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

// MountRoutes registers shopper routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/recent", h.Recent)
	r.Get("/inactive", h.Inactive)
	r.Get("/by-state", h.CountByState)
	r.Get("/email/{email}", h.ShowByEmail)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/visit", h.RecordVisit)
	r.Get("/{id}/total-purchases", h.TotalPurchases)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shoppers, err := h.service.List(r.Context(), ListFilters{
		Search:  q.Get("search"),
		City:    q.Get("city"),
		State:   q.Get("state"),
		Country: q.Get("country"),
		ZipCode: q.Get("zip_code"),
	})
	if err != nil {
		h.respondError(w, "list shoppers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shoppers": shoppers})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateShopperRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	shopper, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create shopper", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, shopper)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	shopper, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get shopper", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shopper)
}

func (h *Handler) ShowByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	shopper, err := h.service.GetByEmail(r.Context(), email)
	if err != nil {
		h.respondError(w, "get shopper by email", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shopper)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateShopperRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	shopper, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update shopper", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shopper)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete shopper", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	shopper, err := h.service.RecordVisit(r.Context(), id)
	if err != nil {
		h.respondError(w, "record shopper visit", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shopper)
}

func (h *Handler) TotalPurchases(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	total, err := h.service.TotalPurchases(r.Context(), id)
	if err != nil {
		h.respondError(w, "get shopper total purchases", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"shopper_id":      id,
		"total_purchases": total,
	})
}

func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	shoppers, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.respondError(w, "list recent shoppers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shoppers": shoppers})
}

func (h *Handler) Inactive(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	shoppers, err := h.service.Inactive(r.Context(), days)
	if err != nil {
		h.respondError(w, "list inactive shoppers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shoppers": shoppers})
}

func (h *Handler) CountByState(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.CountByState(r.Context())
	if err != nil {
		h.respondError(w, "count shoppers by state", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"states": counts})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(w, "invalid shopper id")
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
	case errors.Is(err, ErrValidation):
		httpx.BadRequest(w, err.Error())
	case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrHasBaskets):
		httpx.Conflict(w, err.Error())
	default:
		h.logger.Error(op+" failed", "error", err)
		httpx.Internal(w)
	}
}
