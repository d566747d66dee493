package tax

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bbbrewery/backend/internal/platform/httpx"
)

// Handler wires HTTP endpoints for tax configuration and applied taxes.
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

// MountRoutes registers tax routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/rates", h.List)
	r.Put("/rates", h.Upsert)
	r.Get("/rates/range", h.ListByRateRange)
	r.Get("/rates/search", h.SearchByDescription)
	r.Get("/rates/statistics", h.Statistics)
	r.Get("/rates/states", h.States)
	r.Get("/rates/state/{state}", h.ShowByState)
	r.Get("/rates/{id}", h.Show)
	r.Patch("/rates/{id}/active", h.SetActive)
	r.Delete("/rates/{id}", h.Delete)
	r.Post("/calculate", h.Calculate)
	r.Post("/baskets/{basketID}/apply", h.ApplyToBasket)
	r.Get("/baskets/{basketID}/applied", h.ListApplied)
	r.Delete("/applied/{id}", h.RemoveApplied)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	configs, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		h.respondError(w, "list tax rates", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rates": configs})
}

func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertConfigurationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	config, err := h.service.CreateOrUpdateConfiguration(r.Context(), req)
	if err != nil {
		h.respondError(w, "upsert tax rate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, config)
}

func (h *Handler) ListByRateRange(w http.ResponseWriter, r *http.Request) {
	min, errMin := strconv.ParseFloat(r.URL.Query().Get("min"), 64)
	max, errMax := strconv.ParseFloat(r.URL.Query().Get("max"), 64)
	if errMin != nil || errMax != nil {
		httpx.BadRequest(w, "min and max rates are required")
		return
	}
	configs, err := h.service.ListByRateRange(r.Context(), min, max)
	if err != nil {
		h.respondError(w, "list tax rates by range", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rates": configs})
}

func (h *Handler) SearchByDescription(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		httpx.BadRequest(w, "search term q is required")
		return
	}
	configs, err := h.service.SearchByDescription(r.Context(), term)
	if err != nil {
		h.respondError(w, "search tax rates", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rates": configs})
}

func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		h.respondError(w, "tax statistics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) States(w http.ResponseWriter, r *http.Request) {
	states, err := h.service.States(r.Context())
	if err != nil {
		h.respondError(w, "list tax states", err)
		return
	}
	named := make([]map[string]string, 0, len(states))
	for _, code := range states {
		named = append(named, map[string]string{"code": code, "name": StateName(code)})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"states": named})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	config, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get tax rate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, config)
}

func (h *Handler) ShowByState(w http.ResponseWriter, r *http.Request) {
	state := chi.URLParam(r, "state")
	config, err := h.service.GetByState(r.Context(), state)
	if err != nil {
		h.respondError(w, "get tax rate by state", err)
		return
	}
	httpx.JSON(w, http.StatusOK, config)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active" validate:"required"`
	}
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	config, err := h.service.SetActive(r.Context(), id, *req.Active)
	if err != nil {
		h.respondError(w, "toggle tax rate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, config)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete tax rate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	taxAmount, err := h.service.CalculateTax(r.Context(), req.State, req.Amount)
	if err != nil {
		h.respondError(w, "calculate tax", err)
		return
	}
	total, err := h.service.CalculateTotalWithTax(r.Context(), req.State, req.Amount)
	if err != nil {
		h.respondError(w, "calculate tax", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{
		"amount": req.Amount,
		"tax":    taxAmount,
		"total":  total,
	})
}

func (h *Handler) ApplyToBasket(w http.ResponseWriter, r *http.Request) {
	basketID, ok := h.parseBasketID(w, r)
	if !ok {
		return
	}
	var req ApplyRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	applied, err := h.service.ApplyToBasket(r.Context(), basketID, req.State)
	if err != nil {
		h.respondError(w, "apply tax to basket", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, applied)
}

func (h *Handler) ListApplied(w http.ResponseWriter, r *http.Request) {
	basketID, ok := h.parseBasketID(w, r)
	if !ok {
		return
	}
	applied, err := h.service.ListApplied(r.Context(), basketID)
	if err != nil {
		h.respondError(w, "list applied taxes", err)
		return
	}
	total, err := h.service.TotalApplied(r.Context(), basketID)
	if err != nil {
		h.respondError(w, "list applied taxes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"applied": applied,
		"total":   total,
	})
}

func (h *Handler) RemoveApplied(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveApplied(r.Context(), id); err != nil {
		h.respondError(w, "remove applied tax", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) parseBasketID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "basketID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(w, "invalid basket id")
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
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAppliedNotFound),
		errors.Is(err, ErrBasketNotFound):
		httpx.NotFound(w, err.Error())
	case errors.Is(err, ErrValidation):
		httpx.BadRequest(w, err.Error())
	case errors.Is(err, ErrNoConfiguration):
		httpx.Conflict(w, err.Error())
	default:
		h.logger.Error(op+" failed", "error", err)
		httpx.Internal(w)
	}
}
