package shipping

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bbbrewery/backend/internal/platform/httpx"
)

// Handler wires HTTP endpoints for shipping rates and shipments.
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

// MountRoutes registers shipping routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/methods", h.Methods)
	r.Post("/calculate", h.Calculate)
	r.Get("/estimate", h.Estimate)

	r.Get("/rates", h.ListRates)
	r.Post("/rates", h.CreateRate)
	r.Post("/rates/validate", h.ValidateRange)
	r.Get("/rates/{id}", h.ShowRate)
	r.Put("/rates/{id}", h.UpdateRate)
	r.Delete("/rates/{id}", h.DeleteRate)

	r.Get("/shipments", h.ListActiveShipments)
	r.Post("/shipments", h.CreateShipment)
	r.Get("/shipments/tracking/{trackingNumber}", h.ShowByTracking)
	r.Get("/shipments/basket/{basketID}", h.ListByBasket)
	r.Get("/shipments/{id}", h.ShowShipment)
	r.Put("/shipments/{id}/status", h.UpdateShipmentStatus)
	r.Post("/shipments/{id}/ship", h.MarkAsShipped)
	r.Post("/shipments/{id}/deliver", h.MarkAsDelivered)
}

func (h *Handler) Methods(w http.ResponseWriter, r *http.Request) {
	methods := make([]map[string]any, 0, len(Methods()))
	for _, m := range Methods() {
		cost, _ := DefaultCost(m)
		methods = append(methods, map[string]any{
			"method":        m,
			"default_cost":  cost,
			"delivery_days": DeliveryDays(m),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"methods": methods})
}

func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateCostRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	cost, err := h.service.CalculateCost(r.Context(), req.Method, req.Weight)
	if err != nil {
		h.respondError(w, "calculate shipping cost", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"method": req.Method,
		"weight": req.Weight,
		"cost":   cost,
	})
}

func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("method")
	if method == "" {
		httpx.BadRequest(w, "method is required")
		return
	}
	days, date, err := h.service.EstimateDelivery(method, time.Now())
	if err != nil {
		h.respondError(w, "estimate delivery", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"method":             method,
		"days":               days,
		"estimated_delivery": date.Format("2006-01-02"),
	})
}

func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	var (
		rates []Rate
		err   error
	)
	if method := r.URL.Query().Get("method"); method != "" {
		rates, err = h.service.ListRatesForMethod(r.Context(), method)
	} else {
		rates, err = h.service.ListRates(r.Context())
	}
	if err != nil {
		h.respondError(w, "list shipping rates", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rates": rates})
}

func (h *Handler) CreateRate(w http.ResponseWriter, r *http.Request) {
	var req UpsertRateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	rate, err := h.service.CreateRate(r.Context(), req)
	if err != nil {
		h.respondError(w, "create shipping rate", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rate)
}

func (h *Handler) ValidateRange(w http.ResponseWriter, r *http.Request) {
	var req UpsertRateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.service.ValidateRange(r.Context(), req); err != nil {
		h.respondError(w, "validate weight range", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (h *Handler) ShowRate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	rate, err := h.service.GetRate(r.Context(), id)
	if err != nil {
		h.respondError(w, "get shipping rate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

func (h *Handler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	var req UpsertRateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	rate, err := h.service.UpdateRate(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update shipping rate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

func (h *Handler) DeleteRate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteRate(r.Context(), id); err != nil {
		h.respondError(w, "delete shipping rate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var req CreateShipmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	shipment, err := h.service.CreateShipment(r.Context(), req)
	if err != nil {
		h.respondError(w, "create shipment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, shipment)
}

func (h *Handler) ListActiveShipments(w http.ResponseWriter, r *http.Request) {
	shipments, err := h.service.ListActiveShipments(r.Context())
	if err != nil {
		h.respondError(w, "list active shipments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shipments": shipments})
}

func (h *Handler) ShowShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	shipment, err := h.service.GetShipment(r.Context(), id)
	if err != nil {
		h.respondError(w, "get shipment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shipment)
}

func (h *Handler) ShowByTracking(w http.ResponseWriter, r *http.Request) {
	tracking := chi.URLParam(r, "trackingNumber")
	shipment, err := h.service.GetShipmentByTracking(r.Context(), tracking)
	if err != nil {
		h.respondError(w, "get shipment by tracking", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shipment)
}

func (h *Handler) ListByBasket(w http.ResponseWriter, r *http.Request) {
	basketID, ok := h.parseID(w, r, "basketID")
	if !ok {
		return
	}
	shipments, err := h.service.ListShipmentsByBasket(r.Context(), basketID)
	if err != nil {
		h.respondError(w, "list shipments for basket", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shipments": shipments})
}

func (h *Handler) UpdateShipmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateShipmentStatusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	shipment, err := h.service.UpdateShipmentStatus(r.Context(), id, ShipmentStatus(*req.Status))
	if err != nil {
		h.respondError(w, "update shipment status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shipment)
}

func (h *Handler) MarkAsShipped(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	shipment, err := h.service.MarkAsShipped(r.Context(), id)
	if err != nil {
		h.respondError(w, "mark shipment shipped", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shipment)
}

func (h *Handler) MarkAsDelivered(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	shipment, err := h.service.MarkAsDelivered(r.Context(), id)
	if err != nil {
		h.respondError(w, "mark shipment delivered", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shipment)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(w, "invalid "+param)
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
	case errors.Is(err, ErrRateNotFound), errors.Is(err, ErrShipmentNotFound),
		errors.Is(err, ErrBasketNotFound):
		httpx.NotFound(w, err.Error())
	case errors.Is(err, ErrUnknownMethod), errors.Is(err, ErrInvalidRange):
		httpx.BadRequest(w, err.Error())
	case errors.Is(err, ErrOverlappingRange), errors.Is(err, ErrInvalidStatus):
		httpx.Conflict(w, err.Error())
	default:
		h.logger.Error(op+" failed", "error", err)
		httpx.Internal(w)
	}
}
