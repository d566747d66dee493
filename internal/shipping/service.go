package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListRates(ctx context.Context) ([]Rate, error) {
	return s.repo.ListRates(ctx)
}

func (s *Service) ListRatesForMethod(ctx context.Context, method string) ([]Rate, error) {
	if !KnownMethod(method) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	return s.repo.ListRatesForMethod(ctx, method)
}

func (s *Service) GetRate(ctx context.Context, id int64) (*Rate, error) {
	return s.repo.GetRate(ctx, id)
}

// CreateRate adds a weight bracket after validating the range does not
// overlap an existing bracket for the same method.
func (s *Service) CreateRate(ctx context.Context, req UpsertRateRequest) (*Rate, error) {
	rate := Rate{
		Method:      strings.ToLower(strings.TrimSpace(req.Method)),
		LowWeight:   req.LowWeight,
		HighWeight:  req.HighWeight,
		Cost:        req.Cost,
		HandlingFee: req.HandlingFee,
	}
	if err := s.validateRate(ctx, rate, 0); err != nil {
		return nil, err
	}
	return s.repo.CreateRate(ctx, rate)
}

func (s *Service) UpdateRate(ctx context.Context, id int64, req UpsertRateRequest) (*Rate, error) {
	rate := Rate{
		Method:      strings.ToLower(strings.TrimSpace(req.Method)),
		LowWeight:   req.LowWeight,
		HighWeight:  req.HighWeight,
		Cost:        req.Cost,
		HandlingFee: req.HandlingFee,
	}
	if err := s.validateRate(ctx, rate, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRate(ctx, id, rate); err != nil {
		return nil, err
	}
	return s.repo.GetRate(ctx, id)
}

func (s *Service) DeleteRate(ctx context.Context, id int64) error {
	return s.repo.DeleteRate(ctx, id)
}

// ValidateRange checks a prospective bracket without persisting it.
func (s *Service) ValidateRange(ctx context.Context, req UpsertRateRequest) error {
	return s.validateRate(ctx, Rate{
		Method:     strings.ToLower(strings.TrimSpace(req.Method)),
		LowWeight:  req.LowWeight,
		HighWeight: req.HighWeight,
	}, 0)
}

// CalculateCost prices a shipment. Brackets for the requested method win;
// with no method match the narrowest bracket from any method covering the
// weight is used; with no bracket at all the method's default cost applies.
// Unrecognized methods price at the standard default rather than failing.
func (s *Service) CalculateCost(ctx context.Context, method string, weight float64) (float64, error) {
	if weight <= 0 {
		return 0, fmt.Errorf("%w: weight must be positive", ErrInvalidRange)
	}

	rate, err := s.repo.RateForWeight(ctx, method, weight)
	if err == nil {
		return rate.TotalCost(), nil
	}
	if !errors.Is(err, ErrRateNotFound) {
		return 0, err
	}

	covering, err := s.repo.RatesCovering(ctx, weight)
	if err != nil {
		return 0, err
	}
	if len(covering) > 0 {
		return covering[0].TotalCost(), nil
	}

	cost, ok := DefaultCost(method)
	if !ok {
		cost, _ = DefaultCost(MethodStandard)
	}
	return cost, nil
}

// EstimateDelivery returns the expected days in transit and the resulting
// delivery date.
func (s *Service) EstimateDelivery(method string, from time.Time) (int, time.Time, error) {
	if !KnownMethod(method) {
		return 0, time.Time{}, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	days := DeliveryDays(method)
	return days, from.AddDate(0, 0, days), nil
}

// CreateShipment books a shipment for a basket, pricing it and assigning a
// tracking number when the carrier has not supplied one.
func (s *Service) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*Shipment, error) {
	if !KnownMethod(req.Method) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, req.Method)
	}

	exists, err := s.repo.BasketExists(ctx, req.BasketID)
	if err != nil {
		return nil, fmt.Errorf("verify basket: %w", err)
	}
	if !exists {
		return nil, ErrBasketNotFound
	}

	cost, err := s.CalculateCost(ctx, req.Method, req.Weight)
	if err != nil {
		return nil, err
	}

	tracking := strings.TrimSpace(req.TrackingNumber)
	if tracking == "" {
		tracking = uuid.NewString()
	}

	days := DeliveryDays(req.Method)
	estimated := time.Now().AddDate(0, 0, days)

	return s.repo.CreateShipment(ctx, Shipment{
		BasketID:          req.BasketID,
		Method:            strings.ToLower(req.Method),
		TrackingNumber:    tracking,
		Status:            ShipmentPending,
		Cost:              cost,
		Weight:            req.Weight,
		EstimatedDelivery: &estimated,
	})
}

func (s *Service) GetShipment(ctx context.Context, id int64) (*Shipment, error) {
	return s.repo.GetShipment(ctx, id)
}

func (s *Service) GetShipmentByTracking(ctx context.Context, trackingNumber string) (*Shipment, error) {
	return s.repo.GetShipmentByTracking(ctx, trackingNumber)
}

func (s *Service) ListShipmentsByBasket(ctx context.Context, basketID int64) ([]Shipment, error) {
	return s.repo.ListShipmentsByBasket(ctx, basketID)
}

func (s *Service) ListActiveShipments(ctx context.Context) ([]Shipment, error) {
	return s.repo.ListActiveShipments(ctx)
}

func (s *Service) UpdateShipmentStatus(ctx context.Context, id int64, status ShipmentStatus) (*Shipment, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %d", ErrInvalidStatus, int(status))
	}
	switch status {
	case ShipmentShipped:
		return s.MarkAsShipped(ctx, id)
	case ShipmentDelivered:
		return s.MarkAsDelivered(ctx, id)
	}

	existing, err := s.repo.GetShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.Status.IsOpen() {
		return nil, fmt.Errorf("%w: shipment is %s", ErrInvalidStatus, existing.Status.Description())
	}
	if err := s.repo.UpdateShipmentStatus(ctx, id, status, nil, nil); err != nil {
		return nil, err
	}
	return s.repo.GetShipment(ctx, id)
}

// MarkAsShipped moves the shipment to shipped and stamps the actual ship
// date.
func (s *Service) MarkAsShipped(ctx context.Context, id int64) (*Shipment, error) {
	existing, err := s.repo.GetShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != ShipmentPending && existing.Status != ShipmentProcessing {
		return nil, fmt.Errorf("%w: cannot ship a %s shipment", ErrInvalidStatus, existing.Status.Description())
	}
	now := time.Now()
	if err := s.repo.UpdateShipmentStatus(ctx, id, ShipmentShipped, &now, nil); err != nil {
		return nil, err
	}
	return s.repo.GetShipment(ctx, id)
}

// MarkAsDelivered moves the shipment to delivered and stamps the delivery
// date.
func (s *Service) MarkAsDelivered(ctx context.Context, id int64) (*Shipment, error) {
	existing, err := s.repo.GetShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != ShipmentShipped && existing.Status != ShipmentInTransit {
		return nil, fmt.Errorf("%w: cannot deliver a %s shipment", ErrInvalidStatus, existing.Status.Description())
	}
	now := time.Now()
	if err := s.repo.UpdateShipmentStatus(ctx, id, ShipmentDelivered, nil, &now); err != nil {
		return nil, err
	}
	return s.repo.GetShipment(ctx, id)
}

func (s *Service) validateRate(ctx context.Context, rate Rate, excludeID int64) error {
	if !KnownMethod(rate.Method) {
		return fmt.Errorf("%w: %s", ErrUnknownMethod, rate.Method)
	}
	if rate.LowWeight < 0 || rate.HighWeight <= rate.LowWeight {
		return fmt.Errorf("%w: low %.2f, high %.2f", ErrInvalidRange, rate.LowWeight, rate.HighWeight)
	}
	overlaps, err := s.repo.HasOverlappingRange(ctx, rate.Method, rate.LowWeight, rate.HighWeight, excludeID)
	if err != nil {
		return err
	}
	if overlaps {
		return ErrOverlappingRange
	}
	return nil
}
