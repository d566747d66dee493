package shipping

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	rates     map[int64]*Rate
	shipments map[int64]*Shipment
	baskets   map[int64]bool
	nextID    int64
	nextShID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		rates:     make(map[int64]*Rate),
		shipments: make(map[int64]*Shipment),
		baskets:   make(map[int64]bool),
		nextID:    1,
		nextShID:  1,
	}
}

func (m *mockRepository) seedRate(r Rate) *Rate {
	r.ID = m.nextID
	m.nextID++
	m.rates[r.ID] = &r
	return &r
}

func (m *mockRepository) ListRates(_ context.Context) ([]Rate, error) {
	var out []Rate
	for _, r := range m.rates {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepository) ListRatesForMethod(_ context.Context, method string) ([]Rate, error) {
	var out []Rate
	for _, r := range m.rates {
		if strings.EqualFold(r.Method, method) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LowWeight < out[j].LowWeight })
	return out, nil
}

func (m *mockRepository) GetRate(_ context.Context, id int64) (*Rate, error) {
	r, ok := m.rates[id]
	if !ok {
		return nil, ErrRateNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepository) RateForWeight(_ context.Context, method string, weight float64) (*Rate, error) {
	var best *Rate
	for _, r := range m.rates {
		if !strings.EqualFold(r.Method, method) || !r.Covers(weight) {
			continue
		}
		if best == nil || r.Span() < best.Span() {
			best = r
		}
	}
	if best == nil {
		return nil, ErrRateNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *mockRepository) RatesCovering(_ context.Context, weight float64) ([]Rate, error) {
	var out []Rate
	for _, r := range m.rates {
		if r.Covers(weight) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Span() < out[j].Span() })
	return out, nil
}

func (m *mockRepository) HasOverlappingRange(_ context.Context, method string, low, high float64, excludeID int64) (bool, error) {
	for _, r := range m.rates {
		if r.ID == excludeID || !strings.EqualFold(r.Method, method) {
			continue
		}
		if r.LowWeight < high && r.HighWeight > low {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) CreateRate(_ context.Context, r Rate) (*Rate, error) {
	return m.seedRate(r), nil
}

func (m *mockRepository) UpdateRate(_ context.Context, id int64, r Rate) error {
	if _, ok := m.rates[id]; !ok {
		return ErrRateNotFound
	}
	r.ID = id
	m.rates[id] = &r
	return nil
}

func (m *mockRepository) DeleteRate(_ context.Context, id int64) error {
	if _, ok := m.rates[id]; !ok {
		return ErrRateNotFound
	}
	delete(m.rates, id)
	return nil
}

func (m *mockRepository) CreateShipment(_ context.Context, s Shipment) (*Shipment, error) {
	s.ID = m.nextShID
	m.nextShID++
	s.CreatedAt = time.Now()
	m.shipments[s.ID] = &s
	cp := s
	return &cp, nil
}

func (m *mockRepository) GetShipment(_ context.Context, id int64) (*Shipment, error) {
	s, ok := m.shipments[id]
	if !ok {
		return nil, ErrShipmentNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepository) GetShipmentByTracking(_ context.Context, trackingNumber string) (*Shipment, error) {
	for _, s := range m.shipments {
		if s.TrackingNumber == trackingNumber {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrShipmentNotFound
}

func (m *mockRepository) ListShipmentsByBasket(_ context.Context, basketID int64) ([]Shipment, error) {
	var out []Shipment
	for _, s := range m.shipments {
		if s.BasketID == basketID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockRepository) ListActiveShipments(_ context.Context) ([]Shipment, error) {
	var out []Shipment
	for _, s := range m.shipments {
		if s.Status.IsOpen() {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockRepository) UpdateShipmentStatus(_ context.Context, id int64, status ShipmentStatus, shippedAt, deliveredAt *time.Time) error {
	s, ok := m.shipments[id]
	if !ok {
		return ErrShipmentNotFound
	}
	s.Status = status
	if shippedAt != nil {
		s.ShippedAt = shippedAt
	}
	if deliveredAt != nil {
		s.DeliveredAt = deliveredAt
	}
	return nil
}

func (m *mockRepository) BasketExists(_ context.Context, basketID int64) (bool, error) {
	return m.baskets[basketID], nil
}

func TestCalculateCost(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo)

	repo.seedRate(Rate{Method: "standard", LowWeight: 0, HighWeight: 50, Cost: 6.00, HandlingFee: 1.00})
	repo.seedRate(Rate{Method: "standard", LowWeight: 0, HighWeight: 10, Cost: 4.00, HandlingFee: 1.00})
	repo.seedRate(Rate{Method: "express", LowWeight: 0, HighWeight: 20, Cost: 12.00, HandlingFee: 2.00})

	t.Run("narrowest bracket for method wins", func(t *testing.T) {
		cost, err := svc.CalculateCost(ctx, "standard", 5)
		require.NoError(t, err)
		assert.Equal(t, 4.00, cost)
	})

	t.Run("wider bracket when weight leaves the narrow one", func(t *testing.T) {
		cost, err := svc.CalculateCost(ctx, "standard", 25)
		require.NoError(t, err)
		assert.Equal(t, 6.00, cost)
	})

	t.Run("method match is case-insensitive", func(t *testing.T) {
		cost, err := svc.CalculateCost(ctx, "Express", 10)
		require.NoError(t, err)
		assert.Equal(t, 12.00, cost)
	})

	t.Run("falls back to narrowest bracket of any method", func(t *testing.T) {
		// No overnight brackets exist; weight 15 is covered by express (span
		// 20) and standard (span 50).
		cost, err := svc.CalculateCost(ctx, "overnight", 15)
		require.NoError(t, err)
		assert.Equal(t, 12.00, cost)
	})

	t.Run("falls back to method default with no bracket at all", func(t *testing.T) {
		cost, err := svc.CalculateCost(ctx, "overnight", 500)
		require.NoError(t, err)
		assert.Equal(t, 25.00, cost)
	})

	t.Run("unknown method uses a covering bracket", func(t *testing.T) {
		cost, err := svc.CalculateCost(ctx, "teleport", 5)
		require.NoError(t, err)
		assert.Equal(t, 4.00, cost, "narrowest covering bracket prices the unknown method")
	})

	t.Run("unknown method with no bracket uses the standard default", func(t *testing.T) {
		cost, err := svc.CalculateCost(ctx, "teleport", 500)
		require.NoError(t, err)
		assert.Equal(t, 8.00, cost)
	})

	t.Run("upper bound is inclusive", func(t *testing.T) {
		cost, err := svc.CalculateCost(ctx, "standard", 10)
		require.NoError(t, err)
		assert.Equal(t, 4.00, cost, "weight 10 still matches the 0-10 bracket")
	})

	t.Run("handling fee prices a bracket without a cost", func(t *testing.T) {
		repo.seedRate(Rate{Method: "priority", LowWeight: 0, HighWeight: 5, HandlingFee: 3.50})
		cost, err := svc.CalculateCost(ctx, "priority", 2)
		require.NoError(t, err)
		assert.Equal(t, 3.50, cost)
	})

	t.Run("non-positive weight rejected", func(t *testing.T) {
		_, err := svc.CalculateCost(ctx, "standard", 0)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestRateValidation(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.CreateRate(ctx, UpsertRateRequest{Method: "standard", LowWeight: 0, HighWeight: 10, Cost: 5})
	require.NoError(t, err)

	t.Run("inverted range", func(t *testing.T) {
		_, err := svc.CreateRate(ctx, UpsertRateRequest{Method: "standard", LowWeight: 20, HighWeight: 10, Cost: 5})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("overlapping range for same method", func(t *testing.T) {
		_, err := svc.CreateRate(ctx, UpsertRateRequest{Method: "standard", LowWeight: 5, HighWeight: 15, Cost: 5})
		assert.ErrorIs(t, err, ErrOverlappingRange)
	})

	t.Run("same range on another method allowed", func(t *testing.T) {
		_, err := svc.CreateRate(ctx, UpsertRateRequest{Method: "express", LowWeight: 0, HighWeight: 10, Cost: 12})
		assert.NoError(t, err)
	})

	t.Run("adjacent ranges do not overlap", func(t *testing.T) {
		_, err := svc.CreateRate(ctx, UpsertRateRequest{Method: "standard", LowWeight: 10, HighWeight: 20, Cost: 7})
		assert.NoError(t, err)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := svc.CreateRate(ctx, UpsertRateRequest{Method: "drone", LowWeight: 0, HighWeight: 10, Cost: 5})
		assert.ErrorIs(t, err, ErrUnknownMethod)
	})
}

func TestEstimateDelivery(t *testing.T) {
	svc := NewService(newMockRepository())
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	cases := map[string]int{
		"standard":  7,
		"priority":  2,
		"express":   3,
		"overnight": 1,
	}
	for method, wantDays := range cases {
		days, date, err := svc.EstimateDelivery(method, from)
		require.NoError(t, err)
		assert.Equal(t, wantDays, days, method)
		assert.Equal(t, from.AddDate(0, 0, wantDays), date, method)
	}

	_, _, err := svc.EstimateDelivery("pigeon", from)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestShipmentLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo)
	repo.baskets[1] = true

	t.Run("create assigns tracking and estimate", func(t *testing.T) {
		s, err := svc.CreateShipment(ctx, CreateShipmentRequest{BasketID: 1, Method: "express", Weight: 3})
		require.NoError(t, err)
		assert.NotEmpty(t, s.TrackingNumber)
		assert.Equal(t, ShipmentPending, s.Status)
		require.NotNil(t, s.EstimatedDelivery)

		found, err := svc.GetShipmentByTracking(ctx, s.TrackingNumber)
		require.NoError(t, err)
		assert.Equal(t, s.ID, found.ID)
	})

	t.Run("supplied tracking number kept", func(t *testing.T) {
		s, err := svc.CreateShipment(ctx, CreateShipmentRequest{
			BasketID: 1, Method: "standard", Weight: 3, TrackingNumber: "1Z999AA10123456784",
		})
		require.NoError(t, err)
		assert.Equal(t, "1Z999AA10123456784", s.TrackingNumber)
	})

	t.Run("unknown basket", func(t *testing.T) {
		_, err := svc.CreateShipment(ctx, CreateShipmentRequest{BasketID: 99, Method: "standard", Weight: 3})
		assert.ErrorIs(t, err, ErrBasketNotFound)
	})

	t.Run("ship then deliver", func(t *testing.T) {
		s, err := svc.CreateShipment(ctx, CreateShipmentRequest{BasketID: 1, Method: "overnight", Weight: 1})
		require.NoError(t, err)

		shipped, err := svc.MarkAsShipped(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, ShipmentShipped, shipped.Status)
		assert.NotNil(t, shipped.ShippedAt)

		delivered, err := svc.MarkAsDelivered(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, ShipmentDelivered, delivered.Status)
		assert.NotNil(t, delivered.DeliveredAt)
	})

	t.Run("cannot deliver a pending shipment", func(t *testing.T) {
		s, err := svc.CreateShipment(ctx, CreateShipmentRequest{BasketID: 1, Method: "standard", Weight: 1})
		require.NoError(t, err)
		_, err = svc.MarkAsDelivered(ctx, s.ID)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("cannot ship twice", func(t *testing.T) {
		s, err := svc.CreateShipment(ctx, CreateShipmentRequest{BasketID: 1, Method: "standard", Weight: 1})
		require.NoError(t, err)
		_, err = svc.MarkAsShipped(ctx, s.ID)
		require.NoError(t, err)
		_, err = svc.MarkAsShipped(ctx, s.ID)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("status update via generic endpoint", func(t *testing.T) {
		s, err := svc.CreateShipment(ctx, CreateShipmentRequest{BasketID: 1, Method: "standard", Weight: 1})
		require.NoError(t, err)

		got, err := svc.UpdateShipmentStatus(ctx, s.ID, ShipmentProcessing)
		require.NoError(t, err)
		assert.Equal(t, ShipmentProcessing, got.Status)

		got, err = svc.UpdateShipmentStatus(ctx, s.ID, ShipmentShipped)
		require.NoError(t, err)
		assert.NotNil(t, got.ShippedAt, "shipping through the generic endpoint still stamps the date")
	})
}

func TestShipmentStatusDescriptions(t *testing.T) {
	assert.Equal(t, "In Transit", ShipmentInTransit.Description())
	assert.Equal(t, "Unknown", ShipmentStatus(9).Description())
	assert.True(t, ShipmentInTransit.IsOpen())
	assert.False(t, ShipmentCancelled.IsOpen())
}
