package tax

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
	configs  map[int64]*RateConfiguration
	applied  map[int64]*AppliedTax
	baskets  map[int64]*BasketCharges
	nextID   int64
	nextApID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		configs:  make(map[int64]*RateConfiguration),
		applied:  make(map[int64]*AppliedTax),
		baskets:  make(map[int64]*BasketCharges),
		nextID:   1,
		nextApID: 1,
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) Get(_ context.Context, id int64) (*RateConfiguration, error) {
	c, ok := m.configs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepository) GetByState(_ context.Context, state string) (*RateConfiguration, error) {
	for _, c := range m.configs {
		if c.State == state {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) ActiveByState(_ context.Context, state string) (*RateConfiguration, error) {
	for _, c := range m.configs {
		if c.State == state && c.Active {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNoConfiguration
}

func (m *mockRepository) List(_ context.Context, activeOnly bool) ([]RateConfiguration, error) {
	var out []RateConfiguration
	for _, c := range m.configs {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out, nil
}

func (m *mockRepository) ListByRateRange(_ context.Context, min, max float64) ([]RateConfiguration, error) {
	var out []RateConfiguration
	for _, c := range m.configs {
		if c.Rate >= min && c.Rate <= max {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rate < out[j].Rate })
	return out, nil
}

func (m *mockRepository) SearchByDescription(_ context.Context, term string) ([]RateConfiguration, error) {
	var out []RateConfiguration
	for _, c := range m.configs {
		if c.Description != nil && strings.Contains(strings.ToLower(*c.Description), strings.ToLower(term)) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepository) Upsert(_ context.Context, c RateConfiguration) (*RateConfiguration, error) {
	for _, existing := range m.configs {
		if existing.State == c.State {
			c.ID = existing.ID
			c.CreatedAt = existing.CreatedAt
			c.UpdatedAt = time.Now()
			m.configs[c.ID] = &c
			cp := c
			return &cp, nil
		}
	}
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.configs[c.ID] = &c
	cp := c
	return &cp, nil
}

func (m *mockRepository) SetActive(_ context.Context, id int64, active bool) error {
	c, ok := m.configs[id]
	if !ok {
		return ErrNotFound
	}
	c.Active = active
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.configs[id]; !ok {
		return ErrNotFound
	}
	delete(m.configs, id)
	return nil
}

func (m *mockRepository) Statistics(_ context.Context) (*Statistics, error) {
	s := &Statistics{}
	for _, c := range m.configs {
		s.Configurations++
		if c.Active {
			s.ActiveCount++
		}
		if s.MinRate == 0 || c.Rate < s.MinRate {
			s.MinRate = c.Rate
		}
		if c.Rate > s.MaxRate {
			s.MaxRate = c.Rate
		}
		s.AverageRate += c.Rate
	}
	if s.Configurations > 0 {
		s.AverageRate /= float64(s.Configurations)
	}
	return s, nil
}

func (m *mockRepository) States(_ context.Context) ([]string, error) {
	var out []string
	for _, c := range m.configs {
		out = append(out, c.State)
	}
	sort.Strings(out)
	return out, nil
}

func (m *mockRepository) InsertApplied(_ context.Context, a AppliedTax) (int64, error) {
	a.ID = m.nextApID
	m.nextApID++
	a.AppliedAt = time.Now()
	m.applied[a.ID] = &a
	return a.ID, nil
}

func (m *mockRepository) ListApplied(_ context.Context, basketID int64) ([]AppliedTax, error) {
	var out []AppliedTax
	for _, a := range m.applied {
		if a.BasketID == basketID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepository) TotalApplied(_ context.Context, basketID int64) (float64, error) {
	total := 0.0
	for _, a := range m.applied {
		if a.BasketID == basketID {
			total += a.Amount
		}
	}
	return total, nil
}

func (m *mockRepository) DeleteApplied(_ context.Context, id int64) (*AppliedTax, error) {
	a, ok := m.applied[id]
	if !ok {
		return nil, ErrAppliedNotFound
	}
	delete(m.applied, id)
	cp := *a
	return &cp, nil
}

func (m *mockRepository) BasketCharges(_ context.Context, basketID int64) (*BasketCharges, error) {
	b, ok := m.baskets[basketID]
	if !ok {
		return nil, ErrBasketNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockRepository) UpdateBasketTax(_ context.Context, basketID int64, tax, total float64) error {
	b, ok := m.baskets[basketID]
	if !ok {
		return ErrBasketNotFound
	}
	b.Tax = tax
	return nil
}

func TestConversions(t *testing.T) {
	assert.Equal(t, 0.045, PercentToRate(4.5))
	assert.Equal(t, 4.5, RateToPercent(0.045))
	assert.Equal(t, 0.0625, PercentToRate(6.25))
	assert.Equal(t, 6.25, RateToPercent(0.0625))
	assert.Equal(t, 0.0456, PercentToRate(4.56))
}

func TestCalculateTax(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{
		State: "VA", Percentage: ptr(4.5),
	})
	require.NoError(t, err)

	t.Run("configured state", func(t *testing.T) {
		taxAmount, err := svc.CalculateTax(ctx, "VA", 100.00)
		require.NoError(t, err)
		assert.Equal(t, 4.50, taxAmount)

		total, err := svc.CalculateTotalWithTax(ctx, "VA", 100.00)
		require.NoError(t, err)
		assert.Equal(t, 104.50, total)
	})

	t.Run("rounds half-up to cents", func(t *testing.T) {
		taxAmount, err := svc.CalculateTax(ctx, "VA", 33.45)
		require.NoError(t, err)
		// 33.45 * 0.045 = 1.50525 -> 1.51
		assert.Equal(t, 1.51, taxAmount)
	})

	t.Run("state without configuration is tax free", func(t *testing.T) {
		taxAmount, err := svc.CalculateTax(ctx, "OR", 100.00)
		require.NoError(t, err)
		assert.Equal(t, 0.0, taxAmount)
	})

	t.Run("deactivated configuration is tax free", func(t *testing.T) {
		c, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{
			State: "NC", Percentage: ptr(4.75),
		})
		require.NoError(t, err)
		_, err = svc.SetActive(ctx, c.ID, false)
		require.NoError(t, err)
		taxAmount, err := svc.CalculateTax(ctx, "NC", 100.00)
		require.NoError(t, err)
		assert.Equal(t, 0.0, taxAmount)
	})

	t.Run("lowercase state accepted", func(t *testing.T) {
		taxAmount, err := svc.CalculateTax(ctx, "va", 100.00)
		require.NoError(t, err)
		assert.Equal(t, 4.50, taxAmount)
	})
}

func TestCreateOrUpdateConfiguration(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepository())

	t.Run("from percentage", func(t *testing.T) {
		c, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{
			State: "VA", Percentage: ptr(4.5),
		})
		require.NoError(t, err)
		assert.Equal(t, 0.045, c.Rate)
		assert.Equal(t, 4.5, c.Percentage)
		assert.True(t, c.Active)
	})

	t.Run("from rate", func(t *testing.T) {
		c, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{
			State: "TX", Rate: ptr(0.0625),
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0625, c.Rate)
		assert.Equal(t, 6.25, c.Percentage)
	})

	t.Run("upsert replaces existing state config", func(t *testing.T) {
		first, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{
			State: "GA", Percentage: ptr(4.0),
		})
		require.NoError(t, err)
		second, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{
			State: "GA", Percentage: ptr(5.0),
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 0.05, second.Rate)
	})

	t.Run("upsert reactivates a deactivated state", func(t *testing.T) {
		c, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{
			State: "FL", Percentage: ptr(6.0),
		})
		require.NoError(t, err)
		_, err = svc.SetActive(ctx, c.ID, false)
		require.NoError(t, err)

		updated, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{
			State: "FL", Percentage: ptr(6.5),
		})
		require.NoError(t, err)
		assert.True(t, updated.Active)
	})

	t.Run("province stored with the configuration", func(t *testing.T) {
		c, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{
			State: "WA", Province: ptr("King County"), Percentage: ptr(6.5),
		})
		require.NoError(t, err)
		require.NotNil(t, c.Province)
		assert.Equal(t, "King County", *c.Province)
	})

	t.Run("unknown state rejected", func(t *testing.T) {
		_, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{
			State: "ZZ", Percentage: ptr(4.0),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("neither rate nor percentage", func(t *testing.T) {
		_, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{State: "VA"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestApplyToBasket(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.CreateOrUpdateConfiguration(ctx, UpsertConfigurationRequest{
		State: "VA", Percentage: ptr(4.5),
	})
	require.NoError(t, err)
	repo.baskets[1] = &BasketCharges{ID: 1, Subtotal: 100.00, Shipping: 8.00}

	t.Run("applies and updates basket", func(t *testing.T) {
		applied, err := svc.ApplyToBasket(ctx, 1, "VA")
		require.NoError(t, err)
		assert.Equal(t, 4.50, applied.Amount)
		assert.Equal(t, 0.045, applied.Rate)
		assert.Equal(t, 4.50, repo.baskets[1].Tax)
	})

	t.Run("no active configuration refused", func(t *testing.T) {
		_, err := svc.ApplyToBasket(ctx, 1, "OR")
		assert.ErrorIs(t, err, ErrNoConfiguration)
	})

	t.Run("unknown basket", func(t *testing.T) {
		_, err := svc.ApplyToBasket(ctx, 999, "VA")
		assert.ErrorIs(t, err, ErrBasketNotFound)
	})

	t.Run("remove applied recomputes", func(t *testing.T) {
		applied, err := svc.ListApplied(ctx, 1)
		require.NoError(t, err)
		require.NotEmpty(t, applied)

		require.NoError(t, svc.RemoveApplied(ctx, applied[0].ID))
		assert.Equal(t, 0.0, repo.baskets[1].Tax)
	})
}

func TestStateName(t *testing.T) {
	assert.Equal(t, "Virginia", StateName("VA"))
	assert.Equal(t, "XX", StateName("XX"))
	assert.True(t, KnownState("DC"))
	assert.False(t, KnownState("PR"))
}

func ptr[T any](v T) *T {
	return &v
}
