package shopper

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
	shoppers  map[int64]*Shopper
	purchases map[int64]float64
	baskets   map[int64]bool
	nextID    int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		shoppers:  make(map[int64]*Shopper),
		purchases: make(map[int64]float64),
		baskets:   make(map[int64]bool),
		nextID:    1,
	}
}

func (m *mockRepository) seed(s Shopper) *Shopper {
	s.ID = m.nextID
	m.nextID++
	if s.DateCreated.IsZero() {
		s.DateCreated = time.Now()
	}
	m.shoppers[s.ID] = &s
	return &s
}

func (m *mockRepository) List(_ context.Context, filters ListFilters) ([]Shopper, error) {
	var out []Shopper
	for _, s := range m.shoppers {
		if filters.Search != "" {
			term := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(s.FirstName), term) &&
				!strings.Contains(strings.ToLower(s.LastName), term) {
				continue
			}
		}
		if filters.State != "" && (s.State == nil || *s.State != strings.ToUpper(filters.State)) {
			continue
		}
		if filters.City != "" && (s.City == nil || !strings.EqualFold(*s.City, filters.City)) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Shopper, error) {
	s, ok := m.shoppers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepository) GetByEmail(_ context.Context, email string) (*Shopper, error) {
	for _, s := range m.shoppers {
		if s.Email != nil && strings.EqualFold(*s.Email, email) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) Create(_ context.Context, s Shopper) (*Shopper, error) {
	s.DateCreated = time.Now()
	now := s.DateCreated
	s.DateLastVisit = &now
	return m.seed(s), nil
}

func (m *mockRepository) Update(_ context.Context, id int64, s Shopper) error {
	existing, ok := m.shoppers[id]
	if !ok {
		return ErrNotFound
	}
	s.ID = id
	s.DateCreated = existing.DateCreated
	s.DateLastVisit = existing.DateLastVisit
	m.shoppers[id] = &s
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.shoppers[id]; !ok {
		return ErrNotFound
	}
	delete(m.shoppers, id)
	return nil
}

func (m *mockRepository) RecordVisit(_ context.Context, id int64, at time.Time) error {
	s, ok := m.shoppers[id]
	if !ok {
		return ErrNotFound
	}
	s.DateLastVisit = &at
	return nil
}

func (m *mockRepository) Recent(_ context.Context, limit int) ([]Shopper, error) {
	var out []Shopper
	for _, s := range m.shoppers {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreated.After(out[j].DateCreated) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRepository) InactiveSince(_ context.Context, cutoff time.Time) ([]Shopper, error) {
	var out []Shopper
	for _, s := range m.shoppers {
		if s.InactiveSince(cutoff) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockRepository) CountByState(_ context.Context) ([]StateCount, error) {
	byState := make(map[string]int)
	for _, s := range m.shoppers {
		if s.State != nil {
			byState[*s.State]++
		}
	}
	var out []StateCount
	for state, count := range byState {
		out = append(out, StateCount{State: state, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (m *mockRepository) HasBaskets(_ context.Context, id int64) (bool, error) {
	return m.baskets[id], nil
}

func (m *mockRepository) TotalPurchases(_ context.Context, id int64) (float64, error) {
	return m.purchases[id], nil
}

func ptr[T any](v T) *T { return &v }

func TestCreateShopper(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo)

	t.Run("creates with trimmed names and uppercased state", func(t *testing.T) {
		s, err := svc.Create(ctx, CreateShopperRequest{
			FirstName: "  Ada ",
			LastName:  "Lovelace",
			Email:     ptr("ada@example.com"),
			State:     ptr("va"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada", s.FirstName)
		assert.Equal(t, "VA", *s.State)
		assert.Equal(t, "Ada Lovelace", s.FullName())
		assert.False(t, s.DateCreated.IsZero())
	})

	t.Run("duplicate email rejected case-insensitively", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateShopperRequest{
			FirstName: "Eve",
			LastName:  "Smith",
			Email:     ptr("ADA@example.com"),
		})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateShopperRequest{FirstName: " ", LastName: "Smith"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUpdateShopper(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo)

	first := repo.seed(Shopper{FirstName: "Ada", LastName: "Lovelace", Email: ptr("ada@example.com")})
	second := repo.seed(Shopper{FirstName: "Grace", LastName: "Hopper", Email: ptr("grace@example.com")})

	t.Run("keeping own email is not a duplicate", func(t *testing.T) {
		got, err := svc.Update(ctx, first.ID, UpdateShopperRequest{
			FirstName: "Ada",
			LastName:  "King",
			Email:     ptr("ada@example.com"),
		})
		require.NoError(t, err)
		assert.Equal(t, "King", got.LastName)
	})

	t.Run("taking another shopper's email is", func(t *testing.T) {
		_, err := svc.Update(ctx, second.ID, UpdateShopperRequest{
			FirstName: "Grace",
			LastName:  "Hopper",
			Email:     ptr("ada@example.com"),
		})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("unknown shopper", func(t *testing.T) {
		_, err := svc.Update(ctx, 999, UpdateShopperRequest{FirstName: "A", LastName: "B"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteShopper(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo)

	free := repo.seed(Shopper{FirstName: "Ada", LastName: "Lovelace"})
	customer := repo.seed(Shopper{FirstName: "Grace", LastName: "Hopper"})
	repo.baskets[customer.ID] = true

	assert.NoError(t, svc.Delete(ctx, free.ID))

	err := svc.Delete(ctx, customer.ID)
	assert.ErrorIs(t, err, ErrHasBaskets)
	_, err = svc.Get(ctx, customer.ID)
	assert.NoError(t, err, "shopper with baskets survives")
}

func TestRecordVisit(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo)

	old := time.Now().AddDate(0, 0, -90)
	s := repo.seed(Shopper{FirstName: "Ada", LastName: "Lovelace", DateLastVisit: &old})

	got, err := svc.RecordVisit(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DateLastVisit)
	assert.WithinDuration(t, time.Now(), *got.DateLastVisit, time.Minute)

	_, err = svc.RecordVisit(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInactive(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo)

	recent := time.Now().AddDate(0, 0, -2)
	stale := time.Now().AddDate(0, 0, -60)
	repo.seed(Shopper{FirstName: "Ada", LastName: "Lovelace", DateLastVisit: &recent})
	dormant := repo.seed(Shopper{FirstName: "Grace", LastName: "Hopper", DateLastVisit: &stale})
	never := repo.seed(Shopper{FirstName: "Alan", LastName: "Turing"})

	shoppers, err := svc.Inactive(ctx, 30)
	require.NoError(t, err)
	require.Len(t, shoppers, 2)
	ids := []int64{shoppers[0].ID, shoppers[1].ID}
	assert.Contains(t, ids, dormant.ID)
	assert.Contains(t, ids, never.ID, "a shopper with no recorded visit counts as inactive")
}

func TestTotalPurchases(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := NewService(repo)

	s := repo.seed(Shopper{FirstName: "Ada", LastName: "Lovelace"})
	repo.purchases[s.ID] = 123.45

	total, err := svc.TotalPurchases(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 123.45, total)

	_, err = svc.TotalPurchases(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFullAddress(t *testing.T) {
	s := Shopper{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address:   ptr("12 Brewery Ln"),
		City:      ptr("Richmond"),
		State:     ptr("VA"),
		ZipCode:   ptr("23220"),
		Country:   ptr("USA"),
	}
	assert.Equal(t, "12 Brewery Ln, Richmond, VA 23220, USA", s.FullAddress())

	empty := Shopper{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "", empty.FullAddress())
}
