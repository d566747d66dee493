package catalog

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	products map[int64]*Product
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		products: make(map[int64]*Product),
		nextID:   1,
	}
}

func (m *mockRepository) seed(p Product) *Product {
	p.ID = m.nextID
	m.nextID++
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	m.products[p.ID] = &p
	return &p
}

func (m *mockRepository) List(_ context.Context, filters ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range m.products {
		if filters.Category != "" && (p.Category == nil || *p.Category != filters.Category) {
			continue
		}
		if filters.InStock && p.Stock == 0 {
			continue
		}
		if filters.OutOfStock && p.Stock != 0 {
			continue
		}
		if filters.LowStock && !p.IsLowStock(filters.LowStockThreshold) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepository) GetByName(_ context.Context, name string) (*Product, error) {
	for _, p := range m.products {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) Create(_ context.Context, p Product) (*Product, error) {
	for _, existing := range m.products {
		if existing.Name == p.Name {
			return nil, ErrDuplicateName
		}
	}
	return m.seed(p), nil
}

func (m *mockRepository) Update(_ context.Context, id int64, p Product) error {
	existing, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	m.products[id] = &p
	return nil
}

func (m *mockRepository) UpdateDescription(_ context.Context, id int64, description string) error {
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Description = &description
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockRepository) DecreaseStock(_ context.Context, id int64, quantity int) error {
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (m *mockRepository) IncreaseStock(_ context.Context, id int64, quantity int) error {
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Stock += quantity
	return nil
}

func (m *mockRepository) StockAvailable(_ context.Context, id int64, quantity int) (bool, error) {
	p, ok := m.products[id]
	if !ok {
		return false, ErrNotFound
	}
	return p.Stock >= quantity, nil
}

func (m *mockRepository) IsOnSale(_ context.Context, id int64) (bool, error) {
	p, ok := m.products[id]
	if !ok {
		return false, ErrNotFound
	}
	return p.OnSale(time.Now()), nil
}

func (m *mockRepository) Categories(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range m.products {
		if p.Category != nil && !seen[*p.Category] {
			seen[*p.Category] = true
			out = append(out, *p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(newMockRepository(), 5)
	ctx := context.Background()

	t.Run("valid product", func(t *testing.T) {
		p, err := svc.Create(ctx, CreateProductRequest{Name: "Amber Lager", Price: 9.50, Stock: 10, Active: true})
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.Equal(t, "Amber Lager", p.Name)
	})

	t.Run("name too long", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateProductRequest{Name: "A name that is definitely too long", Price: 9.50})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("non-positive price", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateProductRequest{Name: "Free Beer", Price: 0})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("negative stock", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateProductRequest{Name: "Ghost Stout", Price: 5, Stock: -1})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("inverted sale window", func(t *testing.T) {
		sale := 4.0
		start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		end := start.Add(-24 * time.Hour)
		_, err := svc.Create(ctx, CreateProductRequest{
			Name: "Summer IPA", Price: 6, SalePrice: &sale, SaleStart: &start, SaleEnd: &end,
		})
		assert.ErrorIs(t, err, ErrInvalidSaleWindow)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateProductRequest{Name: "Amber Lager", Price: 7})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})
}

func TestServiceStock(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, 5)
	ctx := context.Background()

	seeded := repo.seed(Product{Name: "Pale Ale", Price: 7, Stock: 10, Active: true})

	t.Run("decrease within stock", func(t *testing.T) {
		p, err := svc.DecreaseStock(ctx, seeded.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 6, p.Stock)
	})

	t.Run("decrease beyond stock", func(t *testing.T) {
		_, err := svc.DecreaseStock(ctx, seeded.ID, 100)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("decrease unknown product", func(t *testing.T) {
		_, err := svc.DecreaseStock(ctx, 9999, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		_, err := svc.DecreaseStock(ctx, seeded.ID, 0)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("increase restores stock", func(t *testing.T) {
		p, err := svc.IncreaseStock(ctx, seeded.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 10, p.Stock)
	})

	t.Run("availability check", func(t *testing.T) {
		ok, err := svc.StockAvailable(ctx, seeded.ID, 10)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.StockAvailable(ctx, seeded.ID, 11)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestServiceListLowStock(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, 5)
	ctx := context.Background()

	repo.seed(Product{Name: "Plenty", Price: 5, Stock: 50})
	low := repo.seed(Product{Name: "Dwindling", Price: 5, Stock: 3})
	repo.seed(Product{Name: "Gone", Price: 5, Stock: 0})

	products, total, err := svc.List(ctx, ListFilters{LowStock: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, low.ID, products[0].ID)
}
