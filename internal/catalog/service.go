package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	repo              Repository
	lowStockThreshold int
}

func NewService(repo Repository, lowStockThreshold int) *Service {
	return &Service{
		repo:              repo,
		lowStockThreshold: lowStockThreshold,
	}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	if filters.Limit <= 0 || filters.Limit > 200 {
		filters.Limit = 50
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	filters.LowStockThreshold = s.lowStockThreshold
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*Product, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	product := Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      req.Active,
		SalePrice:   req.SalePrice,
		SaleStart:   req.SaleStart,
		SaleEnd:     req.SaleEnd,
		Category:    req.Category,
		Type:        req.Type,
		ImageURL:    req.ImageURL,
	}
	if err := s.validate(product); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	product := Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      req.Active,
		SalePrice:   req.SalePrice,
		SaleStart:   req.SaleStart,
		SaleEnd:     req.SaleEnd,
		Category:    req.Category,
		Type:        req.Type,
		ImageURL:    req.ImageURL,
	}
	if err := s.validate(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, product); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateDescription(ctx context.Context, id int64, description string) (*Product, error) {
	if err := s.repo.UpdateDescription(ctx, id, description); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) DecreaseStock(ctx context.Context, id int64, quantity int) (*Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrValidation, quantity)
	}
	if err := s.repo.DecreaseStock(ctx, id, quantity); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) IncreaseStock(ctx context.Context, id int64, quantity int) (*Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrValidation, quantity)
	}
	if err := s.repo.IncreaseStock(ctx, id, quantity); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) StockAvailable(ctx context.Context, id int64, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, fmt.Errorf("%w: quantity must be positive, got %d", ErrValidation, quantity)
	}
	return s.repo.StockAvailable(ctx, id, quantity)
}

func (s *Service) IsOnSale(ctx context.Context, id int64) (bool, error) {
	return s.repo.IsOnSale(ctx, id)
}

func (s *Service) CurrentPrice(ctx context.Context, id int64) (float64, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return product.CurrentPrice(time.Now()), nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// LowStockThreshold exposes the configured threshold for reporting.
func (s *Service) LowStockThreshold() int {
	return s.lowStockThreshold
}

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(p.Name) > 25 {
		return fmt.Errorf("%w: name must be at most 25 characters", ErrValidation)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	if p.SaleStart != nil && p.SaleEnd != nil && !p.SaleEnd.After(*p.SaleStart) {
		return ErrInvalidSaleWindow
	}
	return nil
}
