package shopper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Shopper, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Shopper, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Shopper, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Create registers a shopper. An email, when present, must not already be
// registered; the match is case-insensitive.
func (s *Service) Create(ctx context.Context, req CreateShopperRequest) (*Shopper, error) {
	shopper := fromRequest(req.FirstName, req.LastName, req.Email, req.Phone, req.Address,
		req.City, req.State, req.ZipCode, req.Province, req.Country, req.Cookie)
	if err := s.validate(shopper); err != nil {
		return nil, err
	}
	if shopper.Email != nil {
		if _, err := s.repo.GetByEmail(ctx, *shopper.Email); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, *shopper.Email)
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return s.repo.Create(ctx, shopper)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateShopperRequest) (*Shopper, error) {
	shopper := fromRequest(req.FirstName, req.LastName, req.Email, req.Phone, req.Address,
		req.City, req.State, req.ZipCode, req.Province, req.Country, req.Cookie)
	if err := s.validate(shopper); err != nil {
		return nil, err
	}
	if shopper.Email != nil {
		existing, err := s.repo.GetByEmail(ctx, *shopper.Email)
		if err == nil && existing.ID != id {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, *shopper.Email)
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, id, shopper); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a shopper. Shoppers with baskets are never deleted; their
// order history must survive them.
func (s *Service) Delete(ctx context.Context, id int64) error {
	has, err := s.repo.HasBaskets(ctx, id)
	if err != nil {
		return fmt.Errorf("check baskets: %w", err)
	}
	if has {
		return ErrHasBaskets
	}
	return s.repo.Delete(ctx, id)
}

// RecordVisit stamps the shopper's last-visit time.
func (s *Service) RecordVisit(ctx context.Context, id int64) (*Shopper, error) {
	if err := s.repo.RecordVisit(ctx, id, time.Now()); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Shopper, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.Recent(ctx, limit)
}

// Inactive lists shoppers whose last visit is older than the given number of
// days.
func (s *Service) Inactive(ctx context.Context, days int) ([]Shopper, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	return s.repo.InactiveSince(ctx, cutoff)
}

func (s *Service) CountByState(ctx context.Context) ([]StateCount, error) {
	return s.repo.CountByState(ctx)
}

// TotalPurchases sums the totals of the shopper's ordered baskets.
func (s *Service) TotalPurchases(ctx context.Context, id int64) (float64, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return 0, err
	}
	return s.repo.TotalPurchases(ctx, id)
}

func (s *Service) validate(sh Shopper) error {
	if strings.TrimSpace(sh.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", ErrValidation)
	}
	if strings.TrimSpace(sh.LastName) == "" {
		return fmt.Errorf("%w: last name is required", ErrValidation)
	}
	if sh.State != nil && len(*sh.State) != 2 {
		return fmt.Errorf("%w: state must be a two-letter code", ErrValidation)
	}
	return nil
}

func fromRequest(firstName, lastName string, email, phone, address, city, state, zipCode, province, country *string, cookie *int) Shopper {
	sh := Shopper{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     email,
		Phone:     phone,
		Address:   address,
		City:      city,
		State:     state,
		ZipCode:   zipCode,
		Province:  province,
		Country:   country,
		Cookie:    cookie,
	}
	if sh.State != nil {
		upper := strings.ToUpper(strings.TrimSpace(*sh.State))
		sh.State = &upper
	}
	return sh
}
