package tax

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bbbrewery/backend/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateOrUpdateConfiguration upserts the single configuration for a state.
// Callers may supply either the percentage or the decimal rate; the other
// rendering is derived so the two never drift apart.
func (s *Service) CreateOrUpdateConfiguration(ctx context.Context, req UpsertConfigurationRequest) (*RateConfiguration, error) {
	state := strings.ToUpper(strings.TrimSpace(req.State))
	if !KnownState(state) {
		return nil, fmt.Errorf("%w: unknown state %q", ErrValidation, req.State)
	}

	var rate, percentage float64
	switch {
	case req.Rate != nil:
		rate = shared.Round4(*req.Rate)
		percentage = RateToPercent(rate)
	case req.Percentage != nil:
		percentage = shared.Round2(*req.Percentage)
		rate = PercentToRate(percentage)
	default:
		return nil, fmt.Errorf("%w: rate or percentage is required", ErrValidation)
	}

	// An upserted configuration always comes back active; deactivation goes
	// through SetActive.
	return s.repo.Upsert(ctx, RateConfiguration{
		State:       state,
		Province:    req.Province,
		Description: req.Description,
		Rate:        rate,
		Percentage:  percentage,
		Active:      true,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (*RateConfiguration, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByState(ctx context.Context, state string) (*RateConfiguration, error) {
	return s.repo.GetByState(ctx, strings.ToUpper(state))
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]RateConfiguration, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) ListByRateRange(ctx context.Context, min, max float64) ([]RateConfiguration, error) {
	if min > max {
		return nil, fmt.Errorf("%w: rate range is inverted", ErrValidation)
	}
	return s.repo.ListByRateRange(ctx, min, max)
}

func (s *Service) SearchByDescription(ctx context.Context, term string) ([]RateConfiguration, error) {
	return s.repo.SearchByDescription(ctx, term)
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*RateConfiguration, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx)
}

func (s *Service) States(ctx context.Context) ([]string, error) {
	return s.repo.States(ctx)
}

// CalculateTax computes the tax for a state. A state without an active
// configuration is tax free.
func (s *Service) CalculateTax(ctx context.Context, state string, amount float64) (float64, error) {
	config, err := s.repo.ActiveByState(ctx, strings.ToUpper(state))
	if err != nil {
		if errors.Is(err, ErrNoConfiguration) {
			return 0, nil
		}
		return 0, err
	}
	return config.TaxFor(amount), nil
}

// CalculateTotalWithTax returns the amount plus the tax for the state.
func (s *Service) CalculateTotalWithTax(ctx context.Context, state string, amount float64) (float64, error) {
	tax, err := s.CalculateTax(ctx, state, amount)
	if err != nil {
		return 0, err
	}
	return shared.Round2(amount + tax), nil
}

// ApplyToBasket charges the state's tax against the basket subtotal,
// records the applied tax and refreshes the basket totals. Unlike
// CalculateTax it refuses states without an active configuration, because
// applying a zero charge would silently mask a setup mistake.
func (s *Service) ApplyToBasket(ctx context.Context, basketID int64, state string) (*AppliedTax, error) {
	state = strings.ToUpper(strings.TrimSpace(state))

	var applied *AppliedTax
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		config, err := repo.ActiveByState(ctx, state)
		if err != nil {
			return err
		}

		charges, err := repo.BasketCharges(ctx, basketID)
		if err != nil {
			return err
		}

		amount := config.TaxFor(charges.Subtotal)
		id, err := repo.InsertApplied(ctx, AppliedTax{
			BasketID: basketID,
			State:    config.State,
			Rate:     config.Rate,
			Amount:   amount,
		})
		if err != nil {
			return fmt.Errorf("record applied tax: %w", err)
		}

		newTax, err := repo.TotalApplied(ctx, basketID)
		if err != nil {
			return err
		}
		total := shared.Round2(charges.Subtotal + newTax + charges.Shipping)
		if err := repo.UpdateBasketTax(ctx, basketID, newTax, total); err != nil {
			return err
		}

		applied = &AppliedTax{
			ID:       id,
			BasketID: basketID,
			State:    config.State,
			Rate:     config.Rate,
			Amount:   amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

func (s *Service) ListApplied(ctx context.Context, basketID int64) ([]AppliedTax, error) {
	return s.repo.ListApplied(ctx, basketID)
}

func (s *Service) TotalApplied(ctx context.Context, basketID int64) (float64, error) {
	return s.repo.TotalApplied(ctx, basketID)
}

// RemoveApplied deletes one applied tax and refreshes the basket totals.
func (s *Service) RemoveApplied(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		removed, err := repo.DeleteApplied(ctx, id)
		if err != nil {
			return err
		}
		charges, err := repo.BasketCharges(ctx, removed.BasketID)
		if err != nil {
			return err
		}
		newTax, err := repo.TotalApplied(ctx, removed.BasketID)
		if err != nil {
			return err
		}
		total := shared.Round2(charges.Subtotal + newTax + charges.Shipping)
		return repo.UpdateBasketTax(ctx, removed.BasketID, newTax, total)
	})
}
