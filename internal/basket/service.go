package basket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bbbrewery/backend/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, shopperID int64) (*Basket, error) {
	exists, err := s.repo.ShopperExists(ctx, shopperID)
	if err != nil {
		return nil, fmt.Errorf("verify shopper: %w", err)
	}
	if !exists {
		return nil, ErrShopperNotFound
	}

	id, err := s.repo.Create(ctx, Basket{ShopperID: shopperID, Status: StatusActive})
	if err != nil {
		return nil, fmt.Errorf("create basket: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Basket, error) {
	return s.repo.GetWithItems(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Basket, int, error) {
	if filters.Limit <= 0 || filters.Limit > 200 {
		filters.Limit = 50
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) ActiveForShopper(ctx context.Context, shopperID int64) (*Basket, error) {
	return s.repo.ActiveForShopper(ctx, shopperID)
}

// ListAbandoned returns active baskets untouched for at least the given
// number of days.
func (s *Service) ListAbandoned(ctx context.Context, days int) ([]Basket, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	return s.repo.ListAbandoned(ctx, cutoff)
}

// AddItem puts a product in the basket, merging quantity into an existing
// line for the same product. The stock check holds a row lock until commit.
func (s *Service) AddItem(ctx context.Context, basketID int64, req AddItemRequest) (*Basket, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetWithItems(ctx, basketID)
		if err != nil {
			return err
		}
		if !b.Status.IsModifiable() {
			return ErrNotModifiable
		}

		product, err := repo.ProductForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if !product.Active {
			return fmt.Errorf("%w: %s", ErrProductInactive, product.Name)
		}

		wanted := req.Quantity
		existing := b.FindItem(req.ProductID)
		if existing != nil {
			wanted += existing.Quantity
		}
		if product.Stock < wanted {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
		}

		if existing != nil {
			if err := repo.UpdateItemQuantity(ctx, basketID, req.ProductID, wanted); err != nil {
				return err
			}
		} else {
			item := BasketItem{
				BasketID:  basketID,
				ProductID: req.ProductID,
				Price:     product.Price,
				Quantity:  req.Quantity,
				Option1:   req.Option1,
				Option2:   req.Option2,
				Size:      req.Size,
				Color:     req.Color,
			}
			if _, err := repo.AddItem(ctx, item); err != nil {
				return fmt.Errorf("add item: %w", err)
			}
		}

		return s.recomputeTotals(ctx, repo, basketID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetWithItems(ctx, basketID)
}

// UpdateItemQuantity sets a line's quantity. A quantity of zero or less
// removes the line.
func (s *Service) UpdateItemQuantity(ctx context.Context, basketID, productID int64, quantity int) (*Basket, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, basketID, productID)
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetWithItems(ctx, basketID)
		if err != nil {
			return err
		}
		if !b.Status.IsModifiable() {
			return ErrNotModifiable
		}
		if b.FindItem(productID) == nil {
			return ErrItemNotFound
		}

		product, err := repo.ProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product.Stock < quantity {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
		}

		if err := repo.UpdateItemQuantity(ctx, basketID, productID, quantity); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, repo, basketID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetWithItems(ctx, basketID)
}

func (s *Service) RemoveItem(ctx context.Context, basketID, productID int64) (*Basket, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		b, err := repo.Get(ctx, basketID)
		if err != nil {
			return err
		}
		if !b.Status.IsModifiable() {
			return ErrNotModifiable
		}
		if err := repo.RemoveItem(ctx, basketID, productID); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, repo, basketID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetWithItems(ctx, basketID)
}

func (s *Service) Clear(ctx context.Context, basketID int64) (*Basket, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		b, err := repo.Get(ctx, basketID)
		if err != nil {
			return err
		}
		if !b.Status.IsModifiable() {
			return ErrNotModifiable
		}
		if err := repo.ClearItems(ctx, basketID); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, repo, basketID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetWithItems(ctx, basketID)
}

// Checkout submits an active basket. Every line is re-checked against stock
// under a row lock and the stock is decremented in the same transaction, so
// two checkouts can never oversell a product.
func (s *Service) Checkout(ctx context.Context, basketID int64) (*Basket, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetWithItems(ctx, basketID)
		if err != nil {
			return err
		}
		if b.Status.IsOrdered() {
			return ErrAlreadyOrdered
		}
		if !b.Status.CanTransitionTo(StatusSubmitted) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, b.Status.Description(), StatusSubmitted.Description())
		}
		if b.IsEmpty() {
			return ErrEmptyBasket
		}

		for _, item := range b.Items {
			product, err := repo.ProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < item.Quantity {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}
			if err := repo.DecreaseProductStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, ErrInsufficientStock) {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
				}
				return err
			}
		}

		now := time.Now()
		return repo.UpdateStatus(ctx, basketID, StatusSubmitted, &now)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetWithItems(ctx, basketID)
}

// Cancel moves the basket to cancelled if the lifecycle allows it, returning
// any reserved stock to the catalog.
func (s *Service) Cancel(ctx context.Context, basketID int64) (*Basket, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetWithItems(ctx, basketID)
		if err != nil {
			return err
		}
		if !b.Status.CanCancel() {
			return fmt.Errorf("%w: cannot cancel a %s basket", ErrInvalidTransition, b.Status.Description())
		}

		// Stock was taken at checkout; give it back for ordered baskets.
		if b.Status.IsOrdered() {
			for _, item := range b.Items {
				if err := repo.IncreaseProductStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		return repo.UpdateStatus(ctx, basketID, StatusCancelled, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetWithItems(ctx, basketID)
}

// UpdateStatus applies a lifecycle transition after checking it against the
// transition table. Reverting a submitted basket to active also returns the
// stock taken at checkout.
func (s *Service) UpdateStatus(ctx context.Context, basketID int64, next Status) (*Basket, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %d", ErrInvalidTransition, int(next))
	}
	if next == StatusCancelled {
		return s.Cancel(ctx, basketID)
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetWithItems(ctx, basketID)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, b.Status.Description(), next.Description())
		}

		if b.Status == StatusSubmitted && next == StatusActive {
			for _, item := range b.Items {
				if err := repo.IncreaseProductStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		return repo.UpdateStatus(ctx, basketID, next, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetWithItems(ctx, basketID)
}

// SetTax records the tax charge on the basket and refreshes the total.
func (s *Service) SetTax(ctx context.Context, basketID int64, amount float64) (*Basket, error) {
	return s.setCharge(ctx, basketID, func(b *Basket) {
		b.Tax = shared.Round2(amount)
	})
}

// SetShipping records the shipping charge on the basket and refreshes the
// total.
func (s *Service) SetShipping(ctx context.Context, basketID int64, amount float64) (*Basket, error) {
	return s.setCharge(ctx, basketID, func(b *Basket) {
		b.Shipping = shared.Round2(amount)
	})
}

func (s *Service) setCharge(ctx context.Context, basketID int64, apply func(*Basket)) (*Basket, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetWithItems(ctx, basketID)
		if err != nil {
			return err
		}
		if b.Status.IsCompleted() {
			return ErrNotModifiable
		}
		apply(b)
		b.RecomputeTotals()
		return repo.UpdateCharges(ctx, basketID, b.Tax, b.Shipping, b.Total)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetWithItems(ctx, basketID)
}

func (s *Service) UpdateShippingAddress(ctx context.Context, basketID int64, req ShippingAddressRequest) (*Basket, error) {
	b, err := s.repo.Get(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if b.Status.IsCompleted() {
		return nil, ErrNotModifiable
	}
	addr := ShippingAddress{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address1:  req.Address1,
		Address2:  req.Address2,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Country:   req.Country,
		Phone:     req.Phone,
		Email:     req.Email,
	}
	if err := s.repo.UpdateShippingAddress(ctx, basketID, addr); err != nil {
		return nil, err
	}
	return s.repo.GetWithItems(ctx, basketID)
}

// Counts returns the number of lines and the total unit quantity.
func (s *Service) Counts(ctx context.Context, basketID int64) (items int, quantity int, err error) {
	b, err := s.repo.GetWithItems(ctx, basketID)
	if err != nil {
		return 0, 0, err
	}
	return b.ItemCount(), b.TotalQuantity(), nil
}

// Delete removes a basket that never became an order.
func (s *Service) Delete(ctx context.Context, basketID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		b, err := repo.Get(ctx, basketID)
		if err != nil {
			return err
		}
		if b.Status.IsOrdered() {
			return ErrAlreadyOrdered
		}
		if err := repo.ClearItems(ctx, basketID); err != nil {
			return err
		}
		return repo.Delete(ctx, basketID)
	})
}

// recomputeTotals rereads the items and persists the derived totals. Must be
// called inside a transaction so the read and write stay consistent.
func (s *Service) recomputeTotals(ctx context.Context, repo Repository, basketID int64) error {
	b, err := repo.GetWithItems(ctx, basketID)
	if err != nil {
		return err
	}
	b.RecomputeTotals()
	return repo.UpdateTotals(ctx, basketID, b.Quantity, b.Subtotal, b.Total)
}
