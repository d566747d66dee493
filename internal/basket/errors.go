package basket

import "errors"

var (
	ErrNotFound          = errors.New("basket not found")
	ErrShopperNotFound   = errors.New("shopper not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is not available")
	ErrItemNotFound      = errors.New("item not in basket")
	ErrEmptyBasket       = errors.New("basket has no items")
	ErrAlreadyOrdered    = errors.New("basket has already been ordered")
	ErrNotModifiable     = errors.New("basket can no longer be modified")
	ErrInvalidTransition = errors.New("invalid basket status transition")
	ErrInsufficientStock = errors.New("insufficient stock")
)
