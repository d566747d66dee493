package basket

import "time"

type CreateBasketRequest struct {
	ShopperID int64 `json:"shopper_id" validate:"required,gt=0"`
}

type AddItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Option1   *int    `json:"option1"`
	Option2   *int    `json:"option2"`
	Size      *string `json:"size"`
	Color     *string `json:"color"`
}

// UpdateItemQuantityRequest carries the new line quantity; zero removes the
// line.
type UpdateItemQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

type UpdateStatusRequest struct {
	Status *int `json:"status" validate:"required,gte=0,lte=7"`
}

type ChargeRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
}

type ShippingAddressRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Address1  string  `json:"address1" validate:"required"`
	Address2  *string `json:"address2"`
	City      string  `json:"city" validate:"required"`
	State     string  `json:"state" validate:"required"`
	Zip       string  `json:"zip" validate:"required"`
	Country   string  `json:"country" validate:"required"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

// ListFilters narrows basket listings. Nil fields mean "no filter".
type ListFilters struct {
	ShopperID   *int64
	Status      *Status
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	OrderedFrom *time.Time
	OrderedTo   *time.Time
	MinTotal    *float64
	Page        int
	Limit       int
}
