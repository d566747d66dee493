package shopper

type CreateShopperRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=15"`
	LastName  string  `json:"last_name" validate:"required,max=20"`
	Email     *string `json:"email" validate:"omitempty,email,max=25"`
	Phone     *string `json:"phone" validate:"omitempty,max=10"`
	Address   *string `json:"address" validate:"omitempty,max=20"`
	City      *string `json:"city" validate:"omitempty,max=15"`
	State     *string `json:"state" validate:"omitempty,len=2"`
	ZipCode   *string `json:"zip_code" validate:"omitempty,max=9"`
	Province  *string `json:"province" validate:"omitempty,max=15"`
	Country   *string `json:"country" validate:"omitempty,max=15"`
	Cookie    *int    `json:"cookie"`
}

type UpdateShopperRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=15"`
	LastName  string  `json:"last_name" validate:"required,max=20"`
	Email     *string `json:"email" validate:"omitempty,email,max=25"`
	Phone     *string `json:"phone" validate:"omitempty,max=10"`
	Address   *string `json:"address" validate:"omitempty,max=20"`
	City      *string `json:"city" validate:"omitempty,max=15"`
	State     *string `json:"state" validate:"omitempty,len=2"`
	ZipCode   *string `json:"zip_code" validate:"omitempty,max=9"`
	Province  *string `json:"province" validate:"omitempty,max=15"`
	Country   *string `json:"country" validate:"omitempty,max=15"`
	Cookie    *int    `json:"cookie"`
}

// ListFilters narrows the shopper listing. Search matches first or last name.
type ListFilters struct {
	Search  string
	City    string
	State   string
	Country string
	ZipCode string
}

// StateCount is one row of the shoppers-per-state roll-up.
type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}
