package catalog

import "time"

type CreateProductRequest struct {
	Name        string     `json:"name" validate:"required,max=25"`
	Description *string    `json:"description"`
	Price       float64    `json:"price" validate:"required,gt=0"`
	Stock       int        `json:"stock" validate:"gte=0"`
	Active      bool       `json:"active"`
	SalePrice   *float64   `json:"sale_price" validate:"omitempty,gt=0"`
	SaleStart   *time.Time `json:"sale_start"`
	SaleEnd     *time.Time `json:"sale_end"`
	Category    *string    `json:"category"`
	Type        *string    `json:"type" validate:"omitempty,len=1"`
	ImageURL    *string    `json:"image_url" validate:"omitempty,url"`
}

type UpdateProductRequest struct {
	Name        string     `json:"name" validate:"required,max=25"`
	Description *string    `json:"description"`
	Price       float64    `json:"price" validate:"required,gt=0"`
	Stock       int        `json:"stock" validate:"gte=0"`
	Active      bool       `json:"active"`
	SalePrice   *float64   `json:"sale_price" validate:"omitempty,gt=0"`
	SaleStart   *time.Time `json:"sale_start"`
	SaleEnd     *time.Time `json:"sale_end"`
	Category    *string    `json:"category"`
	Type        *string    `json:"type" validate:"omitempty,len=1"`
	ImageURL    *string    `json:"image_url" validate:"omitempty,url"`
}

type UpdateDescriptionRequest struct {
	Description string `json:"description" validate:"required"`
}

type StockAdjustmentRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// ListFilters narrows product listings. Zero values mean "no filter".
type ListFilters struct {
	Category   string
	Type       string
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	Active     *bool
	OnSale     bool
	InStock    bool
	OutOfStock bool
	LowStock   bool
	// LowStockThreshold is filled in by the service from configuration.
	LowStockThreshold int
	SortBy            string
	SortDir    string
	Page       int
	Limit      int
}
