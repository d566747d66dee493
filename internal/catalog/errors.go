package catalog

import "errors"

var (
	ErrValidation        = errors.New("invalid product")
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateName     = errors.New("product name already exists")
	ErrInvalidSaleWindow = errors.New("sale window end must be after its start")
)
