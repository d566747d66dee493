package shopper

import "errors"

var (
	ErrNotFound       = errors.New("shopper not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrHasBaskets     = errors.New("shopper has baskets and cannot be deleted")
	ErrValidation     = errors.New("shopper validation failed")
)
