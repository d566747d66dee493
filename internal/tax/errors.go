package tax

import "errors"

var (
	ErrNotFound        = errors.New("tax configuration not found")
	ErrNoConfiguration = errors.New("no active tax configuration for state")
	ErrAppliedNotFound = errors.New("applied tax not found")
	ErrBasketNotFound  = errors.New("basket not found")
	ErrValidation      = errors.New("invalid tax configuration")
)
