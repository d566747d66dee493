package reports

import "errors"

var (
	ErrShopperNotFound = errors.New("shopper not found")
	ErrInvalidPeriod   = errors.New("period must be day, month or year")
	ErrInvalidWindow   = errors.New("invalid reporting window")
)
