package shipping

import "errors"

var (
	ErrRateNotFound     = errors.New("shipping rate not found")
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrBasketNotFound   = errors.New("basket not found")
	ErrUnknownMethod    = errors.New("unknown shipping method")
	ErrInvalidRange     = errors.New("invalid weight range")
	ErrOverlappingRange = errors.New("weight range overlaps an existing rate")
	ErrInvalidStatus    = errors.New("invalid shipment status change")
)
