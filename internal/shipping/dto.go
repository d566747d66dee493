package shipping

type UpsertRateRequest struct {
	Method      string  `json:"method" validate:"required"`
	LowWeight   float64 `json:"low_weight" validate:"gte=0"`
	HighWeight  float64 `json:"high_weight" validate:"gt=0"`
	Cost        float64 `json:"cost" validate:"gte=0"`
	HandlingFee float64 `json:"handling_fee" validate:"gte=0"`
}

type CalculateCostRequest struct {
	Method string  `json:"method" validate:"required"`
	Weight float64 `json:"weight" validate:"gt=0"`
}

type CreateShipmentRequest struct {
	BasketID       int64   `json:"basket_id" validate:"required,gt=0"`
	Method         string  `json:"method" validate:"required"`
	Weight         float64 `json:"weight" validate:"gt=0"`
	TrackingNumber string  `json:"tracking_number"`
}

type UpdateShipmentStatusRequest struct {
	Status *int `json:"status" validate:"required,gte=1,lte=6"`
}
