package tax

type UpsertConfigurationRequest struct {
	State       string   `json:"state" validate:"required,len=2,uppercase"`
	Province    *string  `json:"province" validate:"omitempty,max=15"`
	Description *string  `json:"description"`
	Percentage  *float64 `json:"percentage" validate:"omitempty,gte=0,lte=100"`
	Rate        *float64 `json:"rate" validate:"omitempty,gte=0,lte=1"`
}

type CalculateRequest struct {
	State  string  `json:"state" validate:"required,len=2,uppercase"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

type ApplyRequest struct {
	State string `json:"state" validate:"required,len=2,uppercase"`
}

// Statistics summarises the configured rates.
type Statistics struct {
	Configurations int     `json:"configurations"`
	ActiveCount    int     `json:"active_count"`
	AverageRate    float64 `json:"average_rate"`
	MinRate        float64 `json:"min_rate"`
	MaxRate        float64 `json:"max_rate"`
}
