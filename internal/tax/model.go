// Package tax manages per-state sales tax configuration and the taxes
// applied to baskets.
package tax

import (
	"time"

	"github.com/bbbrewery/backend/internal/shared"
)

// RateConfiguration is the tax setup for one state. Rate and Percentage are
// two renderings of the same value: rate 0.045 is percentage 4.5.
type RateConfiguration struct {
	ID          int64     `json:"id"`
	State       string    `json:"state"`
	Province    *string   `json:"province,omitempty"`
	Description *string   `json:"description,omitempty"`
	Rate        float64   `json:"rate"`
	Percentage  float64   `json:"percentage"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AppliedTax records a tax charge applied to a basket, frozen at the rate in
// force at the time.
type AppliedTax struct {
	ID        int64     `json:"id"`
	BasketID  int64     `json:"basket_id"`
	State     string    `json:"state"`
	Rate      float64   `json:"rate"`
	Amount    float64   `json:"amount"`
	AppliedAt time.Time `json:"applied_at"`
}

// stateNames maps the two-letter code to the display name used on invoices.
var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

// StateName returns the display name for a state code, or the code itself
// when unknown.
func StateName(code string) string {
	if name, ok := stateNames[code]; ok {
		return name
	}
	return code
}

// KnownState reports whether the code names a supported state.
func KnownState(code string) bool {
	_, ok := stateNames[code]
	return ok
}

// PercentToRate converts a display percentage to a decimal rate, 4 places
// half-up. 4.5 becomes 0.045.
func PercentToRate(percentage float64) float64 {
	return shared.Round4(percentage / 100)
}

// RateToPercent converts a decimal rate to a display percentage, 2 places
// half-up. 0.045 becomes 4.5.
func RateToPercent(rate float64) float64 {
	return shared.Round2(rate * 100)
}

// TaxFor computes the tax the configuration levies on an amount, rounded to
// cents half-up.
func (c RateConfiguration) TaxFor(amount float64) float64 {
	return shared.Round2(amount * c.Rate)
}
