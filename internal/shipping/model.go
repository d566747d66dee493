// Package shipping manages shipping rates by weight bracket and the
// shipments created for placed orders.
package shipping

import (
	"strings"
	"time"

	"github.com/bbbrewery/backend/internal/shared"
)

// MethodStandard is the method used to price shipments whose requested
// method is not recognized.
const MethodStandard = "standard"

// Rate prices one weight bracket for a shipping method. A weight matches the
// bracket when LowWeight <= weight <= HighWeight.
type Rate struct {
	ID          int64     `json:"id"`
	Method      string    `json:"method"`
	LowWeight   float64   `json:"low_weight"`
	HighWeight  float64   `json:"high_weight"`
	Cost        float64   `json:"cost"`
	HandlingFee float64   `json:"handling_fee"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TotalCost is the shipping charge for the bracket: the bracket cost, or the
// handling fee when no cost is set.
func (r Rate) TotalCost() float64 {
	if r.Cost != 0 {
		return shared.Round2(r.Cost)
	}
	return shared.Round2(r.HandlingFee)
}

// Covers reports whether the weight falls in the bracket. Both bounds are
// inclusive; when adjacent brackets share a boundary the narrower one wins.
func (r Rate) Covers(weight float64) bool {
	return weight >= r.LowWeight && weight <= r.HighWeight
}

// Span is the width of the bracket, used to pick the most specific match.
func (r Rate) Span() float64 {
	return r.HighWeight - r.LowWeight
}

// ShipmentStatus tracks a shipment. The numeric codes match the values
// stored in the status column.
type ShipmentStatus int

const (
	ShipmentPending    ShipmentStatus = 1
	ShipmentProcessing ShipmentStatus = 2
	ShipmentShipped    ShipmentStatus = 3
	ShipmentInTransit  ShipmentStatus = 4
	ShipmentDelivered  ShipmentStatus = 5
	ShipmentCancelled  ShipmentStatus = 6
)

// shipmentStatusDescriptions is the single source for status names.
var shipmentStatusDescriptions = map[ShipmentStatus]string{
	ShipmentPending:    "Pending",
	ShipmentProcessing: "Processing",
	ShipmentShipped:    "Shipped",
	ShipmentInTransit:  "In Transit",
	ShipmentDelivered:  "Delivered",
	ShipmentCancelled:  "Cancelled",
}

// IsValid reports whether the status is a known code.
func (s ShipmentStatus) IsValid() bool {
	_, ok := shipmentStatusDescriptions[s]
	return ok
}

// Description returns the human-readable status name.
func (s ShipmentStatus) Description() string {
	if d, ok := shipmentStatusDescriptions[s]; ok {
		return d
	}
	return "Unknown"
}

// IsOpen reports whether the shipment is still moving.
func (s ShipmentStatus) IsOpen() bool {
	return s != ShipmentDelivered && s != ShipmentCancelled
}

// Shipment is a physical delivery for a placed order.
type Shipment struct {
	ID                int64          `json:"id"`
	BasketID          int64          `json:"basket_id"`
	Method            string         `json:"method"`
	TrackingNumber    string         `json:"tracking_number"`
	Status            ShipmentStatus `json:"status"`
	Cost              float64        `json:"cost"`
	Weight            float64        `json:"weight"`
	EstimatedDelivery *time.Time     `json:"estimated_delivery,omitempty"`
	ShippedAt         *time.Time     `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// methodDefaults is the single source for fallback costs when no rate
// bracket covers a weight.
var methodDefaults = map[string]float64{
	"standard":  8.00,
	"priority":  12.00,
	"express":   15.00,
	"overnight": 25.00,
}

// methodDeliveryDays is the single source for estimated delivery times.
var methodDeliveryDays = map[string]int{
	"standard":  7,
	"priority":  2,
	"express":   3,
	"overnight": 1,
}

const defaultDeliveryDays = 5

// Methods lists the supported shipping methods.
func Methods() []string {
	return []string{"standard", "priority", "express", "overnight"}
}

// KnownMethod reports whether the method is supported. Matching is
// case-insensitive.
func KnownMethod(method string) bool {
	_, ok := methodDefaults[strings.ToLower(method)]
	return ok
}

// DefaultCost returns the fallback charge for a method.
func DefaultCost(method string) (float64, bool) {
	cost, ok := methodDefaults[strings.ToLower(method)]
	return cost, ok
}

// DeliveryDays returns the estimated days in transit for a method.
func DeliveryDays(method string) int {
	if days, ok := methodDeliveryDays[strings.ToLower(method)]; ok {
		return days
	}
	return defaultDeliveryDays
}
