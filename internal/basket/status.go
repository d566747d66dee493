package basket

import "fmt"

// Status tracks the basket lifecycle. The numeric codes match the values
// stored in the order_placed column.
type Status int

const (
	StatusActive     Status = 0 // open for modification
	StatusSubmitted  Status = 1 // submitted, awaiting checkout
	StatusCheckedOut Status = 2 // payment completed
	StatusProcessing Status = 3 // order being prepared
	StatusShipped    Status = 4
	StatusDelivered  Status = 5
	StatusCancelled  Status = 6
	StatusRefunded   Status = 7
)

// statusDescriptions is the single source for human-readable status names.
var statusDescriptions = map[Status]string{
	StatusActive:     "Active",
	StatusSubmitted:  "Submitted",
	StatusCheckedOut: "Checked Out",
	StatusProcessing: "Processing",
	StatusShipped:    "Shipped",
	StatusDelivered:  "Delivered",
	StatusCancelled:  "Cancelled",
	StatusRefunded:   "Refunded",
}

// statusTransitions is the single source for legal lifecycle moves.
var statusTransitions = map[Status][]Status{
	StatusActive:     {StatusSubmitted, StatusCancelled},
	StatusSubmitted:  {StatusCheckedOut, StatusCancelled, StatusActive},
	StatusCheckedOut: {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// StatusFromCode converts a stored numeric code into a Status.
func StatusFromCode(code int) (Status, error) {
	s := Status(code)
	if !s.IsValid() {
		return 0, fmt.Errorf("invalid basket status code: %d", code)
	}
	return s, nil
}

// IsValid reports whether the status is a known lifecycle state.
func (s Status) IsValid() bool {
	_, ok := statusDescriptions[s]
	return ok
}

// Description returns the human-readable status name.
func (s Status) Description() string {
	if d, ok := statusDescriptions[s]; ok {
		return d
	}
	return "Unknown"
}

func (s Status) String() string {
	return fmt.Sprintf("%s (%d)", s.Description(), int(s))
}

// NextPossible returns the statuses reachable from the current one.
func (s Status) NextPossible() []Status {
	return statusTransitions[s]
}

// CanTransitionTo reports whether moving to next is a legal lifecycle step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, candidate := range statusTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsOrdered reports whether the basket left the active state.
func (s Status) IsOrdered() bool {
	return s != StatusActive
}

// IsModifiable reports whether items may still change.
func (s Status) IsModifiable() bool {
	return s == StatusActive || s == StatusSubmitted
}

// IsInShipping reports whether the order is between preparation and delivery.
func (s Status) IsInShipping() bool {
	return s == StatusProcessing || s == StatusShipped
}

// IsCompleted reports whether the lifecycle reached a terminal state.
func (s Status) IsCompleted() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefunded
}

// CanCancel reports whether cancellation is a legal move from this status.
func (s Status) CanCancel() bool {
	return s.CanTransitionTo(StatusCancelled)
}
