package checklist

import (
	"encoding/json"
)

// Priority is the weight class of an item.
type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityLow  Priority = "low"
)

// AllPriorities returns all valid priorities.
func AllPriorities() []Priority {
	return []Priority{PriorityHigh, PriorityLow}
}

// IsValid returns true if the priority is one of the known values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityLow:
		return true
	default:
		return false
	}
}

// IsHigh returns true for high priority items.
func (p Priority) IsHigh() bool {
	return p == PriorityHigh
}

// Normalize maps anything that is not high to low, which is how scoring treats it.
func (p Priority) Normalize() Priority {
	if p.IsHigh() {
		return PriorityHigh
	}
	return PriorityLow
}

// Weight returns the maximum points for the priority: 2 for high, 1 otherwise.
func (p Priority) Weight() float64 {
	if p.IsHigh() {
		return 2
	}
	return 1
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// DisplayName returns a human-readable display name for the priority.
func (p Priority) DisplayName() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityLow:
		return "Low"
	default:
		return string(p)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
// Unknown values are kept verbatim; definitions are not schema-checked beyond what scoring needs.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*p = PriorityLow
		return nil
	}
	*p = Priority(str)
	return nil
}
