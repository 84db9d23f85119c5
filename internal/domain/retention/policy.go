package retention

import "fmt"

// Policy maps data categories to retention windows in days.
type Policy struct {
	Rules map[string]int `json:"rules"`
}

// ValidatePolicy rejects rules outside the legal envelope and any attempt to
// schedule a forbidden category for automatic deletion.
func ValidatePolicy(policy Policy) error {
	for category, days := range policy.Rules {
		if forbiddenCategories[category] {
			return fmt.Errorf("%s: %w", category, ErrForbiddenCategory)
		}
		limits, ok := legalBounds[category]
		if !ok {
			return fmt.Errorf("%s: %w", category, ErrUnknownCategory)
		}
		if days <= 0 {
			return fmt.Errorf("%s: %w", category, ErrInvalidRetention)
		}
		if limits.floor > 0 && days < limits.floor {
			return fmt.Errorf("%s: %d days: %w", category, days, ErrBelowFloor)
		}
		if limits.ceiling > 0 && days > limits.ceiling {
			return fmt.Errorf("%s: %d days: %w", category, days, ErrExceedsCeiling)
		}
	}
	return nil
}
