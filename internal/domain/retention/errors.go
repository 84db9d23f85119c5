package retention

import "errors"

var (
	ErrMissingParameters = errors.New("tenant and category are required")
	ErrExceedsCeiling    = errors.New("retention exceeds legal ceiling")
	ErrBelowFloor        = errors.New("retention below legal floor")
	ErrForbiddenCategory = errors.New("category may not be auto-purged")
	ErrUnknownCategory   = errors.New("unknown data category")
	ErrNoRuleForCategory = errors.New("policy has no rule for category")
	ErrInvalidRetention  = errors.New("retention days must be positive")
)
