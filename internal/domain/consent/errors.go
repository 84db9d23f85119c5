package consent

import "errors"

var (
	ErrMissingParameters = errors.New("tenant, user and purpose are required")
	ErrNotFound          = errors.New("consent not found")
	ErrRevoked           = errors.New("consent revoked")
	ErrDenied            = errors.New("consent denied")
)
