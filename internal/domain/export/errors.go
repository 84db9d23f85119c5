package export

import "errors"

var (
	ErrMissingParameters = errors.New("tenant and user are required")
	ErrNotOwned          = errors.New("export not owned by requester")
	ErrExpired           = errors.New("export expired")
	ErrLimitReached      = errors.New("export download limit reached")
)
