package records

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("record not found")
	ErrValidation       = errors.New("validation error")
	ErrNetwork          = errors.New("network error")
)
