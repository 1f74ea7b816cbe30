package types

import "errors"

// Precondition failures shared by the operator packages. Callers match them
// with errors.Is; the concrete error carries the offending sizes.
var (
	ErrSizeMismatch      = errors.New("size mismatch")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidReference  = errors.New("invalid reference")
	ErrSingularBlock     = errors.New("singular diagonal in element block")
)
