package domain

import "errors"

// ErrInvalidInput is returned for caller mistakes such as a blank query or an
// out-of-range target count.
var ErrInvalidInput = errors.New("invalid input")
