package array

import "errors"

var (
	// ErrAllocFailed indicates the backing arena could not satisfy a
	// reservation request.
	ErrAllocFailed = errors.New("array: failed to allocate")
)
