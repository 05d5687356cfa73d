package database

import "errors"

// Sentinel errors for the storage boundary. Anything else coming out of a
// repository is a transient storage failure: nothing partial was committed
// and the caller may retry the whole operation.
var (
	// ErrNotFound means a user or question reference does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidArgument means the request itself is malformed.
	ErrInvalidArgument = errors.New("invalid argument")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument reports whether err wraps ErrInvalidArgument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
