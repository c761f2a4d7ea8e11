package blog

import (
	"errors"

	"blog-api/access"
)

var (
	// ErrNotFound is also returned for private posts the requester may not
	// read, so their existence is not revealed.
	ErrNotFound        = errors.New("blog not found")
	ErrForbidden       = access.ErrForbidden
	ErrUnauthenticated = access.ErrUnauthenticated
)

// ValidationError rejects a request before anything is uploaded or stored.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UpstreamError wraps a failure of the store or the media host. Op is
// "store" or "media".
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}
