package playlists

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a referenced playlist or song does not exist.
	ErrNotFound = errors.New("playlists: not found")
	// ErrForbidden indicates that the caller lacks the required relationship
	// (owner, or owner-or-collaborator) to the playlist.
	ErrForbidden = errors.New("playlists: forbidden")
	// ErrInvariant indicates that a write which should have affected exactly
	// one row affected zero.
	ErrInvariant = errors.New("playlists: invariant violated")
)

// ServiceError carries a dotted operation.reason code alongside the cause so
// callers can branch on the error kind with errors.Is while logs keep the code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}
