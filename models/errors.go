package models

import "errors"

// Sentinel errors returned by the engine. Controllers map these to HTTP
// status codes; services wrap them with context via fmt.Errorf and %w.
var (
	// ErrUnauthenticated means no caller identity could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the resolved identity lacks the required role or capability.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the tenant, user, or request id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness constraint was violated (username, subdomain).
	ErrConflict = errors.New("conflict")

	// ErrBadRequest means required input was missing or malformed.
	ErrBadRequest = errors.New("bad request")
)
