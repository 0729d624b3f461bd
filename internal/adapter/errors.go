package adapter

import "errors"

var (
	// ErrUnauthorized means the token was rejected. The session is over.
	ErrUnauthorized = errors.New("client unauthorized")
	// ErrInvalidCode means the one-time code was rejected.
	ErrInvalidCode = errors.New("invalid one-time code")
	// ErrIdentityNotFound means the verified phone handle has no profile yet.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrBadRequest means the backend rejected the request payload.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound means the addressed resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the request clashes with existing state, e.g. a
	// username that is already taken.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable means the backend could not be reached or is
	// temporarily unable to serve.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrInternalServerError means the backend failed to process the request.
	ErrInternalServerError = errors.New("internal server error")
)

// IsTransient reports whether a failed call may succeed when repeated.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrInternalServerError)
}
