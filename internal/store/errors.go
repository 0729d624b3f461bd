package store

import "errors"

// Sentinel errors returned by [KeyValueStore] implementations. Callers match
// them with [errors.Is].
var (
	// ErrKeyNotFound is returned by Get when nothing is stored under the key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrEmptyKey is returned when an operation is called with an empty key.
	ErrEmptyKey = errors.New("empty key")

	// ErrSealedValueCorrupted is returned by the sealed store when a stored
	// value cannot be authenticated with the configured secret.
	ErrSealedValueCorrupted = errors.New("sealed value is corrupted or was sealed with another secret")

	// ErrEmptySealSecret is returned when a sealed store is requested without
	// a secret.
	ErrEmptySealSecret = errors.New("empty seal secret")
)

// Low-level database operation errors, wrapped by the SQLite store.
var (
	// ErrBuildingSQLQuery is returned when squirrel fails to render a query.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when an INSERT or DELETE fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when a result row cannot be scanned.
	ErrScanningRow = errors.New("failed to scan row")
)
