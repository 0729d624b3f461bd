package config

import "errors"

// Validation errors returned by [ClientConfig.validate] and
// [DevServerConfig.validate] when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid gateway settings
	// (for example, missing address without the stub, or zero timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid client storage settings
	// (for example, empty DSN or an in-memory DSN instead of the ephemeral
	// switch).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidStubConfigs indicates a stub backend without a token
	// signing key.
	ErrInvalidStubConfigs = errors.New("invalid stub configuration")
	// ErrInvalidSyncConfigs indicates a non-positive send budget or
	// negative intervals.
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidServerConfigs indicates a dev server without a listen
	// address or timeout.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
)
