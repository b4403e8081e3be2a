package domain

import "errors"

var (
	// ErrNoSession indicates an operation that needs an authenticated actor
	// was attempted without one.
	ErrNoSession = errors.New("no active session")

	// ErrInvalidCredentials covers malformed or rejected login input.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired indicates the backend rejected the access token.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoCredentials indicates nothing usable is persisted locally.
	ErrNoCredentials = errors.New("no persisted credentials")

	// ErrBackendUnavailable wraps transport-level failures reaching the
	// marketplace API.
	ErrBackendUnavailable = errors.New("marketplace backend unavailable")

	ErrNotificationNotFound = errors.New("notification not found")

	// ErrResetNotAllowed indicates a workflow reset was requested from a
	// status other than rejected.
	ErrResetNotAllowed = errors.New("workflow reset only allowed from rejected status")
)
