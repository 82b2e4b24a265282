package gateway

import "errors"

// Error taxonomy for remote calls. Stores branch on these with errors.Is:
// RowNotFound drives lazy provisioning and is never shown to a user,
// RemoteUnavailable falls back to cache, ValidationRejected is surfaced
// verbatim as the store's current error message.
var (
	ErrRowNotFound        = errors.New("row not found")
	ErrRemoteUnavailable  = errors.New("remote backend unavailable")
	ErrValidationRejected = errors.New("validation rejected")
	ErrNoSession          = errors.New("no active session")
)
