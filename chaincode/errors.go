package chaincode

import "errors"

// Abort taxonomy. Each of these is surfaced as a failed transaction, so the
// peer reverts every write of the invocation.
var (
	ErrAuthenticationFailure = errors.New("caller did not authenticate as the required identity")
	ErrDuplicateGrant        = errors.New("provider already holds access for this patient")
	ErrNoSuchGrant           = errors.New("no authorization exists for this patient and provider")
	ErrUnauthorized          = errors.New("provider is not authorized to access these records")
)
