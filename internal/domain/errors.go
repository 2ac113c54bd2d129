package domain

import "errors"

// Error kinds returned by the core services. Callers classify with errors.Is;
// details travel in the wrapping message.
var (
	// ErrValidation marks caller-supplied data that violates a field contract.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing entity reference.
	ErrNotFound = errors.New("not found")
	// ErrStateConflict marks a state-machine precondition violation.
	ErrStateConflict = errors.New("state conflict")
	// ErrConflict marks a lost concurrency race: overlapping dates or a
	// duplicate payment for a booking. The whole operation may be retried.
	ErrConflict = errors.New("conflict")
	// ErrInvalidSignature marks a failed gateway signature check. The message
	// must not reveal whether the order or payment id was known.
	ErrInvalidSignature = errors.New("invalid payment signature")
	// ErrGateway marks a failed or unsuccessful remote gateway call.
	ErrGateway = errors.New("payment gateway error")
)
