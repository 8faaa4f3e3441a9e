package domain

import "errors"

var (
	// ErrNotFound indicates that a requested tenant or provider was not found.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized indicates that a webhook signature could not be verified.
	// Callers must not attach the verification failure reason to responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidRequest indicates a malformed or out-of-scope tool-call envelope.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUpstreamFailure indicates an external collaborator (storage, telephony) failed.
	ErrUpstreamFailure = errors.New("upstream failure")
	// ErrDuplicateEntry indicates a unique constraint violation.
	ErrDuplicateEntry = errors.New("duplicate entry")
)
