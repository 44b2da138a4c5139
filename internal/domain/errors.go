package domain

import "errors"

// Sentinel errors for the application. Handlers map these onto HTTP status
// codes: ErrInvalidInput -> 400, ErrUnauthorized -> 401, ErrNotFound -> 404,
// ErrUpstream -> 502.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrConflict     = errors.New("resource already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream service failure")
)
