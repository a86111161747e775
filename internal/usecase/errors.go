package usecase

import "errors"

// Sentinel error kinds, wrapped with fmt.Errorf("%w: detail", ...) at the
// point of failure and classified with errors.Is at the HTTP edge: validation,
// authorization (split into unauthenticated/forbidden), not-found, conflict,
// and infrastructure.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrInfra        = errors.New("dependency unavailable")
)
