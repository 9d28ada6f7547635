package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when the request conflicts with the current state
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstream is returned when a backend the service depends on fails
	ErrUpstream = errors.New("upstream service failed")

	// ErrInvalidBrand is returned for a brand outside the known legal entities
	ErrInvalidBrand = errors.New("invalid brand")

	// ErrQuotationNumberImmutable is returned when an update tries to change an assigned quotation number
	ErrQuotationNumberImmutable = errors.New("quotation number cannot be changed once assigned")

	// ErrInvalidTransition is returned for a workflow step the current status does not allow
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMissingTerritory is returned when a quotation number is requested without a territory code
	ErrMissingTerritory = errors.New("territory code required")
)
