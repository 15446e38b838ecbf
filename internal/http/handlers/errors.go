// Package handlers defines HTTP-layer error codes used across the endpoints.
//
// Codes are lowercase snake_case, stable, and machine-readable; they
// supplement the HTTP status so clients (and alerting rules) can branch on a
// precise taxonomy instead of message strings.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"
)
