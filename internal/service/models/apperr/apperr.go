// Package apperr holds the error taxonomy shared by services and transport.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrPrinterNotConnected = errors.New("printer not connected")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// Auth error codes returned to clients.
const (
	CodeNoToken          = "NO_TOKEN"
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeInsufficientRole = "INSUFFICIENT_ROLE"
)

// AuthError is a rejected session token.
type AuthError struct {
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	switch e.Code {
	case CodeNoToken:
		return "no token provided"
	case CodeTokenExpired:
		return "token expired"
	case CodeInsufficientRole:
		return "insufficient permissions"
	default:
		return "invalid token"
	}
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// RateLimitError is returned while a client address is locked out.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("account locked. Try again in %d minutes.", e.RemainingMinutes())
}

// RemainingMinutes rounds RetryAfter up to whole minutes.
func (e *RateLimitError) RemainingMinutes() int {
	mins := int(e.RetryAfter / time.Minute)
	if e.RetryAfter%time.Minute > 0 {
		mins++
	}

	return mins
}

// ValidationError is a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return e.Field + ": " + e.Message
}

// PrintFormatError means a document could not be built from the order data.
type PrintFormatError struct {
	Document string
	Err      error
}

func (e *PrintFormatError) Error() string {
	return fmt.Sprintf("cannot format %s: %v", e.Document, e.Err)
}

func (e *PrintFormatError) Unwrap() error {
	return e.Err
}

// UnsupportedDirectiveError is raised by a printer transport that cannot
// execute one directive of a document. Nothing has been sent when it is
// returned.
type UnsupportedDirectiveError struct {
	Index  int
	Kind   string
	Reason string
}

func (e *UnsupportedDirectiveError) Error() string {
	return fmt.Sprintf("unsupported directive %s at %d: %s", e.Kind, e.Index, e.Reason)
}

// CredentialsError is a failed login. It matches ErrInvalidCredentials.
type CredentialsError struct {
	AttemptsRemaining int
}

func (e *CredentialsError) Error() string {
	return ErrInvalidCredentials.Error()
}

func (e *CredentialsError) Unwrap() error {
	return ErrInvalidCredentials
}
