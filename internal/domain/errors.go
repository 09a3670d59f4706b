package domain

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors for gateway and cache operations
var (
	// ErrNetwork indicates the request failed before a response arrived
	// (no connectivity, connection reset, timeout)
	ErrNetwork = errors.New("school server is unreachable")

	// ErrAuthFailed indicates the server rejected the credentials or session
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrServer indicates a remote-side failure (5xx)
	ErrServer = errors.New("school server error")

	// ErrValidation indicates the payload was rejected by business rules
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrMalformedResponse indicates the server response did not match the expected schema
	ErrMalformedResponse = errors.New("malformed server response")
)

// ValidationError carries the per-field messages returned with a rejected payload.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Message string
	Fields  map[string]string // field name -> reason
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = ErrValidation.Error()
	}
	if len(e.Fields) == 0 {
		return msg
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return msg + " (" + strings.Join(parts, ", ") + ")"
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
