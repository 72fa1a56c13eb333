// Package upstream holds the error taxonomy shared by the external sales
// clients. Per-fetch errors are captured into the report's excluded
// channels, never raised past the orchestrator.
package upstream

import "fmt"

// AuthError means a request token could not be produced or signed.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError is a transport-level failure before any response arrived.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError is a non-2xx upstream response; it keeps the status code
// and the raw body.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// ParseError means the response body could not be decoded, including a
// double-encoded envelope that failed to unwrap.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
