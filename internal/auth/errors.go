package auth

import "fmt"

// TransportError indicates a failure talking to the identity provider:
// a network error, a timeout, or a non-2xx HTTP status. The cached
// credential is left untouched when this is returned.
type TransportError struct {
	StatusCode int    // 0 when the request never completed
	Body       string // response body for non-2xx statuses, truncated
	Err        error  // underlying cause, nil for plain status failures
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token request failed: %v", e.Err)
	}
	return fmt.Sprintf("token request failed: status=%d body=%s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError indicates the identity provider returned a body that is not
// valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid token response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AcquisitionError indicates a well-formed response that lacks a usable
// access token.
type AcquisitionError struct {
	Reason string
}

func (e *AcquisitionError) Error() string {
	return "token acquisition failed: " + e.Reason
}
