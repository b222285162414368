package transport

import (
	"fmt"
)

// InvalidResponseDetail is the detail used when a response body is not JSON.
const InvalidResponseDetail = "Invalid response"

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	if e == nil || e.Err == nil {
		return "network error"
	}
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response. Detail is the user-facing message taken
// from the body's "detail" field, or a status-based fallback.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Request failed (%d)", e.Status)
}

// ParseError is a 2xx response whose body could not be decoded.
type ParseError struct {
	Status int
	Err    error
}

func (e *ParseError) Error() string { return InvalidResponseDetail }

func (e *ParseError) Unwrap() error { return e.Err }
