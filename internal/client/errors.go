package client

import "fmt"

// ServerError means the API answered with a non-2xx status.
type ServerError struct {
	Status  int
	Message string // message reported by the server, may be empty
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded with status %d", e.Status)
	}
	return fmt.Sprintf("server responded with status %d: %s", e.Status, e.Message)
}

// NetworkError means the request was sent but no response came back
// (connection refused, reset, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "no response from server: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// RequestError means the request could not be built or encoded.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }
