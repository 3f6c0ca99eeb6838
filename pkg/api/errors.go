package api

import (
	"fmt"
)

// NetworkError is returned when a request could not be completed
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is returned when the telemetry source answers with a non-success status
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error (status %d) from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("API error (status %d) from %s: %s", e.StatusCode, e.URL, e.Body)
}

// MalformedDataError is returned when a payload cannot be decoded or one of its
// timestamps cannot be parsed. Index is -1 when the failure is not tied to a
// single reading.
type MalformedDataError struct {
	Index int
	Value string
	Err   error
}

func (e *MalformedDataError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed telemetry data: %v", e.Err)
	}
	return fmt.Sprintf("malformed telemetry data at reading %d (%q): %v", e.Index, e.Value, e.Err)
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}
