package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the book or page does not exist
	ErrNotFound = errors.New("not found")
	// ErrBadRequest is returned for rejected parameters, e.g. an invalid regex
	ErrBadRequest = errors.New("bad request")
	// ErrTimeout is returned when the server does not answer in time
	ErrTimeout = errors.New("request timed out")
)

// StatusError carries a non-2xx reply from the search service
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known status codes onto the package sentinels
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrBadRequest
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrTimeout
	}
	return nil
}
