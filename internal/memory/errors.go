package memory

import (
	"errors"
	"net/http"
)

// Domain errors for classification memory operations.
var (
	ErrNotFound   = errors.New("memory hit not found")
	ErrEmptyInput = errors.New("description and code are required")
)

// MapHTTPStatus maps memory domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrEmptyInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
