package tariffs

import (
	"errors"
	"net/http"
)

// Domain errors for tariff reference operations.
var (
	ErrNotFound    = errors.New("tariff code not found")
	ErrInvalidCode = errors.New("invalid tariff code")
)

// MapHTTPStatus maps tariff domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidCode) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
