package classifications

import (
	"errors"
	"net/http"
)

// Domain errors for classification operations.
var (
	ErrNotFound           = errors.New("classification not found")
	ErrDuplicate          = errors.New("classification already exists")
	ErrInvalidStatus      = errors.New("classification is not awaiting review")
	ErrInvalidStatusValue = errors.New("status must be review, escalated, complete, or failed")
	ErrEmptyRequest       = errors.New("request must contain at least one product line")
)

// MapHTTPStatus maps classification domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidStatus) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidStatusValue) || errors.Is(err, ErrEmptyRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
