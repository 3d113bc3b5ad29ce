package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"churnpredict/customer"
	"churnpredict/ml"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps a prediction error onto an HTTP status code.
func statusFor(err error) int {
	var fieldErr *customer.FieldError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ml.ErrUnseenCategory),
		errors.Is(err, ml.ErrNonNumeric),
		errors.Is(err, ml.ErrMissingColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ml.ErrModelNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
