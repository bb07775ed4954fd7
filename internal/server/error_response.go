package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dufangshi/issues/internal/types"
)

// Error codes exposed on the wire
const (
	ErrorCodeValidation  = "VALIDATION"
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodeConflict    = "CONFLICT"
	ErrorCodeUnavailable = "UNAVAILABLE"
	ErrorCodeInternal    = "INTERNAL"
)

// ErrorBody wraps the error object in an HTTP response.
type ErrorBody struct {
	Error ErrorItem `json:"error"`
}

// ErrorItem carries the error code and message.
type ErrorItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError maps domain errors to HTTP statuses and a JSON body. The
// mapping lives here so every handler classifies failures the same way.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := ErrorCodeInternal

	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		code = ErrorCodeValidation
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
		code = ErrorCodeNotFound
	case errors.Is(err, types.ErrConflict):
		status = http.StatusConflict
		code = ErrorCodeConflict
	case errors.Is(err, types.ErrUnavailable):
		status = http.StatusServiceUnavailable
		code = ErrorCodeUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{
		Error: ErrorItem{
			Code:    code,
			Message: err.Error(),
		},
	})
}
