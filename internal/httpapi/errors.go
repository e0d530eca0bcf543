package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"candlestream/internal/apierr"
	"candlestream/internal/schema"
)

// statusFor maps an apierr.Kind to the HTTP status the error taxonomy
// implies for the REST boundary.
func statusFor(kind apierr.Kind) int {
	switch kind {
	case apierr.BadRequest, apierr.UnknownIndicator, apierr.InvalidIndicatorParam, apierr.HistoricalInvalidRequest:
		return http.StatusBadRequest
	case apierr.Capacity, apierr.HistoricalUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a schema.ErrorResponse, classifying *apierr.Error
// by Kind and falling back to "internal" for anything else so a bug never
// leaks implementation details to the caller.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierr.New(apierr.Internal, "internal error")
	}
	writeJSON(w, statusFor(apiErr.Kind), schema.ErrorResponse{
		Message: apiErr.Message,
		Kind:    string(apiErr.Kind),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
