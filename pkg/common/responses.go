package common

import (
	"encoding/json"
	"net/http"

	appErrors "mediagraph/pkg/errors"
)

// DefaultMaxBodyBytes bounds request bodies accepted by ParseJSONBody
const DefaultMaxBodyBytes int64 = 8 << 20

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondNoContent sends an empty 204 response
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ParseJSONBody parses a JSON request body with a size limit.
// Decoding problems are reported as validation errors.
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErrors.NewValidationError("invalid request body").WithCause(err)
	}
	return nil
}
