// Package http provides HTTP utilities shared by the chi-based services.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/greenpay/aptopay-middleware/pkg/app/errors"
)

// HandlerFunc defines a handler that returns an error instead of writing
// error responses itself.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// HandleError wraps an error-returning HandlerFunc into a standard
// http.HandlerFunc. Every service error is rendered as the
// {success:false, error} envelope with the category's status code.
//
// Usage with chi:
//
//	r.Post("/payments", apphttp.HandleError(h.record))
func HandleError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			WriteError(w, err)
		}
	}
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteError renders an error returned from a handler.
func WriteError(w http.ResponseWriter, err error) {
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		writeJSON(w, svcErr.StatusCode(), &errorEnvelope{Error: svcErr.Message})
		return
	}

	// Anything that is not a ServiceError must not leak details.
	writeJSON(w, http.StatusInternalServerError, &errorEnvelope{Error: "Internal Server Error"})
}

// WriteJSON writes data as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
