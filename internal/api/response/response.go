// Package response writes the service's wire formats. Success responses
// are the payload itself; error responses are {"error": message}.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error response format.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes v as the response body.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes an error response with the error's message.
func Error(w http.ResponseWriter, status int, err error) {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	JSON(w, status, ErrorBody{Error: msg})
}
