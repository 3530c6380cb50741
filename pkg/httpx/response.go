package httpx

import (
	"encoding/json"
	"net/http"
)

// envelope is the wire shape of a successful response.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It sets Content-Type and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess wraps data in the success envelope. Message and requestID
// are omitted from the body when empty.
func WriteSuccess(w http.ResponseWriter, code int, data any, message, requestID string) {
	WriteJSON(w, code, envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		RequestID: requestID,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Token responses must never land in a shared cache.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
