// Package response writes the API envelope. Success bodies carry
// {success, message, data}; failures carry {success, message, code}.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type successEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	write(w, r, status, successEnvelope{Success: true, Message: message, Data: data})
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	write(w, r, status, errorEnvelope{Success: false, Message: message, Code: code})
}

func write(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "path", r.URL.Path, "error", err)
	}
}
