package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the standard API response wrapper: {message, data, meta}.
// Data and meta are always present, defaulting to empty objects.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
	Meta    any    `json:"meta"`
}

// JSON writes a response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data, meta any) {
	write(w, status, Envelope{Message: message, Data: data, Meta: meta})
}

// Success writes a "success" envelope with no meta.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, "success", data, nil)
}

// Error writes an error envelope carrying only a message.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Message: message})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	if payload.Data == nil {
		payload.Data = struct{}{}
	}
	if payload.Meta == nil {
		payload.Meta = struct{}{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("respond: encode payload failed", "error", err)
	}
}
