package httputil

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorResponse is the JSON body for every error the API returns.
type ErrorResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
}

// SuccessResponse wraps every successful payload.
type SuccessResponse struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Data       any    `json:"data,omitempty"`
}

// WriteError writes an ErrorResponse with the given status and message.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
		Status:    status,
	})
}

// WriteSuccess writes payload inside the success envelope.
func WriteSuccess(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, SuccessResponse{
		StatusCode: status,
		Status:     "success",
		Data:       payload,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding a marshalable struct cannot fail here; headers are already
	// sent, so there is nothing useful to do with an error anyway.
	_ = json.NewEncoder(w).Encode(body)
}
