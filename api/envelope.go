package api

import (
	"encoding/json"
	"net/http"

	"agripower/internal/apierr"
	"agripower/internal/config"
)

// Envelope is the JSend-shaped response body every handler writes.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  any          `json:"errors,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail is the non-production diagnostics payload; it is omitted
// entirely when the process runs in production mode.
type ErrorDetail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeSuccess writes a 200 JSend success envelope.
func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// writeError renders an *apierr.APIError as its JSend failure envelope,
// mapping the error taxonomy to the matching HTTP status. Stack traces and
// diagnostic detail are only attached outside production mode.
func writeError(w http.ResponseWriter, cfg *config.Config, err *apierr.APIError) {
	env := Envelope{Success: false, Message: err.Message}
	if len(err.Fields) > 0 {
		env.Errors = err.Fields
	}
	if cfg == nil || !cfg.IsProduction() {
		detail := &ErrorDetail{
			Name:    err.Kind.String(),
			Message: err.Message,
			Code:    err.Kind.String(),
		}
		if err.Cause != nil {
			detail.Stack = err.Cause.Error()
		}
		env.Error = detail
	}
	writeJSON(w, err.Kind.Status(), env)
}
