package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// dataEnvelope is the success envelope: {"data": ...}.
type dataEnvelope struct {
	Data any `json:"data"`
}

// errResponse is the failure envelope: {"error": "...", "details": "..."}.
// Details carry diagnostic detail outside production and are omitted
// otherwise.
type errResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, dataEnvelope{Data: v})
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errResponse{Error: msg, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}
