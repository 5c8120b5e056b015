package common

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// DenyResponse is the shape of a rejected access decision. It is distinct
// from ErrorResponse so clients can tell "prompt for a password" apart from
// a malformed request.
type DenyResponse struct {
	Denied bool   `json:"denied"`
	Reason string `json:"reason"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

func RespondWithDeny(w http.ResponseWriter, reason string) {
	RespondWithJSON(w, http.StatusForbidden, DenyResponse{Denied: true, Reason: reason})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
