package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"wordarcade/internal/game"
	"wordarcade/internal/models"
)

// envelope is the body of every API response
type envelope struct {
	Error   bool   `json:"error"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, envelope{Data: data})
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		slog.Error(logMsg, "status", status, "error", err)
	}

	writeEnvelope(w, status, envelope{Error: true, Message: userMsg})
}

// respondWithServiceError maps the error taxonomy onto HTTP statuses
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case models.IsValidation(err):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	case models.IsNotFound(err):
		respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
	case errors.Is(err, game.ErrShuttingDown):
		respondWithError(w, http.StatusServiceUnavailable, "Server is shutting down", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error", logMsg, err)
	}
}

func writeEnvelope(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads a request body into v, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return models.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}
