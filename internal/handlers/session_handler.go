package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wordarcade/internal/game"
	"wordarcade/internal/models"
)

// SessionHandler hosts live game sessions over HTTP
type SessionHandler struct {
	manager *game.Manager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *game.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

type startSessionRequest struct {
	Game   models.GameKind `json:"game"`
	Bucket models.Bucket   `json:"bucket"`
}

// commandResponse is returned by every session command
type commandResponse struct {
	Outcome game.Outcome `json:"outcome"`
	Session game.View    `json:"session"`
}

// StartSession begins a new session for the caller
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	runner, err := h.manager.Start(UserIDFromContext(r.Context()), req.Game, req.Bucket)
	if err != nil {
		respondWithServiceError(w, "Failed to start session", err)
		return
	}
	respondJSON(w, http.StatusCreated, runner.View())
}

// GetSession returns the current state of one of the caller's sessions
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.ownedRunner(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, runner.View())
}

// SubmitInput answers the active prompt
func (h *SessionHandler) SubmitInput(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.ownedRunner(w, r)
	if !ok {
		return
	}

	var answer game.Answer
	if err := decodeJSON(w, r, &answer); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	h.command(w, r, runner, func(ctx context.Context) (game.Outcome, error) {
		return runner.Submit(ctx, answer)
	})
}

// Skip gives up the active prompt
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	if runner, ok := h.ownedRunner(w, r); ok {
		h.command(w, r, runner, runner.Skip)
	}
}

// Pause suspends the session clock
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if runner, ok := h.ownedRunner(w, r); ok {
		h.command(w, r, runner, runner.Pause)
	}
}

// Resume restarts the session clock
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	if runner, ok := h.ownedRunner(w, r); ok {
		h.command(w, r, runner, runner.Resume)
	}
}

// Quit abandons the session. It is settled with the score reached so far.
func (h *SessionHandler) Quit(w http.ResponseWriter, r *http.Request) {
	if runner, ok := h.ownedRunner(w, r); ok {
		h.command(w, r, runner, runner.Abandon)
	}
}

func (h *SessionHandler) command(w http.ResponseWriter, r *http.Request, runner *game.Runner, run func(context.Context) (game.Outcome, error)) {
	outcome, err := run(r.Context())
	if err != nil {
		respondWithServiceError(w, "Session command failed", err)
		return
	}
	respondJSON(w, http.StatusOK, commandResponse{Outcome: outcome, Session: runner.View()})
}

// ownedRunner loads the session named in the path. Sessions of other
// players are reported as missing.
func (h *SessionHandler) ownedRunner(w http.ResponseWriter, r *http.Request) (*game.Runner, bool) {
	id := chi.URLParam(r, "id")
	runner, err := h.manager.Get(id)
	if err == nil && runner.UserID() != UserIDFromContext(r.Context()) {
		err = models.NotFoundError{Resource: "session", Key: id}
	}
	if err != nil {
		respondWithServiceError(w, "", err)
		return nil, false
	}
	return runner, true
}
