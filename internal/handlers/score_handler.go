package handlers

import (
	"net/http"

	"wordarcade/internal/models"
	"wordarcade/internal/service"
)

// ScoreHandler handles score submission and progression reads
type ScoreHandler struct {
	scores *service.ScoreService
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scores *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

// SubmitScore settles a finished session reported by the client
func (h *ScoreHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var summary models.SessionSummary
	if err := decodeJSON(w, r, &summary); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	result, err := h.scores.SubmitScore(r.Context(), UserIDFromContext(r.Context()), summary)
	if err != nil {
		respondWithServiceError(w, "Failed to submit score", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetWallet returns the caller's XP, gold and level
func (h *ScoreHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.scores.GetWallet(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, "Failed to load wallet", err)
		return
	}
	respondJSON(w, http.StatusOK, wallet)
}

// ListPersonalBests returns the caller's stored best per game and bucket
func (h *ScoreHandler) ListPersonalBests(w http.ResponseWriter, r *http.Request) {
	bests, err := h.scores.ListPersonalBests(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, "Failed to load personal bests", err)
		return
	}
	if bests == nil {
		bests = []models.ScoreRecord{}
	}
	respondJSON(w, http.StatusOK, bests)
}
