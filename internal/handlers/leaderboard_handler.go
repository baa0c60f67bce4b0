package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wordarcade/internal/models"
	"wordarcade/internal/service"
)

// LeaderboardHandler serves public rankings
type LeaderboardHandler struct {
	leaderboards *service.LeaderboardService
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboards *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboards: leaderboards}
}

// GetTopN returns the top of one bucket. ?n= selects the size.
func (h *LeaderboardHandler) GetTopN(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "n must be an integer", "", nil)
			return
		}
		n = parsed
	}

	game := models.GameKind(chi.URLParam(r, "game"))
	bucket := models.Bucket(chi.URLParam(r, "bucket"))

	entries, err := h.leaderboards.GetTopN(r.Context(), game, bucket, n)
	if err != nil {
		respondWithServiceError(w, "Failed to load leaderboard", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
