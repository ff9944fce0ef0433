package handlers

import (
	"net/http"

	"github.com/Dosada05/kabaddi-league/services"
)

type LeaderboardHandler struct {
	leaderboards services.LeaderboardService
}

func NewLeaderboardHandler(leaderboards services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboards: leaderboards}
}

// GET /leaderboard/raiders
func (h *LeaderboardHandler) TopRaidersHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboards.TopRaiders(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"top_raiders": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GET /leaderboard/defenders
func (h *LeaderboardHandler) TopDefendersHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboards.TopDefenders(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"top_defenders": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
