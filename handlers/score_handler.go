package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/Dosada05/kabaddi-league/services"
)

type ScoreHandler struct {
	scoreService services.ScoreService
}

func NewScoreHandler(scoreService services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

type addPointsRequest struct {
	PlayerID int                  `json:"player_id"`
	Points   int                  `json:"points"`
	Category models.PointCategory `json:"category"`
}

// AddPointsHandler начисляет игроку очки рейда или защиты.
// POST /matches/{matchID}/points
func (h *ScoreHandler) AddPointsHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input addPointsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.scoreService.AddPoints(r.Context(), matchID, input.PlayerID, input.Points, input.Category)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type popPointsRequest struct {
	PlayerID int                  `json:"player_id"`
	Category models.PointCategory `json:"category"`
}

// PopPointsHandler снимает последнее начисление по категории (undo).
// DELETE /matches/{matchID}/points
func (h *ScoreHandler) PopPointsHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input popPointsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	removed, match, err := h.scoreService.PopPoints(r.Context(), matchID, input.PlayerID, input.Category)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"removed_points": removed, "match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type teamPointsRequest struct {
	TeamID int `json:"team_id"`
	Points int `json:"points"`
}

// AddTeamPointsHandler начисляет командные очки (all-out и прочие
// бонусы без конкретного игрока).
// POST /matches/{matchID}/team-points
func (h *ScoreHandler) AddTeamPointsHandler(w http.ResponseWriter, r *http.Request) {
	h.adjustTeamPoints(w, r, h.scoreService.AddTeamPoints)
}

// RemoveTeamPointsHandler снимает командные очки.
// DELETE /matches/{matchID}/team-points
func (h *ScoreHandler) RemoveTeamPointsHandler(w http.ResponseWriter, r *http.Request) {
	h.adjustTeamPoints(w, r, h.scoreService.RemoveTeamPoints)
}

func (h *ScoreHandler) adjustTeamPoints(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, matchID, teamID, points int) (*models.Match, error),
) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input teamPointsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := op(r.Context(), matchID, input.TeamID, input.Points)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
