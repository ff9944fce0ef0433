package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/Dosada05/kabaddi-league/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type createMatchRequest struct {
	MatchNumber int        `json:"match_number"`
	TeamAID     int        `json:"team_a_id"`
	TeamBID     int        `json:"team_b_id"`
	MatchType   string     `json:"match_type"`
	Date        *time.Time `json:"date"`
	Order       int        `json:"order"`
}

// POST /matches
func (h *MatchHandler) CreateMatchHandler(w http.ResponseWriter, r *http.Request) {
	var input createMatchRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match := &models.Match{
		MatchNumber: input.MatchNumber,
		TeamAID:     input.TeamAID,
		TeamBID:     input.TeamBID,
		MatchType:   input.MatchType,
		Order:       input.Order,
	}
	if input.Date != nil {
		match.Date = *input.Date
	}

	if err := h.matchService.Create(r.Context(), match); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GET /matches
func (h *MatchHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GET /matches/{matchID}
func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateStatusRequest struct {
	Status models.MatchStatus `json:"status"`
}

// PATCH /matches/{matchID}/status
func (h *MatchHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateStatusRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateStatus(r.Context(), matchID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type halfTimeRequest struct {
	HalfTime bool `json:"half_time"`
}

// PATCH /matches/{matchID}/halftime
func (h *MatchHandler) SetHalfTimeHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input halfTimeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SetHalfTime(r.Context(), matchID, input.HalfTime)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type matRequest struct {
	TeamAMat int `json:"team_a_mat"`
	TeamBMat int `json:"team_b_mat"`
}

// PATCH /matches/{matchID}/mat
func (h *MatchHandler) SetMatHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input matRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SetMat(r.Context(), matchID, input.TeamAMat, input.TeamBMat)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type rosterRequest struct {
	PlayerID int `json:"player_id"`
}

// POST /matches/{matchID}/roster
func (h *MatchHandler) AddPlayerToRosterHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input rosterRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stat, err := h.matchService.AddPlayerToRoster(r.Context(), matchID, input.PlayerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player_stat": stat}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
