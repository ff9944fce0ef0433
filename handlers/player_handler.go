package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/Dosada05/kabaddi-league/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

type createPlayerRequest struct {
	Name   string `json:"name"`
	TeamID int    `json:"team_id"`
	Role   string `json:"role"`
}

// POST /players
func (h *PlayerHandler) CreatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	var input createPlayerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player := &models.Player{Name: input.Name, TeamID: input.TeamID, Role: input.Role}
	if err := h.playerService.Create(r.Context(), player); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type bulkPlayersRequest struct {
	Players []createPlayerRequest `json:"players"`
}

// POST /players/bulk — массовая заливка составов.
func (h *PlayerHandler) BulkCreatePlayersHandler(w http.ResponseWriter, r *http.Request) {
	var input bulkPlayersRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players := make([]*models.Player, 0, len(input.Players))
	for _, p := range input.Players {
		players = append(players, &models.Player{Name: p.Name, TeamID: p.TeamID, Role: p.Role})
	}

	if err := h.playerService.BulkCreate(r.Context(), players); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GET /players
func (h *PlayerHandler) ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GET /players/{playerID}
func (h *PlayerHandler) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetByID(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GET /teams/{teamID}/players
func (h *PlayerHandler) ListPlayersByTeamHandler(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.playerService.ListByTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DELETE /players/{playerID}
func (h *PlayerHandler) DeletePlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.Delete(r.Context(), playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetProfilePicHandler принимает multipart-форму с полем "profile_pic"
// и загружает аватар игрока в объектное хранилище.
// PUT /players/{playerID}/profile-pic
func (h *PlayerHandler) SetProfilePicHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("profile_pic")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get profile_pic file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for profile pic"))
		return
	}

	player, err := h.playerService.SetProfilePic(r.Context(), playerID, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
