package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrMatchNotFound  = errors.New("match not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrTeamNotFound   = errors.New("team not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrInvalidPoints           = errors.New("points must be a positive integer")
	ErrInvalidCategory         = errors.New("point category must be raid or defense")
	ErrTeamNameRequired        = errors.New("team name is required")
	ErrPlayerNameRequired      = errors.New("player name is required")
	ErrSameTeams               = errors.New("a match requires two distinct teams")
	ErrPlayerNotOnMatchTeams   = errors.New("player does not belong to either match team")
	ErrInvalidStatus           = errors.New("invalid match status provided")
	ErrInvalidStatusTransition = errors.New("invalid match status transition")
	ErrInvalidMatCount         = errors.New("players on mat must be between 0 and 7")

	// Ошибки леджера очков
	ErrPlayerNotInMatch = errors.New("player has no stat entry in this match")
	ErrNoPointsToRemove = errors.New("no points to remove in this category")

	// Ошибки конфликтов
	ErrMatchNumberConflict  = errors.New("match number already exists")
	ErrTeamNameConflict     = errors.New("team name is already in use")
	ErrPlayerAlreadyInMatch = errors.New("player is already on the match roster")
)
