package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/Dosada05/kabaddi-league/repositories"
)

type MatchService interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context) ([]*models.Match, error)
	UpdateStatus(ctx context.Context, id int, status models.MatchStatus) (*models.Match, error)
	SetHalfTime(ctx context.Context, id int, halfTime bool) (*models.Match, error)
	SetMat(ctx context.Context, id int, teamAMat, teamBMat int) (*models.Match, error)
	AddPlayerToRoster(ctx context.Context, matchID, playerID int) (*models.PlayerStat, error)
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	logger     *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		logger:     logger,
	}
}

// Create заводит матч с пустым составом и нулевым счётом.
func (s *matchService) Create(ctx context.Context, match *models.Match) error {
	if match.MatchNumber <= 0 {
		return fmt.Errorf("%w: match number must be positive", ErrValidationFailed)
	}
	if match.TeamAID == match.TeamBID {
		return ErrSameTeams
	}
	for _, teamID := range []int{match.TeamAID, match.TeamBID} {
		if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("check team %d: %w", teamID, err)
		}
	}

	match.TeamAScore = 0
	match.TeamBScore = 0
	match.Status = models.MatchStatusUpcoming
	match.HalfTime = false
	if match.Date.IsZero() {
		match.Date = time.Now()
	}
	if match.TeamAMat == 0 {
		match.TeamAMat = models.DefaultMatPlayers
	}
	if match.TeamBMat == 0 {
		match.TeamBMat = models.DefaultMatPlayers
	}
	match.PlayerStats = []models.PlayerStat{}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchNumberConflict):
			return ErrMatchNumberConflict
		case errors.Is(err, repositories.ErrMatchTeamInvalid):
			return ErrTeamNotFound
		}
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("get match %d: %w", id, err)
	}
	s.populateTeams(ctx, match)
	return match, nil
}

func (s *matchService) List(ctx context.Context) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	for _, match := range matches {
		s.populateTeams(ctx, match)
	}
	return matches, nil
}

// Переходы статуса только вперёд: Upcoming → Ongoing → Completed.
var allowedStatusTransitions = map[models.MatchStatus][]models.MatchStatus{
	models.MatchStatusUpcoming:  {models.MatchStatusOngoing},
	models.MatchStatusOngoing:   {models.MatchStatusCompleted},
	models.MatchStatusCompleted: {},
}

func isValidStatusTransition(current, next models.MatchStatus) bool {
	if current == next {
		return true
	}
	for _, allowed := range allowedStatusTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func (s *matchService) UpdateStatus(ctx context.Context, id int, status models.MatchStatus) (*models.Match, error) {
	switch status {
	case models.MatchStatusUpcoming, models.MatchStatusOngoing, models.MatchStatusCompleted:
	default:
		return nil, ErrInvalidStatus
	}

	match, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(match.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, match.Status, status)
	}

	if err := s.matchRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update match %d status: %w", id, err)
	}
	match.Status = status
	return match, nil
}

func (s *matchService) SetHalfTime(ctx context.Context, id int, halfTime bool) (*models.Match, error) {
	match, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.matchRepo.SetHalfTime(ctx, id, halfTime); err != nil {
		return nil, fmt.Errorf("set match %d half time: %w", id, err)
	}
	match.HalfTime = halfTime
	return match, nil
}

func (s *matchService) SetMat(ctx context.Context, id int, teamAMat, teamBMat int) (*models.Match, error) {
	if teamAMat < 0 || teamAMat > models.DefaultMatPlayers ||
		teamBMat < 0 || teamBMat > models.DefaultMatPlayers {
		return nil, ErrInvalidMatCount
	}

	match, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.matchRepo.SetMat(ctx, id, teamAMat, teamBMat); err != nil {
		return nil, fmt.Errorf("set match %d mat counts: %w", id, err)
	}
	match.TeamAMat = teamAMat
	match.TeamBMat = teamBMat
	return match, nil
}

// AddPlayerToRoster создаёт игроку пустую запись статистики в матче.
// Игрок обязан состоять в одной из команд матча, иначе начисление очков
// не имело бы определённой команды.
func (s *matchService) AddPlayerToRoster(ctx context.Context, matchID, playerID int) (*models.PlayerStat, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player %d: %w", playerID, err)
	}
	if player.TeamID != match.TeamAID && player.TeamID != match.TeamBID {
		return nil, ErrPlayerNotOnMatchTeams
	}
	if match.StatForPlayer(playerID) != nil {
		return nil, ErrPlayerAlreadyInMatch
	}

	stat := &models.PlayerStat{
		MatchID:       matchID,
		PlayerID:      playerID,
		RaidPoints:    []int{},
		DefensePoints: []int{},
	}
	if err := s.matchRepo.CreateStat(ctx, stat); err != nil {
		if errors.Is(err, repositories.ErrStatConflict) {
			return nil, ErrPlayerAlreadyInMatch
		}
		return nil, fmt.Errorf("add player %d to match %d roster: %w", playerID, matchID, err)
	}
	return stat, nil
}

// populateTeams обогащает матч названиями команд; ошибка обогащения не
// валит чтение матча.
func (s *matchService) populateTeams(ctx context.Context, match *models.Match) {
	if match.TeamA == nil {
		if team, err := s.teamRepo.GetByID(ctx, match.TeamAID); err == nil {
			match.TeamA = team
		} else if s.logger != nil {
			s.logger.Warn("failed to populate team details",
				slog.Int("match_id", match.ID), slog.Int("team_id", match.TeamAID), slog.Any("error", err))
		}
	}
	if match.TeamB == nil {
		if team, err := s.teamRepo.GetByID(ctx, match.TeamBID); err == nil {
			match.TeamB = team
		} else if s.logger != nil {
			s.logger.Warn("failed to populate team details",
				slog.Int("match_id", match.ID), slog.Int("team_id", match.TeamBID), slog.Any("error", err))
		}
	}
}
