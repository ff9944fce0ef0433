package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/Dosada05/kabaddi-league/repositories"
)

// ScoreBroadcaster пушит обновления счёта подписчикам комнаты матча.
type ScoreBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// LeaderboardInvalidator сбрасывает закэшированные лидерборды после
// успешной записи в леджер.
type LeaderboardInvalidator interface {
	Invalidate()
}

// ScoreService — единственный владелец счёта матча: все мутации
// team_a_score/team_b_score проходят через него.
type ScoreService interface {
	AddPoints(ctx context.Context, matchID, playerID, points int, category models.PointCategory) (*models.Match, error)
	PopPoints(ctx context.Context, matchID, playerID int, category models.PointCategory) (int, *models.Match, error)
	AddTeamPoints(ctx context.Context, matchID, teamID, points int) (*models.Match, error)
	RemoveTeamPoints(ctx context.Context, matchID, teamID, points int) (*models.Match, error)
}

type scoreService struct {
	tx          repositories.TxRunner
	matchRepo   repositories.MatchRepository
	playerRepo  repositories.PlayerRepository
	hub         ScoreBroadcaster
	invalidator LeaderboardInvalidator
	logger      *slog.Logger
	locks       matchLocks
}

func NewScoreService(
	tx repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	hub ScoreBroadcaster,
	invalidator LeaderboardInvalidator,
	logger *slog.Logger,
) ScoreService {
	return &scoreService{
		tx:          tx,
		matchRepo:   matchRepo,
		playerRepo:  playerRepo,
		hub:         hub,
		invalidator: invalidator,
		logger:      logger,
		locks:       matchLocks{byMatch: make(map[int]*sync.Mutex)},
	}
}

// matchLocks сериализует операции леджера по одному матчу. Два разных
// матча мутируются параллельно; внутри одного матча каждая операция
// выполняет read-modify-write целого агрегата и обязана идти одна.
// Мьютексы не вымываются: число матчей лиги ограничено.
type matchLocks struct {
	mu      sync.Mutex
	byMatch map[int]*sync.Mutex
}

func (l *matchLocks) forMatch(matchID int) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.byMatch[matchID]
	if !ok {
		lock = &sync.Mutex{}
		l.byMatch[matchID] = lock
	}
	return lock
}

type scoreMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type scorePayload struct {
	MatchID    int `json:"match_id"`
	TeamAScore int `json:"team_a_score"`
	TeamBScore int `json:"team_b_score"`
}

func matchRoom(matchID int) string {
	return "match_" + strconv.Itoa(matchID)
}

func (s *scoreService) AddPoints(ctx context.Context, matchID, playerID, points int, category models.PointCategory) (*models.Match, error) {
	if points <= 0 {
		return nil, ErrInvalidPoints
	}
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	lock := s.locks.forMatch(matchID)
	lock.Lock()
	defer lock.Unlock()

	var match *models.Match
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		match, err = s.loadMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}

		stat := match.StatForPlayer(playerID)
		if stat == nil {
			return ErrPlayerNotInMatch
		}

		player, err := s.resolvePlayer(ctx, playerID)
		if err != nil {
			return err
		}

		sequence := append(append([]int{}, stat.PointsFor(category)...), points)
		if err := s.matchRepo.UpdateStatPoints(ctx, exec, stat.ID, category, sequence); err != nil {
			return fmt.Errorf("append %s points: %w", category, err)
		}
		setStatPoints(stat, category, sequence)

		s.applyTeamDelta(match, player.TeamID, points)
		return s.matchRepo.UpdateScores(ctx, exec, match.ID, match.TeamAScore, match.TeamBScore)
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(match)
	return match, nil
}

func (s *scoreService) PopPoints(ctx context.Context, matchID, playerID int, category models.PointCategory) (int, *models.Match, error) {
	if !category.Valid() {
		return 0, nil, ErrInvalidCategory
	}

	lock := s.locks.forMatch(matchID)
	lock.Lock()
	defer lock.Unlock()

	var (
		match   *models.Match
		removed int
	)
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		match, err = s.loadMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}

		stat := match.StatForPlayer(playerID)
		if stat == nil {
			return ErrPlayerNotInMatch
		}

		player, err := s.resolvePlayer(ctx, playerID)
		if err != nil {
			return err
		}

		sequence := stat.PointsFor(category)
		if len(sequence) == 0 {
			return fmt.Errorf("%w: %s", ErrNoPointsToRemove, category)
		}

		// Снимается строго последняя запись: история очков — стек.
		removed = sequence[len(sequence)-1]
		truncated := append([]int{}, sequence[:len(sequence)-1]...)
		if err := s.matchRepo.UpdateStatPoints(ctx, exec, stat.ID, category, truncated); err != nil {
			return fmt.Errorf("pop %s points: %w", category, err)
		}
		setStatPoints(stat, category, truncated)

		s.applyTeamDelta(match, player.TeamID, -removed)
		return s.matchRepo.UpdateScores(ctx, exec, match.ID, match.TeamAScore, match.TeamBScore)
	})
	if err != nil {
		return 0, nil, err
	}

	s.afterWrite(match)
	return removed, match, nil
}

// AddTeamPoints начисляет командные очки (например, бонус за all-out),
// не привязанные к конкретному игроку. Если teamID не совпадает ни с
// одной из команд матча — операция no-op.
func (s *scoreService) AddTeamPoints(ctx context.Context, matchID, teamID, points int) (*models.Match, error) {
	if points <= 0 {
		return nil, ErrInvalidPoints
	}
	return s.adjustTeamScore(ctx, matchID, teamID, points)
}

func (s *scoreService) RemoveTeamPoints(ctx context.Context, matchID, teamID, points int) (*models.Match, error) {
	if points <= 0 {
		return nil, ErrInvalidPoints
	}
	return s.adjustTeamScore(ctx, matchID, teamID, -points)
}

func (s *scoreService) adjustTeamScore(ctx context.Context, matchID, teamID, delta int) (*models.Match, error) {
	lock := s.locks.forMatch(matchID)
	lock.Lock()
	defer lock.Unlock()

	var (
		match   *models.Match
		changed bool
	)
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		match, err = s.loadMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}

		changed = s.applyTeamDelta(match, teamID, delta)
		if !changed {
			return nil
		}
		return s.matchRepo.UpdateScores(ctx, exec, match.ID, match.TeamAScore, match.TeamBScore)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.afterWrite(match)
	}
	return match, nil
}

// applyTeamDelta применяет дельту к счёту той команды матча, которой
// принадлежит teamID. Если teamID не совпадает ни с team_a, ни с team_b,
// счёт не трогается; для очков игрока запись в истории при этом уже
// сделана. См. DESIGN.md.
func (s *scoreService) applyTeamDelta(match *models.Match, teamID, delta int) bool {
	switch teamID {
	case match.TeamAID:
		match.TeamAScore += delta
	case match.TeamBID:
		match.TeamBScore += delta
	default:
		if s.logger != nil {
			s.logger.Warn("score delta for team outside the match, score left unchanged",
				slog.Int("match_id", match.ID),
				slog.Int("team_id", teamID),
				slog.Int("delta", delta),
			)
		}
		return false
	}
	return true
}

func (s *scoreService) loadMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("load match %d: %w", matchID, err)
	}
	return match, nil
}

func (s *scoreService) resolvePlayer(ctx context.Context, playerID int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("resolve player %d: %w", playerID, err)
	}
	return player, nil
}

func setStatPoints(stat *models.PlayerStat, category models.PointCategory, points []int) {
	if category == models.CategoryDefense {
		stat.DefensePoints = points
		return
	}
	stat.RaidPoints = points
}

func (s *scoreService) afterWrite(match *models.Match) {
	if s.hub != nil {
		s.hub.BroadcastToRoom(matchRoom(match.ID), scoreMessage{
			Type: "SCORE_UPDATED",
			Payload: scorePayload{
				MatchID:    match.ID,
				TeamAScore: match.TeamAScore,
				TeamBScore: match.TeamBScore,
			},
		})
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}
