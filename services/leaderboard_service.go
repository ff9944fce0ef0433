package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/Dosada05/kabaddi-league/repositories"
	"github.com/Dosada05/kabaddi-league/storage"
	"golang.org/x/sync/errgroup"
)

// LeaderboardSize ограничивает оба борда десятью лучшими игроками.
const LeaderboardSize = 10

// LeaderboardService строит топ игроков по сумме очков за всю историю
// матчей. Чтение без мутаций: борд может считаться параллельно с записью
// очков и тогда отражает частично обновлённый набор матчей. Это
// осознанная eventual consistency, не чинить блокировками.
type LeaderboardService interface {
	TopRaiders(ctx context.Context) ([]models.LeaderboardEntry, error)
	TopDefenders(ctx context.Context) ([]models.LeaderboardEntry, error)
}

type leaderboardService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewLeaderboardService(
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) LeaderboardService {
	return &leaderboardService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		uploader:   uploader,
		logger:     logger,
	}
}

func (s *leaderboardService) TopRaiders(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return s.top(ctx, models.CategoryRaid)
}

func (s *leaderboardService) TopDefenders(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return s.top(ctx, models.CategoryDefense)
}

// playerTotals — одна группа агрегации: игрок, сумма очков категории и
// число матчей, в которых у него вообще есть запись статистики.
type playerTotals struct {
	playerID      int
	totalPoints   int
	matchesPlayed int
}

func (s *leaderboardService) top(ctx context.Context, category models.PointCategory) ([]models.LeaderboardEntry, error) {
	lines, err := s.matchRepo.ListStatLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stat lines: %w", err)
	}

	ranked := rankTotals(groupTotals(lines, category))
	if len(ranked) > LeaderboardSize {
		ranked = ranked[:LeaderboardSize]
	}

	return s.enrich(ctx, ranked)
}

// groupTotals группирует плоские записи по игроку и суммирует очки
// выбранной категории. matchesPlayed умышленно считает любую запись
// статистики, не только матчи с очками этой категории: игрок, сыгравший
// 5 матчей и бравший рейдовые очки в двух, имеет matchesPlayed = 5 на
// борде рейдеров. На этом счётчике держится тай-брейк.
func groupTotals(lines []models.StatLine, category models.PointCategory) []playerTotals {
	byPlayer := make(map[int]*playerTotals)
	order := make([]int, 0)

	for _, line := range lines {
		totals, ok := byPlayer[line.PlayerID]
		if !ok {
			totals = &playerTotals{playerID: line.PlayerID}
			byPlayer[line.PlayerID] = totals
			order = append(order, line.PlayerID)
		}
		totals.matchesPlayed++

		points := line.RaidPoints
		if category == models.CategoryDefense {
			points = line.DefensePoints
		}
		for _, p := range points {
			totals.totalPoints += p
		}
	}

	grouped := make([]playerTotals, 0, len(order))
	for _, playerID := range order {
		grouped = append(grouped, *byPlayer[playerID])
	}
	return grouped
}

// rankTotals отбрасывает нулевые группы и сортирует: очки по убыванию,
// при равенстве — меньше сыгранных матчей выше (эффективность), затем
// playerID для стабильного порядка.
func rankTotals(grouped []playerTotals) []playerTotals {
	ranked := make([]playerTotals, 0, len(grouped))
	for _, totals := range grouped {
		if totals.totalPoints > 0 {
			ranked = append(ranked, totals)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].totalPoints != ranked[j].totalPoints {
			return ranked[i].totalPoints > ranked[j].totalPoints
		}
		if ranked[i].matchesPlayed != ranked[j].matchesPlayed {
			return ranked[i].matchesPlayed < ranked[j].matchesPlayed
		}
		return ranked[i].playerID < ranked[j].playerID
	})
	return ranked
}

// enrich подтягивает к каждой строке имя игрока, аватар и название его
// текущей команды. Игрок без записи в players или без команды выпадает
// из борда (семантика join), остальные строки сохраняются.
func (s *leaderboardService) enrich(ctx context.Context, ranked []playerTotals) ([]models.LeaderboardEntry, error) {
	slots := make([]*models.LeaderboardEntry, len(ranked))

	g, gctx := errgroup.WithContext(ctx)
	for i, totals := range ranked {
		i, totals := i, totals
		g.Go(func() error {
			player, err := s.playerRepo.GetByID(gctx, totals.playerID)
			if err != nil {
				if errors.Is(err, repositories.ErrPlayerNotFound) {
					s.warnDropped(totals.playerID, err)
					return nil
				}
				return fmt.Errorf("enrich player %d: %w", totals.playerID, err)
			}

			team, err := s.teamRepo.GetByID(gctx, player.TeamID)
			if err != nil {
				if errors.Is(err, repositories.ErrTeamNotFound) {
					s.warnDropped(totals.playerID, err)
					return nil
				}
				return fmt.Errorf("enrich team %d: %w", player.TeamID, err)
			}

			entry := &models.LeaderboardEntry{
				PlayerID:      player.ID,
				Name:          player.Name,
				TeamName:      team.Name,
				TotalPoints:   totals.totalPoints,
				MatchesPlayed: totals.matchesPlayed,
			}
			if player.ProfilePicKey != nil && *player.ProfilePicKey != "" && s.uploader != nil {
				if url := s.uploader.GetPublicURL(*player.ProfilePicKey); url != "" {
					entry.ProfilePicURL = &url
				}
			}
			slots[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(slots))
	for _, entry := range slots {
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

func (s *leaderboardService) warnDropped(playerID int, err error) {
	if s.logger != nil {
		s.logger.Warn("leaderboard entry dropped, lookup failed",
			slog.Int("player_id", playerID),
			slog.Any("error", err),
		)
	}
}
