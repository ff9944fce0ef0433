package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/Dosada05/kabaddi-league/repositories"
	"github.com/Dosada05/kabaddi-league/storage"
)

type PlayerService interface {
	Create(ctx context.Context, player *models.Player) error
	BulkCreate(ctx context.Context, players []*models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error)
	Delete(ctx context.Context, id int) error
	SetProfilePic(ctx context.Context, playerID int, file io.Reader, contentType string) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		uploader:   uploader,
		logger:     logger,
	}
}

func (s *playerService) Create(ctx context.Context, player *models.Player) error {
	if err := s.validate(ctx, player); err != nil {
		return err
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerTeamInvalid) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

// BulkCreate — массовая заливка составов. Весь список валидируется
// до записи, вставка идёт одной транзакцией.
func (s *playerService) BulkCreate(ctx context.Context, players []*models.Player) error {
	if len(players) == 0 {
		return fmt.Errorf("%w: empty player list", ErrValidationFailed)
	}
	for _, player := range players {
		if err := s.validate(ctx, player); err != nil {
			return err
		}
	}
	if err := s.playerRepo.BulkCreate(ctx, players); err != nil {
		if errors.Is(err, repositories.ErrPlayerTeamInvalid) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("bulk create players: %w", err)
	}
	return nil
}

func (s *playerService) validate(ctx context.Context, player *models.Player) error {
	if player.Name == "" {
		return ErrPlayerNameRequired
	}
	if _, err := s.teamRepo.GetByID(ctx, player.TeamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("check team %d: %w", player.TeamID, err)
	}
	return nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player %d: %w", id, err)
	}
	populatePlayerPicURL(player, s.uploader)
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	for _, player := range players {
		populatePlayerPicURL(player, s.uploader)
	}
	return players, nil
}

func (s *playerService) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("check team %d: %w", teamID, err)
	}
	players, err := s.playerRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list players for team %d: %w", teamID, err)
	}
	for _, player := range players {
		populatePlayerPicURL(player, s.uploader)
	}
	return players, nil
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("get player %d: %w", id, err)
	}

	if err := s.playerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("delete player %d: %w", id, err)
	}

	// Старый аватар чистим best-effort, запись уже удалена.
	if player.ProfilePicKey != nil && *player.ProfilePicKey != "" && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *player.ProfilePicKey); err != nil && s.logger != nil {
			s.logger.Warn("failed to delete player profile pic from storage",
				slog.Int("player_id", id), slog.Any("error", err))
		}
	}
	return nil
}

// SetProfilePic загружает аватар игрока в объектное хранилище и
// привязывает ключ к записи игрока. Прежний объект удаляется best-effort.
func (s *playerService) SetProfilePic(ctx context.Context, playerID int, file io.Reader, contentType string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player %d: %w", playerID, err)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("players/%d/profile_%d%s", playerID, time.Now().UnixNano(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("upload profile pic for player %d: %w", playerID, err)
	}

	oldKey := player.ProfilePicKey
	if err := s.playerRepo.UpdateProfilePicKey(ctx, playerID, &key); err != nil {
		// Запись не обновилась — подчищаем только что загруженный объект.
		if delErr := s.uploader.Delete(ctx, key); delErr != nil && s.logger != nil {
			s.logger.Warn("failed to clean up orphaned profile pic",
				slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("update profile pic key for player %d: %w", playerID, err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil && s.logger != nil {
			s.logger.Warn("failed to delete previous profile pic",
				slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	player.ProfilePicKey = &key
	populatePlayerPicURL(player, s.uploader)
	return player, nil
}
