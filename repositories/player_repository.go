package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerTeamInvalid = errors.New("player team conflict or invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	BulkCreate(ctx context.Context, players []*models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error)
	UpdateProfilePicKey(ctx context.Context, id int, key *string) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (name, team_id, role, profile_pic_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.Name, player.TeamID, player.Role, player.ProfilePicKey,
	).Scan(&player.ID, &player.CreatedAt)
	return r.handlePlayerError(err)
}

// BulkCreate вставляет всех игроков в одной транзакции: либо весь список,
// либо ничего (аналог insertMany до первой ошибки не годится).
func (r *postgresPlayerRepository) BulkCreate(ctx context.Context, players []*models.Player) error {
	if len(players) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO players (name, team_id, role, profile_pic_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, player := range players {
		err = stmt.QueryRowContext(ctx,
			player.Name, player.TeamID, player.Role, player.ProfilePicKey,
		).Scan(&player.ID, &player.CreatedAt)
		if err != nil {
			return r.handlePlayerError(err)
		}
	}
	return tx.Commit()
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, name, team_id, role, profile_pic_key, created_at
		FROM players WHERE id = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID, &player.Name, &player.TeamID, &player.Role,
		&player.ProfilePicKey, &player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	// Имя команды подтягивается сразу, чтобы списку игроков не требовались
	// дополнительные запросы (populate("team", "name") в старом API).
	query := `
		SELECT p.id, p.name, p.team_id, p.role, p.profile_pic_key, p.created_at, t.name
		FROM players p
		JOIN teams t ON p.team_id = t.id
		ORDER BY p.name ASC`

	return r.queryPlayersWithTeam(ctx, query)
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	query := `
		SELECT p.id, p.name, p.team_id, p.role, p.profile_pic_key, p.created_at, t.name
		FROM players p
		JOIN teams t ON p.team_id = t.id
		WHERE p.team_id = $1
		ORDER BY p.name ASC`

	return r.queryPlayersWithTeam(ctx, query, teamID)
}

func (r *postgresPlayerRepository) queryPlayersWithTeam(ctx context.Context, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var player models.Player
		var teamName string
		if scanErr := rows.Scan(
			&player.ID, &player.Name, &player.TeamID, &player.Role,
			&player.ProfilePicKey, &player.CreatedAt, &teamName,
		); scanErr != nil {
			return nil, scanErr
		}
		player.Team = &models.Team{ID: player.TeamID, Name: teamName}
		players = append(players, &player)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) UpdateProfilePicKey(ctx context.Context, id int, key *string) error {
	query := `UPDATE players SET profile_pic_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, key, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM players WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == "players_team_id_fkey" {
			return ErrPlayerTeamInvalid
		}
	}
	return err
}
