package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchNumberConflict = errors.New("match number already in use")
	ErrMatchTeamInvalid    = errors.New("match team conflict or invalid")
	ErrStatConflict        = errors.New("player already has a stat entry in this match")
	ErrStatNotFound        = errors.New("player stat entry not found")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	// GetByID загружает матч целиком, вместе с записями playerStats.
	// Принимает SQLExecutor, чтобы чтение могло идти внутри транзакции
	// операции начисления очков.
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	List(ctx context.Context) ([]*models.Match, error)
	UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error
	SetHalfTime(ctx context.Context, id int, halfTime bool) error
	SetMat(ctx context.Context, id int, teamAMat, teamBMat int) error
	UpdateScores(ctx context.Context, exec SQLExecutor, id int, teamAScore, teamBScore int) error
	CreateStat(ctx context.Context, stat *models.PlayerStat) error
	UpdateStatPoints(ctx context.Context, exec SQLExecutor, statID int, category models.PointCategory, points []int) error
	// ListStatLines возвращает плоский список записей (матч, игрок) по всей
	// истории матчей — вход агрегации лидерборда.
	ListStatLines(ctx context.Context) ([]models.StatLine, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches
			(match_number, team_a_id, team_b_id, team_a_score, team_b_score,
			 match_type, date, status, match_order, half_time, team_a_mat, team_b_mat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		match.MatchNumber,
		match.TeamAID,
		match.TeamBID,
		match.TeamAScore,
		match.TeamBScore,
		match.MatchType,
		match.Date,
		match.Status,
		match.Order,
		match.HalfTime,
		match.TeamAMat,
		match.TeamBMat,
	).Scan(&match.ID)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, match_number, team_a_id, team_b_id, team_a_score, team_b_score,
		       match_type, date, status, match_order, half_time, team_a_mat, team_b_mat
		FROM matches
		WHERE id = $1`

	match := &models.Match{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.MatchNumber,
		&match.TeamAID,
		&match.TeamBID,
		&match.TeamAScore,
		&match.TeamBScore,
		&match.MatchType,
		&match.Date,
		&match.Status,
		&match.Order,
		&match.HalfTime,
		&match.TeamAMat,
		&match.TeamBMat,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	stats, err := r.listStatsByMatch(ctx, executor, id)
	if err != nil {
		return nil, err
	}
	match.PlayerStats = stats

	return match, nil
}

func (r *postgresMatchRepository) listStatsByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.PlayerStat, error) {
	query := `
		SELECT id, match_id, player_id, raid_points, defense_points
		FROM player_stats
		WHERE match_id = $1
		ORDER BY id ASC`

	rows, err := exec.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]models.PlayerStat, 0)
	for rows.Next() {
		var stat models.PlayerStat
		var raid, defense pq.Int64Array
		if scanErr := rows.Scan(&stat.ID, &stat.MatchID, &stat.PlayerID, &raid, &defense); scanErr != nil {
			return nil, scanErr
		}
		stat.RaidPoints = fromInt64Array(raid)
		stat.DefensePoints = fromInt64Array(defense)
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func (r *postgresMatchRepository) List(ctx context.Context) ([]*models.Match, error) {
	query := `
		SELECT id, match_number, team_a_id, team_b_id, team_a_score, team_b_score,
		       match_type, date, status, match_order, half_time, team_a_mat, team_b_mat
		FROM matches
		ORDER BY match_order ASC, date ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(
			&match.ID,
			&match.MatchNumber,
			&match.TeamAID,
			&match.TeamBID,
			&match.TeamAScore,
			&match.TeamBScore,
			&match.MatchType,
			&match.Date,
			&match.Status,
			&match.Order,
			&match.HalfTime,
			&match.TeamAMat,
			&match.TeamBMat,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, &match)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetHalfTime(ctx context.Context, id int, halfTime bool) error {
	query := `UPDATE matches SET half_time = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, halfTime, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetMat(ctx context.Context, id int, teamAMat, teamBMat int) error {
	query := `UPDATE matches SET team_a_mat = $1, team_b_mat = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, teamAMat, teamBMat, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateScores(ctx context.Context, exec SQLExecutor, id int, teamAScore, teamBScore int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET team_a_score = $1, team_b_score = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, teamAScore, teamBScore, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CreateStat(ctx context.Context, stat *models.PlayerStat) error {
	query := `
		INSERT INTO player_stats (match_id, player_id, raid_points, defense_points)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		stat.MatchID,
		stat.PlayerID,
		toInt64Array(stat.RaidPoints),
		toInt64Array(stat.DefensePoints),
	).Scan(&stat.ID)

	return r.handleStatError(err)
}

func (r *postgresMatchRepository) UpdateStatPoints(ctx context.Context, exec SQLExecutor, statID int, category models.PointCategory, points []int) error {
	executor := r.getExecutor(exec)

	column := "raid_points"
	if category == models.CategoryDefense {
		column = "defense_points"
	}
	query := `UPDATE player_stats SET ` + column + ` = $1 WHERE id = $2`

	result, err := executor.ExecContext(ctx, query, toInt64Array(points), statID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStatNotFound)
}

func (r *postgresMatchRepository) ListStatLines(ctx context.Context) ([]models.StatLine, error) {
	query := `
		SELECT match_id, player_id, raid_points, defense_points
		FROM player_stats
		ORDER BY match_id ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]models.StatLine, 0)
	for rows.Next() {
		var line models.StatLine
		var raid, defense pq.Int64Array
		if scanErr := rows.Scan(&line.MatchID, &line.PlayerID, &raid, &defense); scanErr != nil {
			return nil, scanErr
		}
		line.RaidPoints = fromInt64Array(raid)
		line.DefensePoints = fromInt64Array(defense)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "matches_match_number_key" {
				return ErrMatchNumberConflict
			}
		case "23503": // foreign_key_violation
			switch pqErr.Constraint {
			case "matches_team_a_id_fkey", "matches_team_b_id_fkey":
				return ErrMatchTeamInvalid
			}
		}
	}
	return err
}

func (r *postgresMatchRepository) handleStatError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "player_stats_match_id_player_id_key" {
				return ErrStatConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "player_stats_match_id_fkey":
				return ErrMatchNotFound
			case "player_stats_player_id_fkey":
				return ErrPlayerNotFound
			}
		}
	}
	return err
}
