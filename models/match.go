package models

import "time"

type MatchStatus string

const (
	MatchStatusUpcoming  MatchStatus = "Upcoming"
	MatchStatusOngoing   MatchStatus = "Ongoing"
	MatchStatusCompleted MatchStatus = "Completed"
)

// PointCategory разделяет очки рейда и очки защиты.
type PointCategory string

const (
	CategoryRaid    PointCategory = "raid"
	CategoryDefense PointCategory = "defense"
)

func (c PointCategory) Valid() bool {
	return c == CategoryRaid || c == CategoryDefense
}

const DefaultMatPlayers = 7

type Match struct {
	ID          int         `json:"id" db:"id"`
	MatchNumber int         `json:"match_number" db:"match_number"`
	TeamAID     int         `json:"team_a_id" db:"team_a_id"`
	TeamBID     int         `json:"team_b_id" db:"team_b_id"`
	TeamAScore  int         `json:"team_a_score" db:"team_a_score"`
	TeamBScore  int         `json:"team_b_score" db:"team_b_score"`
	MatchType   string      `json:"match_type" db:"match_type"`
	Date        time.Time   `json:"date" db:"date"`
	Status      MatchStatus `json:"status" db:"status"`
	Order       int         `json:"order" db:"match_order"`
	HalfTime    bool        `json:"half_time" db:"half_time"`
	TeamAMat    int         `json:"team_a_mat" db:"team_a_mat"`
	TeamBMat    int         `json:"team_b_mat" db:"team_b_mat"`

	PlayerStats []PlayerStat `json:"player_stats" db:"-"`

	// Optional linked data, populated by the service layer.
	TeamA *Team `json:"team_a,omitempty" db:"-"`
	TeamB *Team `json:"team_b,omitempty" db:"-"`
}

// StatForPlayer возвращает запись статистики игрока в этом матче, либо nil.
func (m *Match) StatForPlayer(playerID int) *PlayerStat {
	for i := range m.PlayerStats {
		if m.PlayerStats[i].PlayerID == playerID {
			return &m.PlayerStats[i]
		}
	}
	return nil
}

// PlayerStat хранит историю очков одного игрока в одном матче.
// Последовательности append-only, снимается всегда только последний элемент.
type PlayerStat struct {
	ID            int   `json:"id" db:"id"`
	MatchID       int   `json:"match_id" db:"match_id"`
	PlayerID      int   `json:"player_id" db:"player_id"`
	RaidPoints    []int `json:"raid_points" db:"raid_points"`
	DefensePoints []int `json:"defense_points" db:"defense_points"`
}

// PointsFor returns the point sequence for the given category.
func (ps *PlayerStat) PointsFor(category PointCategory) []int {
	if category == CategoryDefense {
		return ps.DefensePoints
	}
	return ps.RaidPoints
}

// StatLine is one flattened (match, player) record, the unit the
// leaderboard aggregation groups over.
type StatLine struct {
	MatchID       int
	PlayerID      int
	RaidPoints    []int
	DefensePoints []int
}
