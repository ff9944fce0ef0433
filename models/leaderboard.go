package models

// LeaderboardEntry is one ranked row of the raiders or defenders board.
// TotalPoints суммируется по выбранной категории, MatchesPlayed считает
// матчи, где у игрока вообще есть запись статистики (в любой категории).
type LeaderboardEntry struct {
	PlayerID      int     `json:"player_id"`
	Name          string  `json:"name"`
	TeamName      string  `json:"team_name"`
	ProfilePicURL *string `json:"profile_pic_url,omitempty"`
	TotalPoints   int     `json:"total_points"`
	MatchesPlayed int     `json:"matches_played"`
}
