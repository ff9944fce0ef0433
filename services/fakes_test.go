package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/Dosada05/kabaddi-league/repositories"
	"github.com/Dosada05/kabaddi-league/storage"
)

// =============================================================================
// IN-MEMORY FAKES
// =============================================================================

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeTxRunner выполняет функцию без настоящей транзакции; откат
// проверяется отдельно на уровне репозиториев.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	nextID  int
	statSeq int
	matches map[int]*models.Match

	// lines подставляется напрямую в тестах лидерборда; при nil
	// ListStatLines собирает записи из matches.
	lines []models.StatLine

	failUpdateScores error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match)}
}

func copyMatch(m *models.Match) *models.Match {
	out := *m
	out.PlayerStats = make([]models.PlayerStat, len(m.PlayerStats))
	for i, stat := range m.PlayerStats {
		stat.RaidPoints = append([]int{}, stat.RaidPoints...)
		stat.DefensePoints = append([]int{}, stat.DefensePoints...)
		out.PlayerStats[i] = stat
	}
	return &out
}

func (r *fakeMatchRepo) Create(_ context.Context, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.matches {
		if existing.MatchNumber == match.MatchNumber {
			return repositories.ErrMatchNumberConflict
		}
	}
	r.nextID++
	match.ID = r.nextID
	r.matches[match.ID] = copyMatch(match)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(match), nil
}

func (r *fakeMatchRepo) List(_ context.Context) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0, len(r.matches))
	for id := 1; id <= r.nextID; id++ {
		if match, ok := r.matches[id]; ok {
			out = append(out, copyMatch(match))
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, id int, status models.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Status = status
	return nil
}

func (r *fakeMatchRepo) SetHalfTime(_ context.Context, id int, halfTime bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.HalfTime = halfTime
	return nil
}

func (r *fakeMatchRepo) SetMat(_ context.Context, id int, teamAMat, teamBMat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.TeamAMat = teamAMat
	match.TeamBMat = teamBMat
	return nil
}

func (r *fakeMatchRepo) UpdateScores(_ context.Context, _ repositories.SQLExecutor, id, teamAScore, teamBScore int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdateScores != nil {
		return r.failUpdateScores
	}
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.TeamAScore = teamAScore
	match.TeamBScore = teamBScore
	return nil
}

func (r *fakeMatchRepo) CreateStat(_ context.Context, stat *models.PlayerStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[stat.MatchID]
	if !ok {
		return repositories.ErrStatNotFound
	}
	for _, existing := range match.PlayerStats {
		if existing.PlayerID == stat.PlayerID {
			return repositories.ErrStatConflict
		}
	}
	r.statSeq++
	stat.ID = r.statSeq
	match.PlayerStats = append(match.PlayerStats, *stat)
	return nil
}

func (r *fakeMatchRepo) UpdateStatPoints(_ context.Context, _ repositories.SQLExecutor, statID int, category models.PointCategory, points []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, match := range r.matches {
		for i := range match.PlayerStats {
			if match.PlayerStats[i].ID != statID {
				continue
			}
			if category == models.CategoryDefense {
				match.PlayerStats[i].DefensePoints = append([]int{}, points...)
			} else {
				match.PlayerStats[i].RaidPoints = append([]int{}, points...)
			}
			return nil
		}
	}
	return repositories.ErrStatNotFound
}

func (r *fakeMatchRepo) ListStatLines(_ context.Context) ([]models.StatLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lines != nil {
		return append([]models.StatLine{}, r.lines...), nil
	}
	var out []models.StatLine
	for id := 1; id <= r.nextID; id++ {
		match, ok := r.matches[id]
		if !ok {
			continue
		}
		for _, stat := range match.PlayerStats {
			out = append(out, models.StatLine{
				MatchID:       stat.MatchID,
				PlayerID:      stat.PlayerID,
				RaidPoints:    append([]int{}, stat.RaidPoints...),
				DefensePoints: append([]int{}, stat.DefensePoints...),
			})
		}
	}
	return out, nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	nextID  int
	players map[int]*models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int]*models.Player)}
}

func (r *fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	player.ID = r.nextID
	clone := *player
	r.players[player.ID] = &clone
	return nil
}

func (r *fakePlayerRepo) BulkCreate(ctx context.Context, players []*models.Player) error {
	for _, player := range players {
		if err := r.Create(ctx, player); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	clone := *player
	return &clone, nil
}

func (r *fakePlayerRepo) List(_ context.Context) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Player, 0, len(r.players))
	for id := 1; id <= r.nextID; id++ {
		if player, ok := r.players[id]; ok {
			clone := *player
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) ListByTeam(_ context.Context, teamID int) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Player
	for id := 1; id <= r.nextID; id++ {
		if player, ok := r.players[id]; ok && player.TeamID == teamID {
			clone := *player
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) UpdateProfilePicKey(_ context.Context, id int, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	player.ProfilePicKey = key
	return nil
}

func (r *fakePlayerRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, id)
	return nil
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	nextID int
	teams  map[int]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team)}
}

func (r *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	r.nextID++
	team.ID = r.nextID
	clone := *team
	r.teams[team.ID] = &clone
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	clone := *team
	return &clone, nil
}

func (r *fakeTeamRepo) List(_ context.Context) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Team, 0, len(r.teams))
	for id := 1; id <= r.nextID; id++ {
		if team, ok := r.teams[id]; ok {
			clone := *team
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

type fakeUploader struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, _ io.Reader) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploaded = append(u.uploaded, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	rooms    []string
	messages []interface{}
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rooms = append(b.rooms, roomID)
	b.messages = append(b.messages, message)
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (i *fakeInvalidator) Invalidate() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls++
}

func (i *fakeInvalidator) count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}
