package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/Dosada05/kabaddi-league/services"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type leaderboardFixture struct {
	matchRepo  *fakeMatchRepo
	playerRepo *fakePlayerRepo
	teamRepo   *fakeTeamRepo
	svc        services.LeaderboardService
}

func newLeaderboardFixture(t *testing.T) *leaderboardFixture {
	t.Helper()

	f := &leaderboardFixture{
		matchRepo:  newFakeMatchRepo(),
		playerRepo: newFakePlayerRepo(),
		teamRepo:   newFakeTeamRepo(),
	}
	f.svc = services.NewLeaderboardService(
		f.matchRepo, f.playerRepo, f.teamRepo, &fakeUploader{}, testLogger,
	)
	return f
}

// addPlayer заводит игрока и команду под него, если команды ещё нет.
func (f *leaderboardFixture) addPlayer(t *testing.T, name string, teamID int) *models.Player {
	t.Helper()
	ctx := context.Background()
	if _, err := f.teamRepo.GetByID(ctx, teamID); err != nil {
		for {
			team := &models.Team{Name: fmt.Sprintf("Team %d", f.teamRepo.nextID+1)}
			require.NoError(t, f.teamRepo.Create(ctx, team))
			if team.ID == teamID {
				break
			}
		}
	}
	player := &models.Player{Name: name, TeamID: teamID}
	require.NoError(t, f.playerRepo.Create(ctx, player))
	return player
}

func raidLine(matchID, playerID int, points ...int) models.StatLine {
	return models.StatLine{MatchID: matchID, PlayerID: playerID, RaidPoints: points}
}

func defenseLine(matchID, playerID int, points ...int) models.StatLine {
	return models.StatLine{MatchID: matchID, PlayerID: playerID, DefensePoints: points}
}

func names(entries []models.LeaderboardEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

// =============================================================================
// RANKING
// =============================================================================

func TestLeaderboard_OrdersByTotalPointsDesc(t *testing.T) {
	f := newLeaderboardFixture(t)
	low := f.addPlayer(t, "Low", 1)
	mid := f.addPlayer(t, "Mid", 1)
	high := f.addPlayer(t, "High", 2)

	f.matchRepo.lines = []models.StatLine{
		raidLine(1, low.ID, 2),
		raidLine(1, mid.ID, 3, 4),
		raidLine(1, high.ID, 5, 5),
	}

	entries, err := f.svc.TopRaiders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"High", "Mid", "Low"}, names(entries))
	assert.Equal(t, 10, entries[0].TotalPoints)
}

func TestLeaderboard_TieBreakPrefersFewerMatches(t *testing.T) {
	f := newLeaderboardFixture(t)
	grinder := f.addPlayer(t, "Grinder", 1)
	sniper := f.addPlayer(t, "Sniper", 2)

	// По 30 очков у обоих: 3 матча против 2 — выше тот, кто набрал
	// за меньшее число матчей.
	f.matchRepo.lines = []models.StatLine{
		raidLine(1, grinder.ID, 10),
		raidLine(2, grinder.ID, 10),
		raidLine(3, grinder.ID, 10),
		raidLine(1, sniper.ID, 15),
		raidLine(2, sniper.ID, 15),
	}

	entries, err := f.svc.TopRaiders(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Sniper", entries[0].Name)
	assert.Equal(t, 2, entries[0].MatchesPlayed)
	assert.Equal(t, "Grinder", entries[1].Name)
	assert.Equal(t, 3, entries[1].MatchesPlayed)
}

func TestLeaderboard_ExcludesZeroAndNegativeTotals(t *testing.T) {
	f := newLeaderboardFixture(t)
	scorer := f.addPlayer(t, "Scorer", 1)
	idle := f.addPlayer(t, "Idle", 1)
	adjusted := f.addPlayer(t, "Adjusted", 2)

	f.matchRepo.lines = []models.StatLine{
		raidLine(1, scorer.ID, 1),
		raidLine(1, idle.ID),
		// История после корректировок может уйти в минус.
		raidLine(1, adjusted.ID, 2, -5),
	}

	entries, err := f.svc.TopRaiders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Scorer"}, names(entries))
}

func TestLeaderboard_CapsAtTopTen(t *testing.T) {
	f := newLeaderboardFixture(t)

	var lines []models.StatLine
	for i := 0; i < 15; i++ {
		player := f.addPlayer(t, fmt.Sprintf("Raider %d", i+1), 1)
		lines = append(lines, raidLine(1, player.ID, i+1))
	}
	f.matchRepo.lines = lines

	entries, err := f.svc.TopRaiders(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, services.LeaderboardSize)
	assert.Equal(t, "Raider 15", entries[0].Name)
	assert.Equal(t, "Raider 6", entries[9].Name)
}

// matchesPlayed учитывает каждую запись статистики игрока, включая
// матчи, где очков этой категории не было. Тай-брейк опирается именно
// на этот счётчик.
func TestLeaderboard_MatchesPlayedCountsAllStatEntries(t *testing.T) {
	f := newLeaderboardFixture(t)
	raider := f.addPlayer(t, "Raider", 1)

	f.matchRepo.lines = []models.StatLine{
		raidLine(1, raider.ID, 5),
		defenseLine(2, raider.ID, 3),
		raidLine(3, raider.ID),
	}

	entries, err := f.svc.TopRaiders(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].TotalPoints, "only raid points counted")
	assert.Equal(t, 3, entries[0].MatchesPlayed, "every stat entry counted")
}

func TestLeaderboard_RaidersAndDefendersAreSeparateBoards(t *testing.T) {
	f := newLeaderboardFixture(t)
	raider := f.addPlayer(t, "Raider", 1)
	stopper := f.addPlayer(t, "Stopper", 2)

	f.matchRepo.lines = []models.StatLine{
		raidLine(1, raider.ID, 7),
		defenseLine(1, stopper.ID, 4),
	}

	raiders, err := f.svc.TopRaiders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Raider"}, names(raiders))

	defenders, err := f.svc.TopDefenders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Stopper"}, names(defenders))
}

func TestLeaderboard_EmptyHistory(t *testing.T) {
	f := newLeaderboardFixture(t)

	entries, err := f.svc.TopRaiders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// =============================================================================
// ENRICHMENT
// =============================================================================

func TestLeaderboard_EnrichesWithTeamNameAndAvatar(t *testing.T) {
	f := newLeaderboardFixture(t)
	player := f.addPlayer(t, "Pawan", 1)
	key := "players/1/profile.jpg"
	require.NoError(t, f.playerRepo.UpdateProfilePicKey(context.Background(), player.ID, &key))

	f.matchRepo.lines = []models.StatLine{raidLine(1, player.ID, 12)}

	entries, err := f.svc.TopRaiders(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Team 1", entries[0].TeamName)
	require.NotNil(t, entries[0].ProfilePicURL)
	assert.Equal(t, "https://cdn.test/"+key, *entries[0].ProfilePicURL)
}

func TestLeaderboard_DropsEntriesForDeletedPlayers(t *testing.T) {
	f := newLeaderboardFixture(t)
	kept := f.addPlayer(t, "Kept", 1)
	gone := f.addPlayer(t, "Gone", 1)
	require.NoError(t, f.playerRepo.Delete(context.Background(), gone.ID))

	f.matchRepo.lines = []models.StatLine{
		raidLine(1, kept.ID, 3),
		raidLine(1, gone.ID, 9),
	}

	entries, err := f.svc.TopRaiders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Kept"}, names(entries))
}
