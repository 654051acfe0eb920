package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsports/tournament-engine/live"
	"github.com/schoolsports/tournament-engine/models"
)

func startedFixture(t *testing.T, env *testEnv, tournament *models.Tournament, coach *models.User) *models.Fixture {
	t.Helper()
	f := fixturesInRound(env, tournament.ID, 1)[0]
	started, err := env.fixtures.Start(context.Background(), coach, f.ID)
	require.NoError(t, err)
	return started
}

func TestLogEventRequiresModerator(t *testing.T) {
	env := newTestEnv(1)
	tournament, coach := setupTournament(t, env, 4)
	f := startedFixture(t, env, tournament, coach)

	_, err := env.scores.LogEvent(context.Background(), coach, f.ID, LogEventInput{
		EventType:       models.EventGoal,
		ParticipationID: *f.Participation1ID,
	})
	assert.ErrorIs(t, err, ErrModeratorOnly)
}

func TestLogEventValidation(t *testing.T) {
	env := newTestEnv(2)
	tournament, coach := setupTournament(t, env, 4)
	f := startedFixture(t, env, tournament, coach)
	moderator := &models.User{ID: 600, Role: models.RoleStudent, Moderator: true}

	_, err := env.scores.LogEvent(context.Background(), moderator, f.ID, LogEventInput{
		EventType:       "OwnGoal",
		ParticipationID: *f.Participation1ID,
	})
	assert.ErrorIs(t, err, ErrInvalidEventType)

	_, err = env.scores.LogEvent(context.Background(), moderator, f.ID, LogEventInput{
		EventType:       models.EventGoal,
		ParticipationID: 98765,
	})
	assert.ErrorIs(t, err, ErrTeamNotInFixture)

	_, err = env.scores.LogEvent(context.Background(), moderator, 99999, LogEventInput{
		EventType:       models.EventGoal,
		ParticipationID: 1,
	})
	assert.ErrorIs(t, err, ErrFixtureNotFound)
}

func TestLogGoalUpdatesRunningScore(t *testing.T) {
	env := newTestEnv(3)
	tournament, coach := setupTournament(t, env, 4)
	f := startedFixture(t, env, tournament, coach)
	moderator := &models.User{ID: 600, Role: models.RoleStudent, Moderator: true}

	_, err := env.scores.LogEvent(context.Background(), moderator, f.ID, LogEventInput{
		EventType:       models.EventGoal,
		ParticipationID: *f.Participation1ID,
	})
	require.NoError(t, err)

	details, err := env.scores.GetMatchDetails(context.Background(), f.ID)
	require.NoError(t, err)
	require.NotNil(t, details.Result)
	assert.Equal(t, "1", details.Result.HomeScore)
	assert.Equal(t, "0", details.Result.AwayScore)
	assert.Equal(t, "1-0", details.Result.FinalScore)
	assert.Equal(t, models.FixtureLive, details.Fixture.Status)

	_, err = env.scores.LogEvent(context.Background(), moderator, f.ID, LogEventInput{
		EventType:       models.EventGoal,
		ParticipationID: *f.Participation2ID,
	})
	require.NoError(t, err)

	details, err = env.scores.GetMatchDetails(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, "1-1", details.Result.FinalScore)
	assert.Len(t, details.ScoreLog, 2)
}

func TestLogCardLeavesScoreUntouched(t *testing.T) {
	env := newTestEnv(4)
	tournament, coach := setupTournament(t, env, 4)
	f := startedFixture(t, env, tournament, coach)
	moderator := &models.User{ID: 600, Role: models.RoleStudent, Moderator: true}

	player := 77
	entry, err := env.scores.LogEvent(context.Background(), moderator, f.ID, LogEventInput{
		EventType:       models.EventYellowCard,
		ParticipationID: *f.Participation2ID,
		PlayerID:        &player,
	})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, models.EventYellowCard, entry.EventType)

	details, err := env.scores.GetMatchDetails(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, "0-0", details.Result.FinalScore)
	require.Len(t, details.ScoreLog, 1)
	require.NotNil(t, details.ScoreLog[0].PlayerID)
	assert.Equal(t, player, *details.ScoreLog[0].PlayerID)
}

func TestLogEventSkipsEntryWhenPlayersNotTracked(t *testing.T) {
	env := newTestEnv(5)
	coach := &models.User{ID: 500, Role: models.RoleCoach, SchoolID: 1}
	moderator := &models.User{ID: 600, Role: models.RoleStudent, Moderator: true}

	a, _ := env.seedSchoolWithTeam("North")
	b := env.seedSchoolWithoutTeam("South")
	tournament, err := env.tournaments.Create(context.Background(), coach, createInput([]int{a, b}))
	require.NoError(t, err)

	f := fixturesInRound(env, tournament.ID, 1)[0]
	require.False(t, f.PlayersTracked)
	_, err = env.fixtures.Start(context.Background(), coach, f.ID)
	require.NoError(t, err)

	entry, err := env.scores.LogEvent(context.Background(), moderator, f.ID, LogEventInput{
		EventType:       models.EventGoal,
		ParticipationID: *f.Participation1ID,
	})
	require.NoError(t, err)
	assert.Nil(t, entry, "no per-player entry for untracked fixtures")

	details, err := env.scores.GetMatchDetails(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Empty(t, details.ScoreLog)
	assert.Equal(t, "1-0", details.Result.FinalScore, "the score still updates")
}

func TestLogEventBroadcastsToSubscribers(t *testing.T) {
	env := newTestEnv(6)
	tournament, coach := setupTournament(t, env, 4)
	f := startedFixture(t, env, tournament, coach)
	moderator := &models.User{ID: 600, Role: models.RoleStudent, Moderator: true}

	sub := env.hub.Subscribe(live.FixtureTopic(f.ID))
	defer sub.Close()

	_, err := env.scores.LogEvent(context.Background(), moderator, f.ID, LogEventInput{
		EventType:       models.EventGoal,
		ParticipationID: *f.Participation1ID,
	})
	require.NoError(t, err)

	raw := <-sub.C
	var payload ScoreBroadcast
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, f.ID, payload.FixtureID)
	assert.Equal(t, models.EventGoal, payload.EventType)
	assert.Equal(t, "1-0", payload.FinalScore)
}

func TestGetMatchDetailsBeforeStart(t *testing.T) {
	env := newTestEnv(7)
	tournament, _ := setupTournament(t, env, 4)
	f := fixturesInRound(env, tournament.ID, 1)[0]

	details, err := env.scores.GetMatchDetails(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Nil(t, details.Result, "a fixture that never started has no result")
	assert.Empty(t, details.ScoreLog)

	_, err = env.scores.GetMatchDetails(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrFixtureNotFound)
}
