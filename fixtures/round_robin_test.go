package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/myckhel/turfHub-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leagueStage(settings *models.LeagueSettings) *models.Stage {
	return &models.Stage{
		ID:       1,
		Type:     models.StageTypeLeague,
		Status:   models.StageStatusPending,
		Settings: models.StageSettings{Scoring: models.DefaultScoring, League: settings},
	}
}

func stageTeams(ids ...int) []*models.StageTeam {
	teams := make([]*models.StageTeam, 0, len(ids))
	for seed, id := range ids {
		teams = append(teams, &models.StageTeam{ID: id, StageID: 1, TeamID: id, Seed: seed + 1})
	}
	return teams
}

func TestRoundRobinEveryPairOnce(t *testing.T) {
	gen := NewRoundRobinGenerator()
	teams := stageTeams(10, 20, 30, 40, 50)

	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Stage: leagueStage(nil),
		Teams: teams,
	})
	require.NoError(t, err)
	require.Len(t, fixtures, 10) // C(5,2)

	seen := make(map[[2]int]int)
	for _, f := range fixtures {
		require.NotNil(t, f.TeamAID)
		require.NotNil(t, f.TeamBID)
		a, b := *f.TeamAID, *f.TeamBID
		if a > b {
			a, b = b, a
		}
		seen[[2]int{a, b}]++
		assert.Equal(t, models.FixtureStatusUpcoming, f.Status)
		assert.Equal(t, 1, f.Round)
		assert.Equal(t, "Round 1", f.RoundLabel)
	}
	assert.Len(t, seen, 10)
	for pair, count := range seen {
		assert.Equal(t, 1, count, "pair %v generated more than once", pair)
	}
}

func TestRoundRobinHomeAndAwayDoubles(t *testing.T) {
	gen := NewRoundRobinGenerator()
	teams := stageTeams(1, 2, 3, 4)

	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Stage: leagueStage(&models.LeagueSettings{Rounds: 1, HomeAndAway: true}),
		Teams: teams,
	})
	require.NoError(t, err)
	require.Len(t, fixtures, 12) // C(4,2) * 2

	directed := make(map[[2]int]int)
	for _, f := range fixtures {
		directed[[2]int{*f.TeamAID, *f.TeamBID}]++
	}
	assert.Len(t, directed, 12)
	assert.Equal(t, 1, directed[[2]int{1, 2}])
	assert.Equal(t, 1, directed[[2]int{2, 1}])
}

func TestRoundRobinMultipleRounds(t *testing.T) {
	gen := NewRoundRobinGenerator()
	teams := stageTeams(1, 2, 3)

	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Stage: leagueStage(&models.LeagueSettings{Rounds: 2}),
		Teams: teams,
	})
	require.NoError(t, err)
	require.Len(t, fixtures, 6)

	byRound := make(map[int]int)
	for _, f := range fixtures {
		byRound[f.Round]++
	}
	assert.Equal(t, map[int]int{1: 3, 2: 3}, byRound)
	assert.Equal(t, "Round 2", fixtures[5].RoundLabel)
}

func TestRoundRobinInsufficientTeams(t *testing.T) {
	gen := NewRoundRobinGenerator()

	_, err := gen.Generate(context.Background(), GenerateParams{
		Stage: leagueStage(nil),
		Teams: stageTeams(1),
	})
	require.ErrorIs(t, err, ErrInsufficientTeams)
}

func TestRoundRobinSequentialScheduling(t *testing.T) {
	gen := NewRoundRobinGenerator()
	stage := leagueStage(nil)
	stage.Settings.MatchDuration = 30
	stage.Settings.MatchInterval = 10
	kickoff := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Stage:   stage,
		Teams:   stageTeams(1, 2, 3),
		Kickoff: kickoff,
	})
	require.NoError(t, err)
	require.Len(t, fixtures, 3)

	assert.Equal(t, kickoff, fixtures[0].StartsAt)
	assert.Equal(t, kickoff.Add(40*time.Minute), fixtures[1].StartsAt)
	assert.Equal(t, kickoff.Add(80*time.Minute), fixtures[2].StartsAt)
	assert.Equal(t, 30, fixtures[0].Duration)
}

func TestRoundRobinDeterministic(t *testing.T) {
	gen := NewRoundRobinGenerator()
	// Shuffled input order must not change the output: seeds decide.
	teams := []*models.StageTeam{
		{TeamID: 3, Seed: 3}, {TeamID: 1, Seed: 1}, {TeamID: 2, Seed: 2},
	}
	params := GenerateParams{Stage: leagueStage(nil), Teams: teams}

	first, err := gen.Generate(context.Background(), params)
	require.NoError(t, err)
	second, err := gen.Generate(context.Background(), params)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].BracketUID, second[i].BracketUID)
		assert.Equal(t, *first[i].TeamAID, *second[i].TeamAID)
		assert.Equal(t, *first[i].TeamBID, *second[i].TeamBID)
	}
	assert.Equal(t, 1, *first[0].TeamAID)
	assert.Equal(t, 2, *first[0].TeamBID)
}

func TestRoundRobinGrouped(t *testing.T) {
	groupA, groupB := 100, 200
	stage := &models.Stage{
		ID:     2,
		Type:   models.StageTypeGroup,
		Status: models.StageStatusPending,
		Settings: models.StageSettings{
			Scoring: models.DefaultScoring,
			Group:   &models.GroupSettings{GroupsCount: 2, Rounds: 1},
		},
	}
	teams := []*models.StageTeam{
		{TeamID: 1, Seed: 1, GroupID: &groupA},
		{TeamID: 2, Seed: 2, GroupID: &groupB},
		{TeamID: 3, Seed: 3, GroupID: &groupA},
		{TeamID: 4, Seed: 4, GroupID: &groupB},
		{TeamID: 5, Seed: 5, GroupID: &groupA},
	}
	groups := []*models.Group{
		{ID: groupA, StageID: 2, Name: "Group A", Position: 1},
		{ID: groupB, StageID: 2, Name: "Group B", Position: 2},
	}

	gen := NewRoundRobinGenerator()
	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Stage:  stage,
		Teams:  teams,
		Groups: groups,
	})
	require.NoError(t, err)
	require.Len(t, fixtures, 4) // C(3,2) + C(2,2)

	perGroup := make(map[int]int)
	for _, f := range fixtures {
		require.NotNil(t, f.GroupID)
		perGroup[*f.GroupID]++
	}
	assert.Equal(t, 3, perGroup[groupA])
	assert.Equal(t, 1, perGroup[groupB])
}

func TestRoundRobinGroupedRejectsUnassignedTeam(t *testing.T) {
	groupA := 100
	stage := &models.Stage{
		ID:   2,
		Type: models.StageTypeGroup,
		Settings: models.StageSettings{
			Scoring: models.DefaultScoring,
			Group:   &models.GroupSettings{GroupsCount: 2, Rounds: 1},
		},
	}
	teams := []*models.StageTeam{
		{TeamID: 1, Seed: 1, GroupID: &groupA},
		{TeamID: 2, Seed: 2}, // no group
	}
	groups := []*models.Group{
		{ID: groupA, Name: "Group A", Position: 1},
		{ID: 200, Name: "Group B", Position: 2},
	}

	gen := NewRoundRobinGenerator()
	_, err := gen.Generate(context.Background(), GenerateParams{Stage: stage, Teams: teams, Groups: groups})
	require.ErrorIs(t, err, ErrInvalidGroupConfiguration)
}

func TestRoundRobinGroupedRequiresTwoGroups(t *testing.T) {
	stage := &models.Stage{
		ID:   2,
		Type: models.StageTypeGroup,
		Settings: models.StageSettings{
			Scoring: models.DefaultScoring,
			Group:   &models.GroupSettings{GroupsCount: 2, Rounds: 1},
		},
	}
	gen := NewRoundRobinGenerator()
	_, err := gen.Generate(context.Background(), GenerateParams{
		Stage:  stage,
		Teams:  stageTeams(1, 2),
		Groups: []*models.Group{{ID: 100, Name: "Group A", Position: 1}},
	})
	require.ErrorIs(t, err, ErrInvalidGroupConfiguration)
}
