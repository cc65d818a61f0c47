package fixtures

import (
	"context"
	"testing"

	"github.com/myckhel/turfHub-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swissStage() *models.Stage {
	return &models.Stage{
		ID:     4,
		Type:   models.StageTypeSwiss,
		Status: models.StageStatusActive,
		Settings: models.StageSettings{
			Scoring: models.DefaultScoring,
			Swiss:   &models.SwissSettings{Rounds: 3},
		},
	}
}

func completedSwissFixture(stageID, round, a, b, scoreA, scoreB int) *models.Fixture {
	return &models.Fixture{
		StageID: stageID,
		TeamAID: &a, TeamBID: &b,
		ScoreA: &scoreA, ScoreB: &scoreB,
		Status: models.FixtureStatusCompleted,
		Round:  round,
	}
}

func TestSwissFirstRoundPairsBySeed(t *testing.T) {
	gen := NewSwissGenerator()
	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Stage: swissStage(),
		Teams: stageTeams(1, 2, 3, 4),
	})
	require.NoError(t, err)
	require.Len(t, fixtures, 2)

	assert.Equal(t, 1, fixtures[0].Round)
	assert.Equal(t, 1, *fixtures[0].TeamAID)
	assert.Equal(t, 2, *fixtures[0].TeamBID)
	assert.Equal(t, 3, *fixtures[1].TeamAID)
	assert.Equal(t, 4, *fixtures[1].TeamBID)
}

func TestSwissNextRoundSkipsRematches(t *testing.T) {
	gen := NewSwissGenerator()
	// Round one: 1v2 and 3v4. Standings after: 1, 3, 2, 4.
	prior := []*models.Fixture{
		completedSwissFixture(4, 1, 1, 2, 2, 0),
		completedSwissFixture(4, 1, 3, 4, 1, 0),
	}
	rankings := []*models.Ranking{
		{TeamID: 1, Rank: 1}, {TeamID: 3, Rank: 2}, {TeamID: 2, Rank: 3}, {TeamID: 4, Rank: 4},
	}

	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Stage:         swissStage(),
		Teams:         stageTeams(1, 2, 3, 4),
		Rankings:      rankings,
		PriorFixtures: prior,
	})
	require.NoError(t, err)
	require.Len(t, fixtures, 2)

	assert.Equal(t, 2, fixtures[0].Round)
	// Leaders meet, trailers meet; no pair repeats round one.
	assert.Equal(t, 1, *fixtures[0].TeamAID)
	assert.Equal(t, 3, *fixtures[0].TeamBID)
	assert.Equal(t, 2, *fixtures[1].TeamAID)
	assert.Equal(t, 4, *fixtures[1].TeamBID)
}

func TestSwissAvoidsRematchByLookingFurther(t *testing.T) {
	gen := NewSwissGenerator()
	// After two rounds, 1 has already faced 2 and 3: it must be paired
	// with 4 even though 2 is ranked directly behind it.
	prior := []*models.Fixture{
		completedSwissFixture(4, 1, 1, 2, 1, 0),
		completedSwissFixture(4, 1, 3, 4, 1, 0),
		completedSwissFixture(4, 2, 1, 3, 1, 0),
		completedSwissFixture(4, 2, 2, 4, 1, 0),
	}
	rankings := []*models.Ranking{
		{TeamID: 1, Rank: 1}, {TeamID: 2, Rank: 2}, {TeamID: 3, Rank: 3}, {TeamID: 4, Rank: 4},
	}

	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Stage:         swissStage(),
		Teams:         stageTeams(1, 2, 3, 4),
		Rankings:      rankings,
		PriorFixtures: prior,
	})
	require.NoError(t, err)
	require.Len(t, fixtures, 2)

	assert.Equal(t, 3, fixtures[0].Round)
	assert.Equal(t, 1, *fixtures[0].TeamAID)
	assert.Equal(t, 4, *fixtures[0].TeamBID)
	assert.Equal(t, 2, *fixtures[1].TeamAID)
	assert.Equal(t, 3, *fixtures[1].TeamBID)
}

func TestSwissOddTeamGetsBye(t *testing.T) {
	gen := NewSwissGenerator()
	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Stage: swissStage(),
		Teams: stageTeams(1, 2, 3, 4, 5),
	})
	require.NoError(t, err)
	// Two fixtures; the lowest seed sits the round out without a fixture.
	require.Len(t, fixtures, 2)

	involved := make(map[int]bool)
	for _, f := range fixtures {
		involved[*f.TeamAID] = true
		involved[*f.TeamBID] = true
	}
	assert.False(t, involved[5])
}

func TestSwissFallsBackToRematchWhenForced(t *testing.T) {
	gen := NewSwissGenerator()
	prior := []*models.Fixture{
		completedSwissFixture(4, 1, 1, 2, 1, 0),
	}
	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Stage:         swissStage(),
		Teams:         stageTeams(1, 2),
		PriorFixtures: prior,
	})
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, 2, fixtures[0].Round)
	assert.Equal(t, 1, *fixtures[0].TeamAID)
	assert.Equal(t, 2, *fixtures[0].TeamBID)
}

func TestSwissInsufficientTeams(t *testing.T) {
	gen := NewSwissGenerator()
	_, err := gen.Generate(context.Background(), GenerateParams{
		Stage: swissStage(),
		Teams: stageTeams(1),
	})
	require.ErrorIs(t, err, ErrInsufficientTeams)
}

func TestCustomGeneratorProducesNothing(t *testing.T) {
	gen := NewCustomGenerator()
	fixtures, err := gen.Generate(context.Background(), GenerateParams{
		Stage: &models.Stage{ID: 9, Type: models.StageTypeCustom},
		Teams: stageTeams(1, 2, 3),
	})
	require.NoError(t, err)
	assert.Empty(t, fixtures)
}

func TestForStageType(t *testing.T) {
	cases := []struct {
		stageType models.StageType
		name      string
	}{
		{models.StageTypeLeague, "RoundRobin"},
		{models.StageTypeGroup, "RoundRobin"},
		{models.StageTypeKnockout, "Knockout"},
		{models.StageTypeSwiss, "Swiss"},
		{models.StageTypeCustom, "Custom"},
	}
	for _, tc := range cases {
		gen, err := ForStageType(tc.stageType)
		require.NoError(t, err)
		assert.Equal(t, tc.name, gen.Name())
	}

	_, err := ForStageType(models.StageTypeKingOfHill)
	require.ErrorIs(t, err, ErrUnsupportedStageType)
}
