package standings

import (
	"encoding/json"
	"testing"

	"github.com/myckhel/turfHub-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStage(breakers ...models.TieBreaker) *models.Stage {
	return &models.Stage{
		ID:     1,
		Type:   models.StageTypeLeague,
		Status: models.StageStatusActive,
		Settings: models.StageSettings{
			Scoring:     models.DefaultScoring,
			TieBreakers: breakers,
		},
	}
}

func testTeams(ids ...int) []*models.StageTeam {
	teams := make([]*models.StageTeam, 0, len(ids))
	for seed, id := range ids {
		teams = append(teams, &models.StageTeam{StageID: 1, TeamID: id, Seed: seed + 1})
	}
	return teams
}

func result(a, b, scoreA, scoreB int) *models.Fixture {
	return &models.Fixture{
		StageID: 1,
		TeamAID: &a, TeamBID: &b,
		ScoreA: &scoreA, ScoreB: &scoreB,
		Status: models.FixtureStatusCompleted,
	}
}

func rowFor(t *testing.T, rows []*models.Ranking, teamID int) *models.Ranking {
	t.Helper()
	for _, row := range rows {
		if row.TeamID == teamID {
			return row
		}
	}
	t.Fatalf("no ranking row for team %d", teamID)
	return nil
}

func TestComputeAccumulatesResults(t *testing.T) {
	stage := testStage(models.TieBreakGoalDifference)
	teams := testTeams(1, 2, 3)
	fixtures := []*models.Fixture{
		result(1, 2, 3, 1), // 1 beats 2
		result(1, 3, 0, 0), // draw
		result(2, 3, 1, 2), // 3 beats 2
	}

	rows, err := Compute(stage, teams, fixtures)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	one := rowFor(t, rows, 1)
	assert.Equal(t, 4, one.Points)
	assert.Equal(t, 2, one.Played)
	assert.Equal(t, 1, one.Wins)
	assert.Equal(t, 1, one.Draws)
	assert.Equal(t, 0, one.Losses)
	assert.Equal(t, 3, one.GoalsFor)
	assert.Equal(t, 1, one.GoalsAgainst)
	assert.Equal(t, 2, one.GoalDifference)
	assert.Equal(t, 1, one.Rank)

	three := rowFor(t, rows, 3)
	assert.Equal(t, 4, three.Points)
	assert.Equal(t, 2, three.Rank) // worse goal difference than team 1

	two := rowFor(t, rows, 2)
	assert.Equal(t, 0, two.Points)
	assert.Equal(t, 3, two.Rank)
}

func TestComputeIgnoresUnfinishedFixtures(t *testing.T) {
	stage := testStage()
	teams := testTeams(1, 2)
	scoreA, scoreB := 2, 1
	a, b := 1, 2
	fixtures := []*models.Fixture{
		{StageID: 1, TeamAID: &a, TeamBID: &b, Status: models.FixtureStatusUpcoming},
		{StageID: 1, TeamAID: &a, TeamBID: &b, ScoreA: &scoreA, ScoreB: &scoreB, Status: models.FixtureStatusInProgress},
		{StageID: 1, TeamAID: &a, TeamBID: &b, Status: models.FixtureStatusCompleted}, // no scores recorded
	}

	rows, err := Compute(stage, teams, fixtures)
	require.NoError(t, err)
	for _, row := range rows {
		assert.Equal(t, 0, row.Played)
		assert.Equal(t, 0, row.Points)
	}
}

func TestComputeSharedRanksSkipPositions(t *testing.T) {
	// Teams 1 and 2 finish identical; with no tie-breakers both take rank 1
	// and team 3 takes rank 3, not 2.
	stage := testStage()
	teams := testTeams(1, 2, 3)
	fixtures := []*models.Fixture{
		result(1, 3, 2, 0),
		result(2, 3, 2, 0),
	}

	rows, err := Compute(stage, teams, fixtures)
	require.NoError(t, err)

	assert.Equal(t, 1, rowFor(t, rows, 1).Rank)
	assert.Equal(t, 1, rowFor(t, rows, 2).Rank)
	assert.Equal(t, 3, rowFor(t, rows, 3).Rank)
}

func TestComputeSeedBreaksAllTies(t *testing.T) {
	stage := testStage(models.TieBreakSeed)
	teams := testTeams(1, 2, 3)

	rows, err := Compute(stage, teams, nil)
	require.NoError(t, err)

	// No results at all: seed order decides and every rank is distinct.
	assert.Equal(t, 1, rowFor(t, rows, 1).Rank)
	assert.Equal(t, 2, rowFor(t, rows, 2).Rank)
	assert.Equal(t, 3, rowFor(t, rows, 3).Rank)
}

func TestComputeHeadToHeadRestrictedToPair(t *testing.T) {
	stage := testStage(models.TieBreakHeadToHead)
	teams := testTeams(1, 2, 3, 4)
	fixtures := []*models.Fixture{
		result(1, 2, 1, 0), // 1 beat 2 directly
		result(2, 4, 9, 0),
		result(3, 1, 2, 0),
		result(3, 2, 1, 0),
	}

	rows, err := Compute(stage, teams, fixtures)
	require.NoError(t, err)

	one := rowFor(t, rows, 1)
	two := rowFor(t, rows, 2)
	require.Equal(t, one.Points, two.Points) // both on 3
	// Overall goal difference favours team 2, but only the direct meeting
	// counts between the tied pair and team 1 won it.
	assert.Equal(t, 1, rowFor(t, rows, 3).Rank)
	assert.Equal(t, 2, one.Rank)
	assert.Equal(t, 3, two.Rank)
	assert.Equal(t, 4, rowFor(t, rows, 4).Rank)
}

func TestComputeFairPlayUsesPenaltyCounts(t *testing.T) {
	stage := testStage(models.TieBreakFairPlay)
	teams := testTeams(1, 2)

	detail, err := json.Marshal(models.ScoreDetail{PenaltyA: 3, PenaltyB: 1})
	require.NoError(t, err)
	raw := string(detail)
	f := result(1, 2, 1, 1)
	f.ScoreDetails = &raw

	rows, err := Compute(stage, teams, []*models.Fixture{f})
	require.NoError(t, err)

	// Drawn fixture, equal points; fewer penalties ranks higher.
	assert.Equal(t, 1, rowFor(t, rows, 2).Rank)
	assert.Equal(t, 2, rowFor(t, rows, 1).Rank)
}

func TestComputeCustomScoring(t *testing.T) {
	stage := testStage()
	stage.Settings.Scoring = models.ScoringRule{Win: 2, Draw: 1, Loss: 0}
	teams := testTeams(1, 2)

	rows, err := Compute(stage, teams, []*models.Fixture{result(1, 2, 1, 0)})
	require.NoError(t, err)
	assert.Equal(t, 2, rowFor(t, rows, 1).Points)
}

func TestComputeGroupedScopes(t *testing.T) {
	groupA, groupB := 10, 20
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
		{TeamID: 2, Seed: 2, GroupID: &groupA},
		{TeamID: 3, Seed: 3, GroupID: &groupB},
		{TeamID: 4, Seed: 4, GroupID: &groupB},
	}
	f1 := result(1, 2, 1, 0)
	f1.GroupID = &groupA
	f2 := result(3, 4, 0, 5)
	f2.GroupID = &groupB

	rows, err := Compute(stage, teams, []*models.Fixture{f1, f2})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Each group ranks independently from 1.
	one := rowFor(t, rows, 1)
	require.NotNil(t, one.GroupID)
	assert.Equal(t, groupA, *one.GroupID)
	assert.Equal(t, 1, one.Rank)

	four := rowFor(t, rows, 4)
	require.NotNil(t, four.GroupID)
	assert.Equal(t, groupB, *four.GroupID)
	assert.Equal(t, 1, four.Rank)
}

func TestComputeRejectsEmptyStage(t *testing.T) {
	_, err := Compute(testStage(), nil, nil)
	require.ErrorIs(t, err, ErrNoTeamsInStage)
}

func TestComputeIdempotent(t *testing.T) {
	stage := testStage(models.TieBreakGoalDifference, models.TieBreakSeed)
	teams := testTeams(1, 2, 3, 4)
	fixtures := []*models.Fixture{
		result(1, 2, 2, 2),
		result(3, 4, 1, 0),
		result(1, 3, 0, 1),
	}

	first, err := Compute(stage, teams, fixtures)
	require.NoError(t, err)
	second, err := Compute(stage, teams, fixtures)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].TeamID, second[i].TeamID)
		assert.Equal(t, first[i].Rank, second[i].Rank)
		assert.Equal(t, first[i].Points, second[i].Points)
	}
}
