package promotion

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/myckhel/turfHub-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ranking(teamID, rank, points int) *models.Ranking {
	return &models.Ranking{StageID: 1, TeamID: teamID, Rank: rank, Points: points}
}

func groupRanking(groupID, teamID, rank int) *models.Ranking {
	return &models.Ranking{StageID: 1, GroupID: &groupID, TeamID: teamID, Rank: rank}
}

func decidedFixture(round, order, a, b, winner int) *models.Fixture {
	return &models.Fixture{
		StageID: 1, Round: round, MatchOrder: order,
		TeamAID: &a, TeamBID: &b,
		WinnerTeamID: &winner,
		Status:       models.FixtureStatusCompleted,
	}
}

func leagueInput(rule models.PromotionRule, rankings ...*models.Ranking) SelectionInput {
	return SelectionInput{
		Stage:    &models.Stage{ID: 1, Type: models.StageTypeLeague, Status: models.StageStatusCompleted},
		Rule:     rule,
		Rankings: rankings,
	}
}

func TestSelectTopN(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleTopN, TopN: &models.TopNRule{N: 2}}
	input := leagueInput(rule,
		ranking(30, 3, 3),
		ranking(10, 1, 9),
		ranking(20, 2, 6),
	)

	ids, err := Select(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, ids)
}

func TestSelectTopNTakesAllWhenFewerTeams(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleTopN, TopN: &models.TopNRule{N: 5}}
	input := leagueInput(rule, ranking(10, 1, 3), ranking(20, 2, 0))

	ids, err := Select(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, ids)
}

func TestSelectTopNRefusesCutThroughTie(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleTopN, TopN: &models.TopNRule{N: 2}}
	input := leagueInput(rule,
		ranking(10, 1, 9),
		ranking(20, 2, 6),
		ranking(30, 2, 6), // shared rank straddling the cut
		ranking(40, 4, 0),
	)

	_, err := Select(context.Background(), nil, input)
	require.ErrorIs(t, err, ErrTieUnresolved)
}

func TestSelectTopNAllowsTieInsideSelection(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleTopN, TopN: &models.TopNRule{N: 2}}
	input := leagueInput(rule,
		ranking(10, 1, 9),
		ranking(20, 1, 9), // tied, but both make the cut
		ranking(30, 3, 0),
	)

	ids, err := Select(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, ids)
}

func TestSelectTopNRejectsGroupedStage(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleTopN, TopN: &models.TopNRule{N: 1}}
	input := SelectionInput{
		Stage:    &models.Stage{ID: 1, Type: models.StageTypeGroup},
		Rule:     rule,
		Rankings: []*models.Ranking{groupRanking(7, 10, 1)},
		Groups:   []*models.Group{{ID: 7, StageID: 1, Name: "Group A"}},
	}

	_, err := Select(context.Background(), nil, input)
	require.ErrorIs(t, err, ErrAmbiguousRankingScope)
}

func TestSelectTopNRejectsGroupScopedRankings(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleTopN, TopN: &models.TopNRule{N: 1}}
	input := leagueInput(rule, groupRanking(7, 10, 1))

	_, err := Select(context.Background(), nil, input)
	require.ErrorIs(t, err, ErrAmbiguousRankingScope)
}

func TestSelectTopPerGroup(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleTopPerGroup, TopPerGroup: &models.TopPerGroupRule{N: 2}}
	input := SelectionInput{
		Stage: &models.Stage{ID: 1, Type: models.StageTypeGroup},
		Rule:  rule,
		Rankings: []*models.Ranking{
			groupRanking(8, 40, 1),
			groupRanking(7, 10, 1),
			groupRanking(7, 20, 2),
			groupRanking(7, 30, 3),
			groupRanking(8, 50, 2),
			groupRanking(8, 60, 3),
		},
	}

	ids, err := Select(context.Background(), nil, input)
	require.NoError(t, err)
	// Groups emit in ascending group id order.
	assert.Equal(t, []int{10, 20, 40, 50}, ids)
}

func TestSelectTopPerGroupRefusesTieInOneGroup(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleTopPerGroup, TopPerGroup: &models.TopPerGroupRule{N: 1}}
	input := SelectionInput{
		Stage: &models.Stage{ID: 1, Type: models.StageTypeGroup},
		Rule:  rule,
		Rankings: []*models.Ranking{
			groupRanking(7, 10, 1),
			groupRanking(7, 20, 2),
			groupRanking(8, 40, 1),
			groupRanking(8, 50, 1), // unbroken tie at the top of group 8
		},
	}

	_, err := Select(context.Background(), nil, input)
	require.ErrorIs(t, err, ErrTieUnresolved)
}

func TestSelectPointsThreshold(t *testing.T) {
	rule := models.PromotionRule{Type: models.RulePointsThreshold, PointsThreshold: &models.PointsThresholdRule{Threshold: 6}}
	input := leagueInput(rule,
		ranking(10, 1, 9),
		ranking(20, 2, 6), // exactly at the threshold qualifies
		ranking(30, 3, 5),
	)

	ids, err := Select(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, ids)
}

func TestSelectKnockoutWinners(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleKnockoutWinners}
	input := SelectionInput{
		Stage: &models.Stage{ID: 1, Type: models.StageTypeKnockout},
		Rule:  rule,
		Fixtures: []*models.Fixture{
			decidedFixture(1, 1, 10, 40, 10),
			decidedFixture(1, 2, 20, 30, 30),
			decidedFixture(2, 1, 10, 30, 30), // final
		},
	}

	ids, err := Select(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, []int{30}, ids)
}

func TestSelectKnockoutWinnersSkipsUnfilledPlaceholders(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleKnockoutWinners}
	placeholder := &models.Fixture{StageID: 1, Round: 2, MatchOrder: 1, Status: models.FixtureStatusUpcoming}
	input := SelectionInput{
		Stage: &models.Stage{ID: 1, Type: models.StageTypeKnockout},
		Rule:  rule,
		Fixtures: []*models.Fixture{
			decidedFixture(1, 1, 10, 20, 10),
			decidedFixture(1, 2, 30, 40, 40),
			placeholder,
		},
	}

	ids, err := Select(context.Background(), nil, input)
	require.NoError(t, err)
	// Both round-one winners still stand: the final has no teams yet.
	assert.Equal(t, []int{10, 40}, ids)
}

func TestSelectKnockoutWinnersRejectsUndecidedFixture(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleKnockoutWinners}
	a, b := 10, 30
	undecided := &models.Fixture{
		StageID: 1, Round: 2, MatchOrder: 1,
		TeamAID: &a, TeamBID: &b,
		Status: models.FixtureStatusUpcoming,
	}
	input := SelectionInput{
		Stage: &models.Stage{ID: 1, Type: models.StageTypeKnockout},
		Rule:  rule,
		Fixtures: []*models.Fixture{
			decidedFixture(1, 1, 10, 20, 10),
			decidedFixture(1, 2, 30, 40, 30),
			undecided,
		},
	}

	_, err := Select(context.Background(), nil, input)
	require.ErrorIs(t, err, ErrIncompleteKnockout)
}

func TestSelectKnockoutWinnersSecondLegDecides(t *testing.T) {
	rule := models.PromotionRule{Type: models.RuleKnockoutWinners}
	input := SelectionInput{
		Stage: &models.Stage{ID: 1, Type: models.StageTypeKnockout},
		Rule:  rule,
		Fixtures: []*models.Fixture{
			decidedFixture(1, 1, 10, 20, 10), // first leg
			decidedFixture(1, 1, 20, 10, 20), // return leg, recorded winner stands
		},
	}

	ids, err := Select(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, []int{20}, ids)
}

func TestSelectCustomHandler(t *testing.T) {
	registry := NewRegistry()
	registry.Register("every_other", HandlerFunc(func(ctx context.Context, input SelectionInput, params json.RawMessage) ([]int, error) {
		var cfg struct {
			Offset int `json:"offset"`
		}
		require.NoError(t, json.Unmarshal(params, &cfg))
		ids := make([]int, 0)
		for i := cfg.Offset; i < len(input.Rankings); i += 2 {
			ids = append(ids, input.Rankings[i].TeamID)
		}
		return ids, nil
	}))

	rule := models.PromotionRule{
		Type:   models.RuleCustom,
		Custom: &models.CustomRule{Handler: "every_other", Params: json.RawMessage(`{"offset":1}`)},
	}
	input := leagueInput(rule, ranking(10, 1, 9), ranking(20, 2, 6), ranking(30, 3, 3))

	ids, err := Select(context.Background(), registry, input)
	require.NoError(t, err)
	assert.Equal(t, []int{20}, ids)
}

func TestSelectCustomHandlerMissing(t *testing.T) {
	rule := models.PromotionRule{
		Type:   models.RuleCustom,
		Custom: &models.CustomRule{Handler: "nope"},
	}

	_, err := Select(context.Background(), NewRegistry(), leagueInput(rule))
	require.ErrorIs(t, err, ErrHandlerNotRegistered)

	_, err = Select(context.Background(), nil, leagueInput(rule))
	require.ErrorIs(t, err, ErrHandlerNotRegistered)
}

func TestSelectUnknownRuleType(t *testing.T) {
	rule := models.PromotionRule{Type: models.PromotionRuleType("coin_flip")}
	_, err := Select(context.Background(), nil, leagueInput(rule))
	require.ErrorIs(t, err, ErrUnknownRuleType)
}
