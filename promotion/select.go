// Package promotion decides which teams qualify to advance out of a stage.
// Selection is one pure function shared by the simulate and execute paths so
// the two can never diverge.
package promotion

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/myckhel/turfHub-sub002/models"
)

var (
	ErrAmbiguousRankingScope = errors.New("top_n cannot run on a grouped stage, use top_per_group")
	ErrIncompleteKnockout    = errors.New("cannot promote: a decisive knockout fixture has no recorded winner")
	ErrTieUnresolved         = errors.New("promotion cut falls inside an unresolved ranking tie")
	ErrHandlerNotRegistered  = errors.New("custom promotion handler is not registered")
	ErrUnknownRuleType       = errors.New("unknown promotion rule type")
)

// SelectionInput is the full read-only context a rule may consult.
type SelectionInput struct {
	Stage    *models.Stage
	Rule     models.PromotionRule
	Rankings []*models.Ranking
	Fixtures []*models.Fixture
	Groups   []*models.Group
}

// Select returns the team ids qualifying under the configured rule, in a
// deterministic order. It reads state and never writes any.
func Select(ctx context.Context, registry *Registry, input SelectionInput) ([]int, error) {
	switch input.Rule.Type {
	case models.RuleTopN:
		return selectTopN(input)
	case models.RuleTopPerGroup:
		return selectTopPerGroup(input)
	case models.RulePointsThreshold:
		return selectPointsThreshold(input)
	case models.RuleKnockoutWinners:
		return selectKnockoutWinners(input)
	case models.RuleCustom:
		return selectCustom(ctx, registry, input)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRuleType, input.Rule.Type)
	}
}

func selectTopN(input SelectionInput) ([]int, error) {
	if len(input.Groups) > 0 {
		return nil, fmt.Errorf("%w: stage %d has %d groups", ErrAmbiguousRankingScope, input.Stage.ID, len(input.Groups))
	}
	for _, row := range input.Rankings {
		if row.GroupID != nil {
			return nil, fmt.Errorf("%w: stage %d rankings are group-scoped", ErrAmbiguousRankingScope, input.Stage.ID)
		}
	}
	return takeTopByRank(input.Rankings, input.Rule.TopN.N)
}

func selectTopPerGroup(input SelectionInput) ([]int, error) {
	byGroup := make(map[int][]*models.Ranking)
	groupIDs := make([]int, 0)
	for _, row := range input.Rankings {
		if row.GroupID == nil {
			continue
		}
		if _, seen := byGroup[*row.GroupID]; !seen {
			groupIDs = append(groupIDs, *row.GroupID)
		}
		byGroup[*row.GroupID] = append(byGroup[*row.GroupID], row)
	}
	sort.Ints(groupIDs)

	promoted := make([]int, 0)
	for _, groupID := range groupIDs {
		ids, err := takeTopByRank(byGroup[groupID], input.Rule.TopPerGroup.N)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", groupID, err)
		}
		promoted = append(promoted, ids...)
	}
	return promoted, nil
}

// takeTopByRank returns the first n teams by rank order. A cut through a
// shared rank is refused: picking between tied teams would be arbitrary, so
// the caller must configure a terminal tie-breaker instead.
func takeTopByRank(rows []*models.Ranking, n int) ([]int, error) {
	ordered := sortedByRank(rows)
	if n >= len(ordered) {
		return teamIDs(ordered), nil
	}
	if ordered[n-1].Rank == ordered[n].Rank {
		return nil, fmt.Errorf("%w: rank %d is shared across the cut", ErrTieUnresolved, ordered[n].Rank)
	}
	return teamIDs(ordered[:n]), nil
}

func selectPointsThreshold(input SelectionInput) ([]int, error) {
	threshold := input.Rule.PointsThreshold.Threshold
	ordered := sortedByRank(input.Rankings)
	promoted := make([]int, 0)
	for _, row := range ordered {
		if row.Points >= threshold {
			promoted = append(promoted, row.TeamID)
		}
	}
	return promoted, nil
}

// selectKnockoutWinners ignores rankings entirely: a team qualifies iff it
// is the recorded winner of the latest fixture it took part in, equivalently
// iff it never lost a fixture later than its latest win. Byes and unfilled
// placeholders never count; only recorded winners decide, never bracket
// arithmetic or round labels.
func selectKnockoutWinners(input SelectionInput) ([]int, error) {
	type latest struct {
		fixture *models.Fixture
		index   int
	}
	latestByTeam := make(map[int]latest)

	for i, f := range input.Fixtures {
		if f.TeamAID == nil || f.TeamBID == nil || f.Status == models.FixtureStatusCancelled {
			continue
		}
		for _, teamID := range []int{*f.TeamAID, *f.TeamBID} {
			current, ok := latestByTeam[teamID]
			if !ok || laterFixture(f, i, current.fixture, current.index) {
				latestByTeam[teamID] = latest{fixture: f, index: i}
			}
		}
	}

	promoted := make([]int, 0)
	for teamID, entry := range latestByTeam {
		if entry.fixture.WinnerTeamID == nil {
			return nil, fmt.Errorf("%w: fixture %s undecided", ErrIncompleteKnockout, entry.fixture.BracketUID)
		}
		if *entry.fixture.WinnerTeamID == teamID {
			promoted = append(promoted, teamID)
		}
	}
	sort.Ints(promoted)
	return promoted, nil
}

func laterFixture(a *models.Fixture, ai int, b *models.Fixture, bi int) bool {
	if a.Round != b.Round {
		return a.Round > b.Round
	}
	if a.MatchOrder != b.MatchOrder {
		return a.MatchOrder > b.MatchOrder
	}
	return ai > bi // second legs share round and order
}

func selectCustom(ctx context.Context, registry *Registry, input SelectionInput) ([]int, error) {
	rule := input.Rule.Custom
	if registry == nil {
		return nil, fmt.Errorf("%w: %q", ErrHandlerNotRegistered, rule.Handler)
	}
	handler, ok := registry.Resolve(rule.Handler)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrHandlerNotRegistered, rule.Handler)
	}
	return handler.Select(ctx, input, rule.Params)
}

func sortedByRank(rows []*models.Ranking) []*models.Ranking {
	ordered := make([]*models.Ranking, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Rank != ordered[j].Rank {
			return ordered[i].Rank < ordered[j].Rank
		}
		return ordered[i].TeamID < ordered[j].TeamID
	})
	return ordered
}

func teamIDs(rows []*models.Ranking) []int {
	ids := make([]int, len(rows))
	for i, row := range rows {
		ids[i] = row.TeamID
	}
	return ids
}
