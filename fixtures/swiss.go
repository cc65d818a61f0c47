package fixtures

import (
	"context"
	"fmt"
	"sort"

	"github.com/myckhel/turfHub-sub002/models"
)

type SwissGenerator struct{}

func NewSwissGenerator() Generator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) Name() string {
	return "Swiss"
}

// Generate emits exactly one swiss round per call. Teams are ordered by the
// current standings (seed order before any results exist) and paired
// greedily top-down, skipping opponents already faced in prior rounds. An
// odd team count leaves the lowest-placed unpaired team with a bye, which
// never becomes a fixture. Pairing round N+1 from round-N results is the
// caller invoking Generate again with fresh rankings and prior fixtures.
func (g *SwissGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Fixture, error) {
	stage := params.Stage
	if len(params.Teams) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrInsufficientTeams, len(params.Teams))
	}

	round := 1
	played := make(map[[2]int]bool)
	for _, f := range params.PriorFixtures {
		if f.Round >= round {
			round = f.Round + 1
		}
		if f.TeamAID != nil && f.TeamBID != nil {
			played[pairKey(*f.TeamAID, *f.TeamBID)] = true
		}
	}

	ordered := g.standingsOrder(params.Teams, params.Rankings)

	fixtures := make([]*models.Fixture, 0, len(ordered)/2)
	paired := make(map[int]bool, len(ordered))
	order := 0
	for i, team := range ordered {
		if paired[team.TeamID] {
			continue
		}
		opponent := g.firstAvailable(ordered[i+1:], team.TeamID, paired, played, false)
		if opponent == nil {
			// Every remaining opponent is a rematch; take the nearest one
			// rather than leaving both teams idle.
			opponent = g.firstAvailable(ordered[i+1:], team.TeamID, paired, played, true)
		}
		if opponent == nil {
			break // odd team out sits the round as a bye
		}
		paired[team.TeamID] = true
		paired[opponent.TeamID] = true

		order++
		a, b := team.TeamID, opponent.TeamID
		fixtures = append(fixtures, &models.Fixture{
			StageID:    stage.ID,
			TeamAID:    &a,
			TeamBID:    &b,
			Status:     models.FixtureStatusUpcoming,
			Round:      round,
			RoundLabel: fmt.Sprintf("Round %d", round),
			MatchOrder: order,
			BracketUID: fmt.Sprintf("S%d_R%dM%d", stage.ID, round, order),
		})
	}

	scheduleSequential(fixtures, params.Kickoff, stage.Settings.MatchDuration, stage.Settings.MatchInterval)
	return fixtures, nil
}

func (g *SwissGenerator) standingsOrder(teams []*models.StageTeam, rankings []*models.Ranking) []*models.StageTeam {
	ordered := orderedTeams(teams)
	if len(rankings) == 0 {
		return ordered
	}
	rankOf := make(map[int]int, len(rankings))
	for _, r := range rankings {
		rankOf[r.TeamID] = r.Rank
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, iOK := rankOf[ordered[i].TeamID]
		rj, jOK := rankOf[ordered[j].TeamID]
		if iOK && jOK && ri != rj {
			return ri < rj
		}
		if iOK != jOK {
			return iOK
		}
		return false // keep seed order among equals
	})
	return ordered
}

func (g *SwissGenerator) firstAvailable(candidates []*models.StageTeam, teamID int, paired map[int]bool, played map[[2]int]bool, allowRematch bool) *models.StageTeam {
	for _, c := range candidates {
		if paired[c.TeamID] || c.TeamID == teamID {
			continue
		}
		if !allowRematch && played[pairKey(teamID, c.TeamID)] {
			continue
		}
		return c
	}
	return nil
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}
