package fixtures

import (
	"context"
	"fmt"

	"github.com/myckhel/turfHub-sub002/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate creates round-robin fixtures: every unordered team pair exactly
// once per round cycle, both directions when home-and-away is on, the whole
// pairing set repeated for each configured round with distinct round labels.
// Group stages generate independently per group with fixtures scoped to it.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Fixture, error) {
	stage := params.Stage

	rounds, homeAndAway := roundRobinConfig(stage)

	if stage.Type == models.StageTypeGroup {
		return g.generateGrouped(params, rounds, homeAndAway)
	}

	if len(params.Teams) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrInsufficientTeams, len(params.Teams))
	}
	fixtures := g.pairings(stage, nil, orderedTeams(params.Teams), rounds, homeAndAway)
	scheduleSequential(fixtures, params.Kickoff, stage.Settings.MatchDuration, stage.Settings.MatchInterval)
	return fixtures, nil
}

func (g *RoundRobinGenerator) generateGrouped(params GenerateParams, rounds int, homeAndAway bool) ([]*models.Fixture, error) {
	stage := params.Stage
	if len(params.Groups) < 2 {
		return nil, fmt.Errorf("%w: found %d groups, min 2 required", ErrInvalidGroupConfiguration, len(params.Groups))
	}

	byGroup := make(map[int][]*models.StageTeam, len(params.Groups))
	for _, team := range params.Teams {
		if team.GroupID == nil {
			return nil, fmt.Errorf("%w: team %d is not assigned to any group", ErrInvalidGroupConfiguration, team.TeamID)
		}
		byGroup[*team.GroupID] = append(byGroup[*team.GroupID], team)
	}

	all := make([]*models.Fixture, 0)
	for _, group := range params.Groups {
		members := byGroup[group.ID]
		if len(members) < 2 {
			return nil, fmt.Errorf("%w: group %q has %d teams, min 2 required", ErrInsufficientTeams, group.Name, len(members))
		}
		groupID := group.ID
		fixtures := g.pairings(stage, &groupID, orderedTeams(members), rounds, homeAndAway)
		all = append(all, fixtures...)
	}
	sortByRoundAndOrder(all)
	scheduleSequential(all, params.Kickoff, stage.Settings.MatchDuration, stage.Settings.MatchInterval)
	return all, nil
}

func (g *RoundRobinGenerator) pairings(stage *models.Stage, groupID *int, teams []*models.StageTeam, rounds int, homeAndAway bool) []*models.Fixture {
	fixtures := make([]*models.Fixture, 0)
	for round := 1; round <= rounds; round++ {
		order := 0
		for i := 0; i < len(teams); i++ {
			for j := i + 1; j < len(teams); j++ {
				home := teams[i].TeamID
				away := teams[j].TeamID

				order++
				fixtures = append(fixtures, newRoundRobinFixture(stage, groupID, home, away, round, order))

				if homeAndAway {
					order++
					fixtures = append(fixtures, newRoundRobinFixture(stage, groupID, away, home, round, order))
				}
			}
		}
	}
	return fixtures
}

func newRoundRobinFixture(stage *models.Stage, groupID *int, home, away, round, order int) *models.Fixture {
	a, b := home, away
	uid := fmt.Sprintf("S%d_R%dM%d", stage.ID, round, order)
	if groupID != nil {
		uid = fmt.Sprintf("S%d_G%d_R%dM%d", stage.ID, *groupID, round, order)
	}
	return &models.Fixture{
		StageID:    stage.ID,
		GroupID:    groupID,
		TeamAID:    &a,
		TeamBID:    &b,
		Status:     models.FixtureStatusUpcoming,
		Round:      round,
		RoundLabel: fmt.Sprintf("Round %d", round),
		MatchOrder: order,
		BracketUID: uid,
	}
}

func roundRobinConfig(stage *models.Stage) (rounds int, homeAndAway bool) {
	rounds = 1
	switch stage.Type {
	case models.StageTypeGroup:
		if stage.Settings.Group != nil {
			rounds = stage.Settings.Group.Rounds
			homeAndAway = stage.Settings.Group.HomeAndAway
		}
	default:
		if stage.Settings.League != nil {
			rounds = stage.Settings.League.Rounds
			homeAndAway = stage.Settings.League.HomeAndAway
		}
	}
	if rounds < 1 {
		rounds = 1
	}
	return rounds, homeAndAway
}
