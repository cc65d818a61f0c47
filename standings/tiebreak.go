package standings

import "github.com/myckhel/turfHub-sub002/models"

// comparator orders accumulators by points descending, then by the stage's
// configured tie-breakers evaluated left to right until disambiguated.
// A negative result means a ranks above b.
type comparator struct {
	breakers []models.TieBreaker
	// headToHead holds points earned in completed fixtures between each pair,
	// keyed by (team, opponent).
	headToHead map[[2]int]int
	scoring    models.ScoringRule
}

func newComparator(scoring models.ScoringRule, breakers []models.TieBreaker, completed []*models.Fixture) *comparator {
	c := &comparator{breakers: breakers, scoring: scoring}
	for _, b := range breakers {
		if b == models.TieBreakHeadToHead {
			c.headToHead = buildHeadToHead(completed, scoring)
			break
		}
	}
	return c
}

func (c *comparator) compare(a, b *accumulator) int {
	if a.points != b.points {
		return b.points - a.points
	}
	for _, breaker := range c.breakers {
		if result := c.applyBreaker(breaker, a, b); result != 0 {
			return result
		}
	}
	return 0
}

func (c *comparator) applyBreaker(breaker models.TieBreaker, a, b *accumulator) int {
	switch breaker {
	case models.TieBreakGoalDifference:
		return b.goalDifference() - a.goalDifference()
	case models.TieBreakGoalsFor:
		return b.goalsFor - a.goalsFor
	case models.TieBreakGoalsAgainst:
		return a.goalsAgainst - b.goalsAgainst
	case models.TieBreakHeadToHead:
		// Restricted to the tied pair: only their meetings count.
		return c.headToHead[[2]int{b.teamID, a.teamID}] - c.headToHead[[2]int{a.teamID, b.teamID}]
	case models.TieBreakWins:
		return b.wins - a.wins
	case models.TieBreakFairPlay:
		// Lower accumulated penalty count wins.
		return a.fairPlayPenalties - b.fairPlayPenalties
	case models.TieBreakSeed:
		// Terminal deterministic breaker; never random.
		return a.seed - b.seed
	default:
		return 0
	}
}

func buildHeadToHead(completed []*models.Fixture, scoring models.ScoringRule) map[[2]int]int {
	table := make(map[[2]int]int)
	for _, f := range completed {
		a, b := *f.TeamAID, *f.TeamBID
		scoreA, scoreB := *f.ScoreA, *f.ScoreB
		switch {
		case scoreA == scoreB:
			table[[2]int{a, b}] += scoring.Draw
			table[[2]int{b, a}] += scoring.Draw
		case scoreA > scoreB:
			table[[2]int{a, b}] += scoring.Win
			table[[2]int{b, a}] += scoring.Loss
		default:
			table[[2]int{b, a}] += scoring.Win
			table[[2]int{a, b}] += scoring.Loss
		}
	}
	return table
}
