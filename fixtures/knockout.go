package fixtures

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/myckhel/turfHub-sub002/models"
)

type KnockoutGenerator struct{}

func NewKnockoutGenerator() Generator {
	return &KnockoutGenerator{}
}

func (g *KnockoutGenerator) Name() string {
	return "Knockout"
}

// Generate builds a single-elimination bracket. Teams are placed by seed
// ascending into standard bracket slots, non-power-of-two counts are padded
// with byes against the top seeds. A bye never becomes a fixture: the seeded
// team is written straight into its second-round slot. Later rounds are
// emitted as placeholder fixtures with nil team ids; result submission
// advances winners along the NextFixtureID/WinnerToSlot links resolved after
// persistence (see KnockoutParentUID).
func (g *KnockoutGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Fixture, error) {
	stage := params.Stage
	teams := g.placementOrder(stage, params.Teams)
	n := len(teams)
	if n < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrInsufficientTeams, n)
	}

	legs := 1
	thirdPlace := false
	if stage.Settings.Knockout != nil {
		if stage.Settings.Knockout.Legs == 2 {
			legs = 2
		}
		thirdPlace = stage.Settings.Knockout.ThirdPlaceMatch
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(numRounds)

	// slots[i] holds the team occupying bracket slot i, nil for a bye.
	slots := make([]*models.StageTeam, bracketSize)
	for i, seedPos := range bracketSlots(bracketSize) {
		if seedPos <= n {
			slots[i] = teams[seedPos-1]
		}
	}

	fixtures := make([]*models.Fixture, 0, bracketSize-1)
	index := make(map[string]*models.Fixture)

	// Placeholder skeleton for every round past the first.
	for round := 2; round <= numRounds; round++ {
		pairs := bracketSize >> uint(round)
		for order := 1; order <= pairs; order++ {
			f := newKnockoutFixture(stage, round, order, 1, legs, knockoutRoundLabel(round, numRounds))
			fixtures = append(fixtures, f)
			index[f.BracketUID] = f
		}
	}

	// First round: real fixtures for full pairs, direct advancement for byes.
	for pair := 0; pair < bracketSize/2; pair++ {
		a, b := slots[2*pair], slots[2*pair+1]
		order := pair + 1
		switch {
		case a != nil && b != nil:
			f := newKnockoutFixture(stage, 1, order, 1, legs, knockoutRoundLabel(1, numRounds))
			teamA, teamB := a.TeamID, b.TeamID
			f.TeamAID, f.TeamBID = &teamA, &teamB
			fixtures = append(fixtures, f)
		case a != nil || b != nil:
			advancing := a
			if advancing == nil {
				advancing = b
			}
			if numRounds == 1 {
				// A two-team bracket has no room for a bye.
				return nil, fmt.Errorf("%w: bye in a two-team bracket", ErrInsufficientTeams)
			}
			parentUID, slot := KnockoutParentUID(stage.ID, 1, order)
			setBracketSlot(index, parentUID, slot, advancing.TeamID)
		default:
			return nil, fmt.Errorf("%w: empty bracket pair %d", ErrInsufficientTeams, order)
		}
	}

	// Second legs mirror every concrete first-round pairing; aggregate winner
	// resolution across legs is the caller's concern, so legs carry no
	// advancement links.
	if legs == 2 {
		mirrored := make([]*models.Fixture, 0, len(fixtures))
		for _, f := range fixtures {
			second := newKnockoutFixture(stage, f.Round, f.MatchOrder, 2, legs, f.RoundLabel)
			if f.TeamAID != nil && f.TeamBID != nil {
				a, b := *f.TeamBID, *f.TeamAID
				second.TeamAID, second.TeamBID = &a, &b
			}
			mirrored = append(mirrored, second)
		}
		fixtures = append(fixtures, mirrored...)
	}

	if thirdPlace && numRounds >= 2 {
		f := newKnockoutFixture(stage, numRounds, 2, 1, legs, "Third Place Play-off")
		fixtures = append(fixtures, f)
	}

	sortKnockout(fixtures)
	scheduleSequential(fixtures, params.Kickoff, stage.Settings.MatchDuration, stage.Settings.MatchInterval)
	return fixtures, nil
}

func (g *KnockoutGenerator) placementOrder(stage *models.Stage, teams []*models.StageTeam) []*models.StageTeam {
	if stage.Settings.Knockout != nil && !stage.Settings.Knockout.Seeding {
		unseeded := make([]*models.StageTeam, len(teams))
		copy(unseeded, teams)
		sort.SliceStable(unseeded, func(i, j int) bool { return unseeded[i].TeamID < unseeded[j].TeamID })
		return unseeded
	}
	return orderedTeams(teams)
}

// bracketSlots returns the seed occupying each slot of a full bracket using
// the standard fold: seed 1 meets the lowest seed, pairs sum to size+1.
func bracketSlots(size int) []int {
	slots := []int{1}
	for len(slots) < size {
		doubled := make([]int, 0, len(slots)*2)
		mirror := len(slots)*2 + 1
		for _, s := range slots {
			doubled = append(doubled, s, mirror-s)
		}
		slots = doubled
	}
	return slots
}

func newKnockoutFixture(stage *models.Stage, round, order, leg, legs int, label string) *models.Fixture {
	uid := knockoutUID(stage.ID, round, order, leg)
	if legs == 2 {
		label = fmt.Sprintf("%s (Leg %d)", label, leg)
	}
	return &models.Fixture{
		StageID:    stage.ID,
		Status:     models.FixtureStatusUpcoming,
		Round:      round,
		RoundLabel: label,
		MatchOrder: order,
		BracketUID: uid,
	}
}

func knockoutUID(stageID, round, order, leg int) string {
	if leg > 1 {
		return fmt.Sprintf("S%d_R%dM%dL%d", stageID, round, order, leg)
	}
	return fmt.Sprintf("S%d_R%dM%d", stageID, round, order)
}

// KnockoutParentUID returns the bracket UID of the fixture the winner of
// (round, order) advances into, and which slot it fills. Slot 1 takes the
// winner of the odd pair, slot 2 the even one.
func KnockoutParentUID(stageID, round, order int) (string, int) {
	slot := 2
	if order%2 == 1 {
		slot = 1
	}
	return knockoutUID(stageID, round+1, (order+1)/2, 1), slot
}

func setBracketSlot(index map[string]*models.Fixture, uid string, slot, teamID int) {
	f, ok := index[uid]
	if !ok {
		return
	}
	id := teamID
	if slot == 1 {
		f.TeamAID = &id
	} else {
		f.TeamBID = &id
	}
}

// knockoutRoundLabel names a round descriptively; nothing downstream keys
// off these labels.
func knockoutRoundLabel(round, numRounds int) string {
	switch numRounds - round {
	case 0:
		return "Final"
	case 1:
		return "Semi-Final"
	case 2:
		return "Quarter-Final"
	default:
		return fmt.Sprintf("Round of %d", 1<<uint(numRounds-round+1))
	}
}

func sortKnockout(fixtures []*models.Fixture) {
	sort.SliceStable(fixtures, func(i, j int) bool {
		if fixtures[i].Round != fixtures[j].Round {
			return fixtures[i].Round < fixtures[j].Round
		}
		if fixtures[i].MatchOrder != fixtures[j].MatchOrder {
			return fixtures[i].MatchOrder < fixtures[j].MatchOrder
		}
		return fixtures[i].BracketUID < fixtures[j].BracketUID
	})
}
