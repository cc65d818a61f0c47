package fixtures

import (
	"sort"
	"time"

	"github.com/myckhel/turfHub-sub002/models"
)

// orderedTeams returns the stage teams sorted by seed ascending, team id as
// the stable fallback. All strategies pair off this ordering so generation
// stays deterministic.
func orderedTeams(teams []*models.StageTeam) []*models.StageTeam {
	ordered := make([]*models.StageTeam, len(teams))
	copy(ordered, teams)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Seed != ordered[j].Seed {
			return ordered[i].Seed < ordered[j].Seed
		}
		return ordered[i].TeamID < ordered[j].TeamID
	})
	return ordered
}

// scheduleSequential assigns kickoff times back to back: each fixture starts
// one duration plus one interval after the previous. A zero kickoff leaves
// scheduling to the caller.
func scheduleSequential(fixtures []*models.Fixture, kickoff time.Time, durationMin, intervalMin int) {
	if kickoff.IsZero() {
		return
	}
	if durationMin <= 0 {
		durationMin = 60
	}
	slot := time.Duration(durationMin+intervalMin) * time.Minute
	for i, f := range fixtures {
		f.StartsAt = kickoff.Add(time.Duration(i) * slot)
		f.Duration = durationMin
	}
}

func sortByRoundAndOrder(fixtures []*models.Fixture) {
	sort.SliceStable(fixtures, func(i, j int) bool {
		if fixtures[i].Round != fixtures[j].Round {
			return fixtures[i].Round < fixtures[j].Round
		}
		return fixtures[i].MatchOrder < fixtures[j].MatchOrder
	})
}
