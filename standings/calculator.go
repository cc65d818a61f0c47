// Package standings computes stage rankings from completed fixtures. The
// computation is pure: given the same fixtures, scoring and tie-breakers it
// always yields the same rows, so callers can recompute at will and replace
// the persisted set wholesale.
package standings

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/myckhel/turfHub-sub002/models"
)

var ErrNoTeamsInStage = errors.New("stage has no assigned teams")

type accumulator struct {
	teamID       int
	seed         int
	points       int
	played       int
	wins         int
	draws        int
	losses       int
	goalsFor     int
	goalsAgainst int

	// fairPlayPenalties feeds the fair_play comparator only; it is not part
	// of the persisted ranking row.
	fairPlayPenalties int
}

func (a *accumulator) goalDifference() int {
	return a.goalsFor - a.goalsAgainst
}

// Compute builds the ranking rows for a stage. Grouped stages compute each
// group independently; a stage never mixes grouped and ungrouped rows in one
// cycle. Teams with no completed fixtures still appear with zeroed stats.
func Compute(stage *models.Stage, teams []*models.StageTeam, fixtures []*models.Fixture) ([]*models.Ranking, error) {
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: stage %d", ErrNoTeamsInStage, stage.ID)
	}

	scoring := stage.Settings.Scoring
	breakers := stage.Settings.TieBreakers

	if stage.Type == models.StageTypeGroup {
		byGroup := make(map[int][]*models.StageTeam)
		groupIDs := make([]int, 0)
		for _, team := range teams {
			if team.GroupID == nil {
				return nil, fmt.Errorf("%w: team %d has no group in grouped stage %d", ErrNoTeamsInStage, team.TeamID, stage.ID)
			}
			if _, seen := byGroup[*team.GroupID]; !seen {
				groupIDs = append(groupIDs, *team.GroupID)
			}
			byGroup[*team.GroupID] = append(byGroup[*team.GroupID], team)
		}
		sort.Ints(groupIDs)

		rows := make([]*models.Ranking, 0, len(teams))
		for _, groupID := range groupIDs {
			scoped := make([]*models.Fixture, 0)
			for _, f := range fixtures {
				if f.GroupID != nil && *f.GroupID == groupID {
					scoped = append(scoped, f)
				}
			}
			gid := groupID
			rows = append(rows, computeScope(stage.ID, &gid, byGroup[groupID], scoped, scoring, breakers)...)
		}
		return rows, nil
	}

	return computeScope(stage.ID, nil, teams, fixtures, scoring, breakers), nil
}

func computeScope(stageID int, groupID *int, teams []*models.StageTeam, fixtures []*models.Fixture, scoring models.ScoringRule, breakers []models.TieBreaker) []*models.Ranking {
	accs := make(map[int]*accumulator, len(teams))
	ordered := make([]*accumulator, 0, len(teams))
	for _, team := range teams {
		acc := &accumulator{teamID: team.TeamID, seed: team.Seed}
		accs[team.TeamID] = acc
		ordered = append(ordered, acc)
	}

	completed := make([]*models.Fixture, 0, len(fixtures))
	for _, f := range fixtures {
		if f.Status != models.FixtureStatusCompleted || f.ScoreA == nil || f.ScoreB == nil {
			continue
		}
		if f.TeamAID == nil || f.TeamBID == nil {
			continue
		}
		completed = append(completed, f)
		applyResult(accs, f, scoring)
	}

	cmp := newComparator(scoring, breakers, completed)
	sort.SliceStable(ordered, func(i, j int) bool {
		result := cmp.compare(ordered[i], ordered[j])
		if result != 0 {
			return result < 0
		}
		return ordered[i].teamID < ordered[j].teamID // stable output order inside a tie
	})

	now := time.Now()
	rows := make([]*models.Ranking, len(ordered))
	for i, acc := range ordered {
		rank := i + 1
		if i > 0 && cmp.compare(ordered[i-1], acc) == 0 {
			rank = rows[i-1].Rank // shared rank, next distinct team takes its position
		}
		rows[i] = &models.Ranking{
			StageID:        stageID,
			GroupID:        groupID,
			TeamID:         acc.teamID,
			Points:         acc.points,
			Played:         acc.played,
			Wins:           acc.wins,
			Draws:          acc.draws,
			Losses:         acc.losses,
			GoalsFor:       acc.goalsFor,
			GoalsAgainst:   acc.goalsAgainst,
			GoalDifference: acc.goalDifference(),
			Rank:           rank,
			UpdatedAt:      now,
		}
	}
	return rows
}

func applyResult(accs map[int]*accumulator, f *models.Fixture, scoring models.ScoringRule) {
	home, homeOK := accs[*f.TeamAID]
	away, awayOK := accs[*f.TeamBID]
	if !homeOK || !awayOK {
		return // fixture references a team outside this scope
	}

	scoreA, scoreB := *f.ScoreA, *f.ScoreB

	home.played++
	away.played++
	home.goalsFor += scoreA
	home.goalsAgainst += scoreB
	away.goalsFor += scoreB
	away.goalsAgainst += scoreA

	switch {
	case scoreA == scoreB:
		home.draws++
		away.draws++
		home.points += scoring.Draw
		away.points += scoring.Draw
	case scoreA > scoreB:
		home.wins++
		away.losses++
		home.points += scoring.Win
		away.points += scoring.Loss
	default:
		away.wins++
		home.losses++
		away.points += scoring.Win
		home.points += scoring.Loss
	}

	if detail, err := models.ParseScoreDetail(f.ScoreDetails); err == nil && detail != nil {
		home.fairPlayPenalties += detail.PenaltyA
		away.fairPlayPenalties += detail.PenaltyB
	}
}
