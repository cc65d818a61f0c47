package models

import (
	"encoding/json"
	"time"
)

// FixtureStatus mirrors the fixture_status ENUM in the database.
type FixtureStatus string

const (
	FixtureStatusUpcoming   FixtureStatus = "upcoming"
	FixtureStatusInProgress FixtureStatus = "in_progress"
	FixtureStatusCompleted  FixtureStatus = "completed"
	FixtureStatusCancelled  FixtureStatus = "cancelled"
	FixtureStatusPostponed  FixtureStatus = "postponed"
)

// Fixture is a single scheduled match between two teams within a stage and
// optionally a group. Team ids are nullable: later knockout rounds are
// created as placeholders and filled as winners advance.
type Fixture struct {
	ID       int           `json:"id" db:"id"`
	StageID  int           `json:"stage_id" db:"stage_id"`
	GroupID  *int          `json:"group_id,omitempty" db:"group_id"`
	TeamAID  *int          `json:"team_a_id,omitempty" db:"team_a_id"`
	TeamBID  *int          `json:"team_b_id,omitempty" db:"team_b_id"`
	StartsAt time.Time     `json:"starts_at" db:"starts_at"`
	Duration int           `json:"duration" db:"duration"` // minutes
	Status   FixtureStatus `json:"status" db:"status"`

	ScoreA       *int    `json:"score_a,omitempty" db:"score_a"`
	ScoreB       *int    `json:"score_b,omitempty" db:"score_b"`
	ScoreDetails *string `json:"score_details,omitempty" db:"score_details"`
	WinnerTeamID *int    `json:"winning_team_id,omitempty" db:"winning_team_id"`

	// Bracket traceability metadata. Round numbers start at 1, RoundLabel is
	// descriptive only ("Semi-Final") and nothing keys off it.
	Round      int    `json:"round" db:"round"`
	RoundLabel string `json:"round_label" db:"round_label"`
	MatchOrder int    `json:"match_order" db:"match_order"`
	BracketUID string `json:"bracket_uid,omitempty" db:"bracket_uid"`

	// Knockout advancement links: the recorded winner of this fixture fills
	// slot WinnerToSlot (1 or 2) of NextFixtureID. The loser links mirror
	// that for the third-place play-off, fed by the semi-final losers.
	NextFixtureID      *int `json:"next_fixture_id,omitempty" db:"next_fixture_id"`
	WinnerToSlot       *int `json:"winner_to_slot,omitempty" db:"winner_to_slot"`
	LoserNextFixtureID *int `json:"loser_next_fixture_id,omitempty" db:"loser_next_fixture_id"`
	LoserToSlot        *int `json:"loser_to_slot,omitempty" db:"loser_to_slot"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasTeam reports whether the fixture involves the given team.
func (f *Fixture) HasTeam(teamID int) bool {
	return (f.TeamAID != nil && *f.TeamAID == teamID) || (f.TeamBID != nil && *f.TeamBID == teamID)
}

// LoserTeamID returns the non-winning team of a decided fixture, nil for
// draws, undecided fixtures or placeholders.
func (f *Fixture) LoserTeamID() *int {
	if f.WinnerTeamID == nil || f.TeamAID == nil || f.TeamBID == nil {
		return nil
	}
	if *f.WinnerTeamID == *f.TeamAID {
		return f.TeamBID
	}
	return f.TeamAID
}

// ScoreDetail is the optional structured score payload stored alongside the
// integer scores. Penalty counts feed the fair-play tie-breaker.
type ScoreDetail struct {
	Periods   [][2]int `json:"periods,omitempty"`
	PenaltyA  int      `json:"penalty_a,omitempty"`
	PenaltyB  int      `json:"penalty_b,omitempty"`
	Shootout  *[2]int  `json:"shootout,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	Submitted string   `json:"submitted,omitempty"`
}

// ParseScoreDetail decodes the fixture score payload, tolerating absence.
func ParseScoreDetail(raw *string) (*ScoreDetail, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	var detail ScoreDetail
	if err := json.Unmarshal([]byte(*raw), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}
