package models

import "time"

// Ranking is one computed standings row per (stage, group-or-null, team).
// Rows are a derived cache: every recompute wholesale-replaces the set for
// its scope, they are never patched incrementally.
type Ranking struct {
	ID             int       `json:"id" db:"id"`
	StageID        int       `json:"stage_id" db:"stage_id"`
	GroupID        *int      `json:"group_id,omitempty" db:"group_id"`
	TeamID         int       `json:"team_id" db:"team_id"`
	Points         int       `json:"points" db:"points"`
	Played         int       `json:"played" db:"played"`
	Wins           int       `json:"wins" db:"wins"`
	Draws          int       `json:"draws" db:"draws"`
	Losses         int       `json:"losses" db:"losses"`
	GoalsFor       int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst   int       `json:"goals_against" db:"goals_against"`
	GoalDifference int       `json:"goal_difference" db:"goal_difference"`
	Rank           int       `json:"rank" db:"rank"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
