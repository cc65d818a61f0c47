package models

import "time"

// StageType mirrors the stage_type ENUM in the database.
type StageType string

const (
	StageTypeLeague     StageType = "league"
	StageTypeGroup      StageType = "group"
	StageTypeKnockout   StageType = "knockout"
	StageTypeSwiss      StageType = "swiss"
	StageTypeKingOfHill StageType = "king_of_hill"
	StageTypeCustom     StageType = "custom"
)

// StageStatus mirrors the stage_status ENUM in the database.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
	StageStatusCancelled StageStatus = "cancelled"
)

// Stage is one phase of a tournament with its own format, team set,
// fixtures and rankings. Stages chain through NextStageID.
type Stage struct {
	ID           int           `json:"id" db:"id"`
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	Name         string        `json:"name" db:"name"`
	Order        int           `json:"order" db:"stage_order"`
	Type         StageType     `json:"stage_type" db:"stage_type"`
	Status       StageStatus   `json:"status" db:"status"`
	Settings     StageSettings `json:"settings" db:"-"`
	NextStageID  *int          `json:"next_stage_id,omitempty" db:"next_stage_id"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`

	// Optional linked entities, populated by services.
	Teams    []StageTeam `json:"teams,omitempty" db:"-"`
	Groups   []Group     `json:"groups,omitempty" db:"-"`
	Fixtures []Fixture   `json:"fixtures,omitempty" db:"-"`
	Rankings []Ranking   `json:"rankings,omitempty" db:"-"`
}

// StageTeam is the (stage, team) assignment join row, unique per pair.
// Seed drives bracket placement and deterministic tie resolution.
type StageTeam struct {
	ID        int       `json:"id" db:"id"`
	StageID   int       `json:"stage_id" db:"stage_id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	Seed      int       `json:"seed" db:"seed"`
	GroupID   *int      `json:"group_id,omitempty" db:"group_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}

// Group scopes teams, fixtures and rankings within a group-type stage.
type Group struct {
	ID       int    `json:"id" db:"id"`
	StageID  int    `json:"stage_id" db:"stage_id"`
	Name     string `json:"name" db:"name"`
	Position int    `json:"position" db:"position"`
}
