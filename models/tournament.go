package models

import "time"

// TournamentType mirrors the tournament_type ENUM in the database.
type TournamentType string

const (
	TournamentSingleSession TournamentType = "single_session"
	TournamentMultiStage    TournamentType = "multi_stage"
)

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusDraft     TournamentStatus = "draft"
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCanceled  TournamentStatus = "canceled"
)

// Tournament is the top-level competition a chain of stages belongs to.
type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Type      TournamentType   `json:"type" db:"type"`
	Status    TournamentStatus `json:"status" db:"status"`
	StartDate time.Time        `json:"start_date" db:"start_date"`
	EndDate   time.Time        `json:"end_date" db:"end_date"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	LogoKey   *string          `json:"-" db:"logo_key"`
	LogoURL   *string          `json:"logo_url,omitempty" db:"-"`

	// Optional linked entities, populated by services, never by repositories.
	Stages []Stage `json:"stages,omitempty" db:"-"`
}
