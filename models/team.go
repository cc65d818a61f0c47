package models

import "time"

// Team identity is owned by the directory; the engine reads it but never
// mutates anything beyond the badge.
type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CaptainID *int      `json:"captain_id,omitempty" db:"captain_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
