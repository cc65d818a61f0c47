package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ScoringRule holds the points awarded per fixture outcome.
type ScoringRule struct {
	Win  int `json:"win"`
	Draw int `json:"draw"`
	Loss int `json:"loss"`
}

// DefaultScoring is the conventional 3-1-0 football scoring.
var DefaultScoring = ScoringRule{Win: 3, Draw: 1, Loss: 0}

// TieBreaker names a comparator applied after points when ordering rankings.
type TieBreaker string

const (
	TieBreakGoalDifference TieBreaker = "goal_difference"
	TieBreakGoalsFor       TieBreaker = "goals_for"
	TieBreakGoalsAgainst   TieBreaker = "goals_against"
	TieBreakHeadToHead     TieBreaker = "head_to_head"
	TieBreakWins           TieBreaker = "wins"
	TieBreakFairPlay       TieBreaker = "fair_play"
	// TieBreakSeed is the terminal deterministic breaker: lower seed ranks
	// higher. With it configured, two teams can never share a rank.
	TieBreakSeed TieBreaker = "seed"
)

// LeagueSettings configures a round-robin league stage.
type LeagueSettings struct {
	Rounds      int  `json:"rounds"`
	HomeAndAway bool `json:"home_and_away"`
}

// GroupSettings configures a grouped round-robin stage.
type GroupSettings struct {
	GroupsCount   int  `json:"groups_count"`
	TeamsPerGroup int  `json:"teams_per_group"`
	Rounds        int  `json:"rounds"`
	HomeAndAway   bool `json:"home_and_away"`
}

// KnockoutSettings configures a seeded elimination bracket stage.
type KnockoutSettings struct {
	Legs            int  `json:"legs"`
	Seeding         bool `json:"seeding"`
	ThirdPlaceMatch bool `json:"third_place_match"`
}

// SwissSettings configures a swiss pairing stage.
type SwissSettings struct {
	Rounds int `json:"rounds"`
}

// StageSettings is the typed settings envelope for a stage. Exactly one
// format variant may be set and it must match the stage type; the raw JSON
// column is decoded into this once at the repository boundary and never
// handled as an untyped map anywhere else.
type StageSettings struct {
	MatchDuration int          `json:"match_duration,omitempty"` // minutes
	MatchInterval int          `json:"match_interval,omitempty"` // minutes
	Scoring       ScoringRule  `json:"scoring"`
	TieBreakers   []TieBreaker `json:"tie_breakers,omitempty"`

	League   *LeagueSettings   `json:"league,omitempty"`
	Group    *GroupSettings    `json:"group,omitempty"`
	Knockout *KnockoutSettings `json:"knockout,omitempty"`
	Swiss    *SwissSettings    `json:"swiss,omitempty"`
}

var ErrSettingsVariantMismatch = errors.New("stage settings variant does not match stage type")

// DecodeStageSettings parses the raw settings column for a stage and checks
// the variant against the stage type. A nil or empty payload yields defaults.
func DecodeStageSettings(stageType StageType, raw *string) (StageSettings, error) {
	settings := StageSettings{Scoring: DefaultScoring}
	if raw != nil && *raw != "" {
		if err := json.Unmarshal([]byte(*raw), &settings); err != nil {
			return StageSettings{}, fmt.Errorf("failed to decode stage settings: %w", err)
		}
	}
	if settings.Scoring == (ScoringRule{}) {
		settings.Scoring = DefaultScoring
	}
	if err := settings.validateVariant(stageType); err != nil {
		return StageSettings{}, err
	}
	settings.applyDefaults(stageType)
	return settings, nil
}

// EncodeStageSettings serializes settings back into the storage column.
func EncodeStageSettings(settings StageSettings) (string, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("failed to encode stage settings: %w", err)
	}
	return string(data), nil
}

func (s *StageSettings) validateVariant(stageType StageType) error {
	variants := 0
	for _, set := range []bool{s.League != nil, s.Group != nil, s.Knockout != nil, s.Swiss != nil} {
		if set {
			variants++
		}
	}
	if variants > 1 {
		return fmt.Errorf("%w: multiple format variants set", ErrSettingsVariantMismatch)
	}
	switch stageType {
	case StageTypeLeague:
		if variants == 1 && s.League == nil {
			return fmt.Errorf("%w: league stage requires league settings", ErrSettingsVariantMismatch)
		}
	case StageTypeGroup:
		if variants == 1 && s.Group == nil {
			return fmt.Errorf("%w: group stage requires group settings", ErrSettingsVariantMismatch)
		}
	case StageTypeKnockout:
		if variants == 1 && s.Knockout == nil {
			return fmt.Errorf("%w: knockout stage requires knockout settings", ErrSettingsVariantMismatch)
		}
	case StageTypeSwiss:
		if variants == 1 && s.Swiss == nil {
			return fmt.Errorf("%w: swiss stage requires swiss settings", ErrSettingsVariantMismatch)
		}
	case StageTypeKingOfHill, StageTypeCustom:
		if variants != 0 {
			return fmt.Errorf("%w: %s stage takes no format settings", ErrSettingsVariantMismatch, stageType)
		}
	}
	return nil
}

func (s *StageSettings) applyDefaults(stageType StageType) {
	switch stageType {
	case StageTypeLeague:
		if s.League == nil {
			s.League = &LeagueSettings{Rounds: 1}
		}
		if s.League.Rounds < 1 {
			s.League.Rounds = 1
		}
	case StageTypeGroup:
		if s.Group == nil {
			s.Group = &GroupSettings{Rounds: 1}
		}
		if s.Group.Rounds < 1 {
			s.Group.Rounds = 1
		}
	case StageTypeKnockout:
		if s.Knockout == nil {
			s.Knockout = &KnockoutSettings{Legs: 1, Seeding: true}
		}
		if s.Knockout.Legs != 2 {
			s.Knockout.Legs = 1
		}
	case StageTypeSwiss:
		if s.Swiss == nil {
			s.Swiss = &SwissSettings{Rounds: 1}
		}
		if s.Swiss.Rounds < 1 {
			s.Swiss.Rounds = 1
		}
	}
}
