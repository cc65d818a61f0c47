package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PromotionRuleType mirrors the promotion_rule_type ENUM in the database.
type PromotionRuleType string

const (
	RuleTopN            PromotionRuleType = "top_n"
	RuleTopPerGroup     PromotionRuleType = "top_per_group"
	RulePointsThreshold PromotionRuleType = "points_threshold"
	RuleKnockoutWinners PromotionRuleType = "knockout_winners"
	RuleCustom          PromotionRuleType = "custom"
)

// TopNRule promotes the first N teams of the overall stage ranking.
type TopNRule struct {
	N int `json:"n"`
}

// TopPerGroupRule promotes the first N teams of every group ranking.
type TopPerGroupRule struct {
	N int `json:"n"`
}

// PointsThresholdRule promotes every team at or above the threshold.
type PointsThresholdRule struct {
	Threshold int `json:"threshold"`
}

// CustomRule delegates selection to a registered handler. Params pass
// through the engine opaquely.
type CustomRule struct {
	Handler string          `json:"handler_class"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// PromotionRule is the typed rule_config envelope; exactly the variant
// matching Type is populated, decoded once at the repository boundary.
type PromotionRule struct {
	Type            PromotionRuleType    `json:"type"`
	TopN            *TopNRule            `json:"top_n,omitempty"`
	TopPerGroup     *TopPerGroupRule     `json:"top_per_group,omitempty"`
	PointsThreshold *PointsThresholdRule `json:"points_threshold,omitempty"`
	Custom          *CustomRule          `json:"custom,omitempty"`
}

var ErrPromotionRuleInvalid = errors.New("promotion rule config invalid for rule type")

// DecodePromotionRule parses the rule_config column for the given rule type.
func DecodePromotionRule(ruleType PromotionRuleType, raw *string) (PromotionRule, error) {
	rule := PromotionRule{Type: ruleType}
	if raw != nil && *raw != "" {
		if err := json.Unmarshal([]byte(*raw), &rule); err != nil {
			return PromotionRule{}, fmt.Errorf("failed to decode promotion rule config: %w", err)
		}
	}
	rule.Type = ruleType
	switch ruleType {
	case RuleTopN:
		if rule.TopN == nil || rule.TopN.N < 1 {
			return PromotionRule{}, fmt.Errorf("%w: top_n requires n >= 1", ErrPromotionRuleInvalid)
		}
	case RuleTopPerGroup:
		if rule.TopPerGroup == nil || rule.TopPerGroup.N < 1 {
			return PromotionRule{}, fmt.Errorf("%w: top_per_group requires n >= 1", ErrPromotionRuleInvalid)
		}
	case RulePointsThreshold:
		if rule.PointsThreshold == nil {
			return PromotionRule{}, fmt.Errorf("%w: points_threshold requires a threshold", ErrPromotionRuleInvalid)
		}
	case RuleKnockoutWinners:
		// No config payload.
	case RuleCustom:
		if rule.Custom == nil || rule.Custom.Handler == "" {
			return PromotionRule{}, fmt.Errorf("%w: custom rule requires a handler identifier", ErrPromotionRuleInvalid)
		}
	default:
		return PromotionRule{}, fmt.Errorf("%w: unknown rule type %q", ErrPromotionRuleInvalid, ruleType)
	}
	return rule, nil
}

// EncodePromotionRule serializes a rule back into the storage column.
func EncodePromotionRule(rule PromotionRule) (string, error) {
	data, err := json.Marshal(rule)
	if err != nil {
		return "", fmt.Errorf("failed to encode promotion rule config: %w", err)
	}
	return string(data), nil
}

// StagePromotion configures how qualifying teams advance from a stage into
// its next stage.
type StagePromotion struct {
	ID          int               `json:"id" db:"id"`
	StageID     int               `json:"stage_id" db:"stage_id"`
	NextStageID int               `json:"next_stage_id" db:"next_stage_id"`
	RuleType    PromotionRuleType `json:"rule_type" db:"rule_type"`
	Rule        PromotionRule     `json:"rule_config" db:"-"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}

// PromotionAudit is an immutable history row appended on promotion
// execution. Rows are never updated or deleted.
type PromotionAudit struct {
	ID          int       `json:"id" db:"id"`
	StageID     int       `json:"stage_id" db:"stage_id"`
	TriggeredBy *int      `json:"triggered_by,omitempty" db:"triggered_by"`
	Simulated   bool      `json:"simulated" db:"simulated"`
	Result      string    `json:"result" db:"result"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// PromotionPreview is the read-only result of simulating a promotion.
type PromotionPreview struct {
	StageID     int               `json:"stage_id"`
	NextStageID int               `json:"next_stage_id"`
	RuleType    PromotionRuleType `json:"rule_type"`
	TeamIDs     []int             `json:"team_ids"`
	Teams       []Team            `json:"teams,omitempty"`
}
