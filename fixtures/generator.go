package fixtures

import (
	"context"
	"errors"
	"time"

	"github.com/myckhel/turfHub-sub002/models"
)

var (
	ErrInsufficientTeams         = errors.New("not enough teams to generate fixtures (minimum 2 required)")
	ErrInvalidGroupConfiguration = errors.New("invalid group configuration")
	ErrUnsupportedStageType      = errors.New("stage type is not handled by the fixture generator")
)

// GenerateParams carries everything a strategy may need. Rankings and
// PriorFixtures are only consulted by the swiss strategy.
type GenerateParams struct {
	Stage         *models.Stage
	Teams         []*models.StageTeam
	Groups        []*models.Group
	Rankings      []*models.Ranking
	PriorFixtures []*models.Fixture

	// Kickoff anchors sequential scheduling; zero leaves StartsAt unset.
	Kickoff time.Time
}

// Generator turns a stage's team set into a fixture list. Implementations
// must be deterministic given stable seed ordering: the same params always
// produce the same fixtures in the same order.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]*models.Fixture, error)

	Name() string
}

// ForStageType resolves the strategy for a stage type. King-of-hill stages
// are driven by the session rotation queue, not by fixture generation.
func ForStageType(stageType models.StageType) (Generator, error) {
	switch stageType {
	case models.StageTypeLeague, models.StageTypeGroup:
		return NewRoundRobinGenerator(), nil
	case models.StageTypeKnockout:
		return NewKnockoutGenerator(), nil
	case models.StageTypeSwiss:
		return NewSwissGenerator(), nil
	case models.StageTypeCustom:
		return NewCustomGenerator(), nil
	default:
		return nil, ErrUnsupportedStageType
	}
}
