package fixtures

import (
	"context"

	"github.com/myckhel/turfHub-sub002/models"
)

// CustomGenerator produces no fixtures: custom stages have their fixtures
// created manually through the normal fixture creation path.
type CustomGenerator struct{}

func NewCustomGenerator() Generator {
	return &CustomGenerator{}
}

func (g *CustomGenerator) Name() string {
	return "Custom"
}

func (g *CustomGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Fixture, error) {
	return []*models.Fixture{}, nil
}
