package hfs

import (
	"context"

	"github.com/leohmarruda/health-food-score/models"
)

// ProviderInput carries everything an aggregating collaborator needs: the
// record, the score version, the per-100g conversion factor and the derived
// sub-metric breakdown.
type ProviderInput struct {
	Food    *models.Food
	Version string
	Factor  float64
	Scores  map[string]float64
}

// ProviderResult is the aggregate outcome returned by a collaborator.
type ProviderResult struct {
	HFSScore   float64
	Confidence float64
	Reasoning  string
}

// ScoreProvider aggregates a sub-metric breakdown into a final score.
// Implementations may call out to external services and should honor ctx.
type ScoreProvider interface {
	Score(ctx context.Context, in ProviderInput) (ProviderResult, error)
}

// StubProvider is the deployed default: it declines aggregation and returns
// the not-computed sentinel with full confidence, leaving the breakdown as
// the only score output.
type StubProvider struct{}

func (StubProvider) Score(ctx context.Context, in ProviderInput) (ProviderResult, error) {
	return ProviderResult{
		HFSScore:   models.ScoreNotComputed,
		Confidence: 1,
	}, nil
}
