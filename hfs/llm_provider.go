package hfs

import (
	"context"
	"fmt"
	"strings"

	"github.com/leohmarruda/health-food-score/llm"
	"github.com/leohmarruda/health-food-score/models"
)

// LLMProvider asks an external model to aggregate the sub-metric breakdown
// into a 0-10 score. It is the extension point that replaces the sentinel
// once scoring is enabled; unconfigured clients simply fail over to the
// sentinel through the calculator's provider-error path.
type LLMProvider struct {
	client *llm.Client
}

func NewLLMProvider() *LLMProvider {
	return &LLMProvider{client: llm.NewClient()}
}

func (p *LLMProvider) IsConfigured() bool {
	return p.client.IsConfigured()
}

func (p *LLMProvider) Score(ctx context.Context, in ProviderInput) (ProviderResult, error) {
	if !p.client.IsConfigured() {
		return ProviderResult{}, fmt.Errorf("score provider not configured")
	}

	prompt := fmt.Sprintf(`Rate the nutritional quality of this food on a 0-10 scale (%s).
Name: %s (Brand: %s)
Ingredients: %s
Per-100g sub-metrics: %v

Return ONLY a JSON object:
{
  "hfs_score": float,
  "confidence": float,
  "reasoning": string
}`, in.Version, in.Food.Name, in.Food.Brand, strings.Join(in.Food.IngredientsList, ", "), in.Scores)

	var data struct {
		HFSScore   float64 `json:"hfs_score"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	err := p.client.ChatJSON(ctx, []llm.Message{
		{Role: "system", Content: "You are a nutrition expert. Score packaged foods from their label data."},
		{Role: "user", Content: prompt},
	}, &data)
	if err != nil {
		return ProviderResult{}, err
	}

	if data.HFSScore < 0 || data.HFSScore > 10 {
		data.HFSScore = models.ScoreNotComputed
	}
	return ProviderResult{
		HFSScore:   data.HFSScore,
		Confidence: data.Confidence,
		Reasoning:  data.Reasoning,
	}, nil
}
