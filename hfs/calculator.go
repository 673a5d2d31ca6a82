package hfs

import (
	"context"
	"fmt"
	"math"
	"regexp"

	"github.com/leohmarruda/health-food-score/logger"
	"github.com/leohmarruda/health-food-score/models"
	"github.com/leohmarruda/health-food-score/nutrition"
)

// Sub-metric keys of the score breakdown. Every value is normalized to a
// per-100g basis before it enters the breakdown, except S7 (the NOVA class)
// and S8 (the additive load, a count/weight over the ingredient list).
const (
	SubSugars         = "s1"
	SubFiber          = "s2"
	SubFatProfile     = "s3"
	SubCaloricDensity = "s4"
	SubProtein        = "s5"
	SubSodium         = "s6"
	SubProcessing     = "s7"
	SubAdditives      = "s8"
)

// Result is the outcome of a score calculation. HFSScore stays at the
// models.ScoreNotComputed sentinel until an aggregating provider is wired in.
type Result struct {
	Success    bool               `json:"success"`
	HFSScore   float64            `json:"hfs_score"`
	Confidence float64            `json:"confidence"`
	Reasoning  string             `json:"reasoning,omitempty"`
	Scores     map[string]float64 `json:"scores,omitempty"`
}

// CalculationError signals an internal failure while deriving sub-metrics.
// Callers must persist the sentinel score, never a partial one.
type CalculationError struct {
	Message string
	Err     error
}

func (e *CalculationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CalculationError) Unwrap() error { return e.Err }

const defaultCalculationError = "Error calculating Nutritional Score. Please check the entered values."

// Calculator derives the score breakdown and delegates aggregation to a
// ScoreProvider strategy.
type Calculator struct {
	provider  ScoreProvider
	additives []models.FoodAdditive
}

// NewCalculator builds a calculator around a provider; a nil provider falls
// back to the stub that returns the not-computed sentinel.
func NewCalculator(provider ScoreProvider) *Calculator {
	if provider == nil {
		provider = StubProvider{}
	}
	return &Calculator{provider: provider}
}

// WithAdditives supplies the managed additive definitions used to weight the
// additive sub-metric. Without them S8 falls back to the ingredient count.
func (c *Calculator) WithAdditives(additives []models.FoodAdditive) *Calculator {
	c.additives = additives
	return c
}

// ConversionFactor maps serving-based values to a per-100g basis. It is
// exactly 100/serving_size_value for gram servings; a zero or absent gram
// serving is treated as 100g, and non-gram servings pass through unscaled.
func ConversionFactor(f *models.Food) float64 {
	if f == nil {
		return 1
	}
	unit := f.ServingSizeUnit
	if f.NutritionParsed != nil && f.NutritionParsed.Metadata != nil && f.NutritionParsed.Metadata.ServingSizeUnit != "" {
		unit = f.NutritionParsed.Metadata.ServingSizeUnit
	}
	if unit != "" && unit != "g" {
		return 1
	}
	size := 0.0
	if f.NutritionParsed != nil && f.NutritionParsed.Metadata != nil && f.NutritionParsed.Metadata.ServingSize != nil {
		size = *f.NutritionParsed.Metadata.ServingSize
	}
	if size == 0 && f.ServingSizeValue != nil {
		size = *f.ServingSizeValue
	}
	if size <= 0 {
		return 1
	}
	return 100 / size
}

// Calculate derives the sub-metric breakdown of a record that already passed
// the eligibility check, then asks the provider for the aggregate score.
// Provider failures are non-fatal and downgrade to the sentinel; malformed
// numeric input raises a *CalculationError.
func (c *Calculator) Calculate(ctx context.Context, f *models.Food, version string, dict map[string]string) (Result, error) {
	if f == nil {
		return Result{}, calcError(dict, nil)
	}

	factor := ConversionFactor(f)
	scores, err := c.subMetrics(f, factor)
	if err != nil {
		return Result{}, calcError(dict, err)
	}

	out, err := c.provider.Score(ctx, ProviderInput{
		Food:    f,
		Version: version,
		Factor:  factor,
		Scores:  scores,
	})
	if err != nil {
		// Provider errors downgrade to the sentinel; the breakdown stays valid.
		logger.Warn("Score provider failed, falling back to sentinel", "food_id", f.ID, "error", err)
		return Result{
			Success:    false,
			HFSScore:   models.ScoreNotComputed,
			Confidence: 1,
			Scores:     scores,
		}, nil
	}

	return Result{
		Success:    true,
		HFSScore:   out.HFSScore,
		Confidence: out.Confidence,
		Reasoning:  out.Reasoning,
		Scores:     scores,
	}, nil
}

// subMetrics builds the per-100g breakdown. A sub-metric is present only
// when its source value is strictly positive.
func (c *Calculator) subMetrics(f *models.Food, factor float64) (map[string]float64, error) {
	g := parsedOf(f)

	scores := map[string]float64{}
	put := func(key string, src *float64, scale float64) error {
		if src == nil || *src <= 0 {
			return nil
		}
		v := *src * scale
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("sub-metric %s is not a finite number", key)
		}
		scores[key] = v
		return nil
	}

	energy := f.EnergyKcal
	protein := f.ProteinG

	steps := []error{
		put(SubSugars, g.sugars, factor),
		put(SubFiber, nutrition.Coalesce(g.fiber, f.FiberG), factor),
		put(SubFatProfile, nutrition.Coalesce(g.saturatedFat, f.SaturatedFatG), factor),
		put(SubCaloricDensity, nutrition.Coalesce(g.energy, &energy), factor),
		put(SubProtein, nutrition.Coalesce(g.protein, &protein), factor),
		put(SubSodium, nutrition.Coalesce(g.sodium, f.SodiumMg), factor),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}

	if f.Nova != nil && *f.Nova > 0 {
		scores[SubProcessing] = float64(*f.Nova)
	}
	if load := c.additiveLoad(f); load > 0 {
		scores[SubAdditives] = load
	}

	return scores, nil
}

// additiveLoad sums the weights of managed additives matched against the
// ingredient list, or counts ingredients when no definitions are loaded.
func (c *Calculator) additiveLoad(f *models.Food) float64 {
	ingredients := f.IngredientsList
	if len(ingredients) == 0 {
		return 0
	}
	if len(c.additives) == 0 {
		return float64(len(ingredients))
	}

	load := 0.0
	for _, a := range c.additives {
		re, err := regexp.Compile("(?i)" + a.Regex)
		if err != nil {
			logger.Warn("Skipping additive with invalid regex", "additive", a.Name, "error", err)
			continue
		}
		for _, ing := range ingredients {
			if re.MatchString(ing) {
				load += a.Weight
				break
			}
		}
	}
	return load
}

type parsedValues struct {
	energy, sugars, fiber, saturatedFat, protein, sodium *float64
}

func parsedOf(f *models.Food) parsedValues {
	var v parsedValues
	np := f.NutritionParsed
	if np == nil {
		return v
	}
	v.energy = np.EnergyKcal
	if np.Carbohydrates != nil {
		v.sugars = np.Carbohydrates.SugarsTotalG
	}
	if np.Fiber != nil {
		v.fiber = np.Fiber.TotalFiberG
	}
	if np.Fats != nil {
		v.saturatedFat = np.Fats.SaturatedFatsG
	}
	if np.Proteins != nil {
		v.protein = np.Proteins.TotalProteinsG
	}
	if np.MineralsMg != nil {
		v.sodium = np.MineralsMg.SodiumMg
	}
	return v
}

func calcError(dict map[string]string, err error) *CalculationError {
	msg := defaultCalculationError
	if dict != nil {
		if m, ok := dict["calculation_error"]; ok && m != "" {
			msg = m
		}
	}
	return &CalculationError{Message: msg, Err: err}
}
