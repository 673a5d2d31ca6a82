// Package nutrition computes display-ready nutrient quantities from a food
// record. All functions are pure: values are resolved with structured
// nutrition_parsed sub-fields taking precedence over flat columns, scaled to
// the requested serving basis and consumption multiplier, and formatted with
// the exact rounding the nutrition label uses.
package nutrition

import (
	"math"
	"strconv"

	"github.com/leohmarruda/health-food-score/models"
)

// MinMultiplier is the smallest number of servings the label can show.
// The multiplier is adjusted in steps of 0.5 and never drops below this.
const MinMultiplier = 0.5

// Basis captures the serving basis a label is rendered against.
type Basis struct {
	ServingSize float64
	ServingUnit string
	Multiplier  float64
	TotalRatio  float64
}

// BasisFor resolves the serving size and unit of a record and derives the
// total scaling ratio. When usePortion is false values stay on the per-100g
// basis; otherwise they are scaled by servingSize/100. Serving size falls
// back metadata -> flat column -> 100, so a missing or non-positive serving
// never produces a zero or negative ratio.
func BasisFor(f *models.Food, usePortion bool, multiplier float64) Basis {
	if multiplier < MinMultiplier {
		multiplier = MinMultiplier
	}

	size := 100.0
	unit := "g"
	var meta *models.ParsedMetadata
	if f != nil && f.NutritionParsed != nil {
		meta = f.NutritionParsed.Metadata
	}
	switch {
	case meta != nil && meta.ServingSize != nil && *meta.ServingSize > 0:
		size = *meta.ServingSize
	case f != nil && f.ServingSizeValue != nil && *f.ServingSizeValue > 0:
		size = *f.ServingSizeValue
	}
	switch {
	case meta != nil && meta.ServingSizeUnit != "":
		unit = meta.ServingSizeUnit
	case f != nil && f.ServingSizeUnit != "":
		unit = f.ServingSizeUnit
	}

	baseRatio := 1.0
	if usePortion {
		baseRatio = size / 100
	}
	return Basis{
		ServingSize: size,
		ServingUnit: unit,
		Multiplier:  multiplier,
		TotalRatio:  baseRatio * multiplier,
	}
}

// FormatGrams scales a gram-range value and formats it to one decimal.
// A nil or zero source renders as "0".
func (b Basis) FormatGrams(v *float64) string {
	if v == nil || *v == 0 {
		return "0"
	}
	return strconv.FormatFloat(*v*b.TotalRatio, 'f', 1, 64)
}

// RoundScaled scales a value and rounds to the nearest integer, used for
// calories and mg/mcg micronutrient amounts. A nil source yields 0.
func (b Basis) RoundScaled(v *float64) int {
	if v == nil {
		return 0
	}
	return roundHalfUp(*v * b.TotalRatio)
}

// Percent computes the rounded % daily value of a scaled amount.
// A nil source yields 0.
func (b Basis) Percent(v *float64, dailyValue float64) int {
	if v == nil {
		return 0
	}
	return roundHalfUp(*v * b.TotalRatio / dailyValue * 100)
}

// roundHalfUp matches JavaScript's Math.round for the non-negative values
// that appear on labels: halves round up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Coalesce returns the first non-nil value, or nil when every source is
// absent. It encodes the structured-then-flat precedence rule.
func Coalesce(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func ptr(v float64) *float64 { return &v }
