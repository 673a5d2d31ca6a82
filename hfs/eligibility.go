// Package hfs implements the Healthy Food Score pipeline: the eligibility
// pre-check, the per-100g sub-metric derivation, and the pluggable score
// provider that turns sub-metrics into an aggregate score.
package hfs

import (
	"strings"

	"github.com/leohmarruda/health-food-score/models"
)

// Score versions.
const (
	VersionV1 = "v1"
	VersionV2 = "v2"
)

// Warning dictionary keys, overridable per locale.
const (
	WarnMissingIngredients = "missing_ingredients"
	WarnMissingEnergy      = "missing_energy"
	WarnMissingNova        = "missing_nova"
)

var defaultWarnings = map[string]string{
	WarnMissingIngredients: "Ingredients are required to calculate the score.",
	WarnMissingEnergy:      "Energy (kcal) is required to calculate the score.",
	WarnMissingNova:        "A NOVA processing classification is required to calculate the score.",
}

// EligibilityResult reports whether a record has enough data to be scored,
// with one warning per unmet requirement.
type EligibilityResult struct {
	Success  bool     `json:"success"`
	Warnings []string `json:"warnings"`
}

// CheckEligibility runs every scoring prerequisite independently so all
// applicable warnings surface together. Success is the conjunction of the
// checks; the record is never mutated. Both score versions currently share
// the same prerequisites.
func CheckEligibility(f *models.Food, version string, dict map[string]string) EligibilityResult {
	res := EligibilityResult{Warnings: []string{}}
	if f == nil {
		f = &models.Food{}
	}

	if len(f.IngredientsList) == 0 && strings.TrimSpace(f.IngredientsRaw) == "" {
		res.Warnings = append(res.Warnings, warning(dict, WarnMissingIngredients))
	}
	if f.EnergyKcal == 0 {
		res.Warnings = append(res.Warnings, warning(dict, WarnMissingEnergy))
	}
	if f.Nova == nil {
		res.Warnings = append(res.Warnings, warning(dict, WarnMissingNova))
	}

	res.Success = len(res.Warnings) == 0
	return res
}

func warning(dict map[string]string, key string) string {
	if dict != nil {
		if msg, ok := dict[key]; ok && msg != "" {
			return msg
		}
	}
	return defaultWarnings[key]
}
