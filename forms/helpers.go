// Package forms bridges the editable draft of a food record and the
// persistence payload: field sanitization, dirty tracking, ingredient
// parsing and score display formatting.
package forms

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Payload is a wire-level record draft, keyed by JSON field name.
type Payload map[string]any

// NumericFields is the required numeric subset coerced to 0 at the
// sanitization boundary. Optional numerics (price, abv_percentage, density)
// are deliberately absent so their null-ness survives a save.
var NumericFields = []string{
	"energy_kcal",
	"protein_g",
	"carbs_total_g",
	"fat_total_g",
	"sodium_mg",
	"fiber_g",
	"saturated_fat_g",
	"trans_fat_g",
	"serving_size_value",
}

// optionalNumericFields keep null distinct from zero.
var optionalNumericFields = map[string]bool{
	"price":          true,
	"abv_percentage": true,
	"density":        true,
}

// ignoredDirtyFields are identity/timestamp fields excluded from the dirty
// comparison.
var ignoredDirtyFields = []string{"last_update", "created_at", "id"}

// ScorePlaceholder is shown when a score is stale or was never computed.
const ScorePlaceholder = "—"

// ValidationError blocks submission before the payload reaches the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateFormData checks the required descriptive fields of a draft.
func ValidateFormData(data Payload) error {
	name, _ := data["name"].(string)
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "Name is required."}
	}
	return nil
}

// ScoreInputWarning is surfaced when a save skips scoring because the
// descriptive fields are incomplete.
const ScoreInputWarning = "Name and brand are required to calculate the score."

// CheckScoreInput reports whether the draft has the descriptive fields the
// score pipeline requires (name and brand).
func CheckScoreInput(data Payload) bool {
	name, _ := data["name"].(string)
	brand, _ := data["brand"].(string)
	return strings.TrimSpace(name) != "" && strings.TrimSpace(brand) != ""
}

// CleanFoodData normalizes a record loaded from the datastore into an
// editable draft: nulls become empty strings except for the optional
// numeric fields, ingredients_list defaults to an empty list and
// hfs_version defaults to v2.
func CleanFoodData(data Payload) Payload {
	clean := Payload{}
	for key, value := range data {
		switch {
		case key == "ingredients_list":
			if value == nil {
				clean[key] = []any{}
			} else {
				clean[key] = value
			}
		case optionalNumericFields[key]:
			if value != nil {
				clean[key] = value
			}
		case key == "hfs_version":
			if s, _ := value.(string); s != "" {
				clean[key] = s
			} else {
				clean[key] = "v2"
			}
		default:
			if value == nil {
				clean[key] = ""
			} else {
				clean[key] = value
			}
		}
	}
	return clean
}

// SanitizeNumericFields coerces the named fields to numbers, mapping empty
// strings and nulls to 0. Fields not named pass through untouched, so
// optional numerics keep their null-ness. Sanitizing twice is a no-op.
func SanitizeNumericFields(data Payload, fields []string) Payload {
	sanitized := Payload{}
	for k, v := range data {
		sanitized[k] = v
	}
	for _, field := range fields {
		sanitized[field] = toNumber(sanitized[field])
	}
	return sanitized
}

func toNumber(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		if strings.TrimSpace(v) == "" {
			return 0
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// IsDirty reports whether the draft differs from the last-persisted copy,
// comparing serialized values key by key and ignoring identity and
// timestamp fields. Array-valued fields compare order-sensitively.
func IsDirty(current, original Payload) bool {
	return isDirtyIgnoring(current, original, ignoredDirtyFields)
}

func isDirtyIgnoring(current, original Payload, ignored []string) bool {
	skip := map[string]bool{}
	for _, f := range ignored {
		skip[f] = true
	}
	for key := range current {
		if skip[key] {
			continue
		}
		cur, _ := json.Marshal(current[key])
		orig, _ := json.Marshal(original[key])
		if string(cur) != string(orig) {
			return true
		}
	}
	return false
}

// FormatHFSScore renders a score for display. A dirty draft always shows
// the placeholder since the stored score is stale; so do the sentinel and
// anything non-numeric or negative.
func FormatHFSScore(hfs *float64, dirty bool) string {
	if dirty {
		return ScorePlaceholder
	}
	if hfs == nil || math.IsNaN(*hfs) || *hfs < 0 {
		return ScorePlaceholder
	}
	return strconv.FormatFloat(*hfs, 'f', 1, 64)
}

// ParseIngredients splits a raw comma-separated ingredient string into
// trimmed, non-empty entries, preserving order and duplicates.
func ParseIngredients(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// CleanIngredientsList trims the entries of an already-split list and drops
// the empties, mirroring ParseIngredients for list-valued input.
func CleanIngredientsList(list []string) []string {
	out := []string{}
	for _, item := range list {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
