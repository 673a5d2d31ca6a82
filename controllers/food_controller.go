package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/leohmarruda/health-food-score/database"
	"github.com/leohmarruda/health-food-score/forms"
	"github.com/leohmarruda/health-food-score/hfs"
	"github.com/leohmarruda/health-food-score/logger"
	"github.com/leohmarruda/health-food-score/models"
)

// sortableColumns whitelists the order-by targets of the list endpoint.
var sortableColumns = map[string]bool{
	"name":        true,
	"brand":       true,
	"category":    true,
	"hfs":         true,
	"energy_kcal": true,
	"price":       true,
	"created_at":  true,
	"last_update": true,
}

// updatableColumns is the persistence payload shape: every save writes the
// whole field set, not a diff.
var updatableColumns = []string{
	"name", "brand", "category", "hfs", "hfs_version", "nova",
	"energy_kcal", "protein_g", "carbs_total_g", "fat_total_g",
	"saturated_fat_g", "trans_fat_g", "sodium_mg", "fiber_g",
	"serving_size_value", "serving_size_unit",
	"price", "abv_percentage", "density",
	"ingredients_raw", "ingredients_list", "nutrition_raw", "nutrition_parsed",
	"declared_percentages", "declared_special_nutrients", "declared_processes",
	"declared_warnings", "fermentation_type",
	"website", "location", "certifications", "data_source",
}

// ListFoods returns all records, newest first by default. orderBy and
// direction query params adjust the sort within a whitelisted column set.
func ListFoods(w http.ResponseWriter, r *http.Request) {
	orderBy := r.URL.Query().Get("orderBy")
	if !sortableColumns[orderBy] {
		orderBy = "created_at"
	}
	direction := strings.ToLower(r.URL.Query().Get("direction"))
	if direction != "asc" {
		direction = "desc"
	}

	var foods []models.Food
	if err := database.DB.Order(orderBy + " " + direction).Find(&foods).Error; err != nil {
		logger.Error("Failed to list foods", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, foods)
}

// GetFood fetches one record by id.
func GetFood(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var food models.Food
	if err := database.DB.First(&food, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, fmt.Errorf("food %s not found", id))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, food)
}

// CreateFood inserts a record from a manual-entry payload. The datastore
// assigns identity and created_at.
func CreateFood(w http.ResponseWriter, r *http.Request) {
	var food models.Food
	if err := json.NewDecoder(r.Body).Decode(&food); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	if strings.TrimSpace(food.Name) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("name is required"))
		return
	}

	food.ID = ""
	food.HFS = models.ScoreNotComputed
	if food.HFSVersion == "" {
		food.HFSVersion = hfs.VersionV2
	}
	food.IngredientsList = datatypes.JSONSlice[string](forms.CleanIngredientsList(food.IngredientsList))
	food.LastUpdate = time.Now().UTC()

	if err := database.DB.Create(&food).Error; err != nil {
		logger.Error("Failed to create food", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	logger.Info("Food created", "id", food.ID, "name", food.Name)
	writeJSON(w, http.StatusCreated, food)
}

// UpdateFood is the save path: validate, gate on the score input fields,
// run the eligibility check, score when eligible (sentinel otherwise),
// sanitize the numeric subset and write the whole payload back.
func UpdateFood(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload forms.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	if err := forms.ValidateFormData(payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var food models.Food
	if err := database.DB.First(&food, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, fmt.Errorf("food %s not found", id))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// Sanitize the required numeric subset up front; form drafts carry ""
	// where the user cleared a field.
	sanitized := forms.SanitizeNumericFields(payload, forms.NumericFields)
	for _, col := range []string{"price", "abv_percentage", "density", "nova", "hfs", "nutrition_parsed", "ingredients_list", "declared_percentages"} {
		if s, ok := sanitized[col].(string); ok && strings.TrimSpace(s) == "" {
			sanitized[col] = nil
		}
	}

	// Overlay the payload on the stored record to get the draft the score
	// pipeline sees.
	draft := food
	raw, _ := json.Marshal(sanitized)
	if err := json.Unmarshal(raw, &draft); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed field in payload: %v", err))
		return
	}

	ingredients := forms.CleanIngredientsList(draft.IngredientsList)
	if len(ingredients) == 0 && strings.TrimSpace(draft.IngredientsRaw) != "" {
		ingredients = forms.ParseIngredients(draft.IngredientsRaw)
	}
	draft.IngredientsList = datatypes.JSONSlice[string](ingredients)

	score := models.ScoreNotComputed
	version := draft.HFSVersion
	if version == "" {
		version = hfs.VersionV2
	}

	// Scoring needs both descriptive fields before the nutritional checks
	// even run; a draft failing the gate saves with the sentinel.
	warnings := []string{}
	if !forms.CheckScoreInput(forms.Payload{"name": draft.Name, "brand": draft.Brand}) {
		warnings = append(warnings, forms.ScoreInputWarning)
		logger.Info("Food missing score input fields, skipping calculation", "id", id)
	} else {
		eligibility := hfs.CheckEligibility(&draft, version, nil)
		warnings = eligibility.Warnings
		if eligibility.Success {
			result, err := newCalculator().Calculate(r.Context(), &draft, version, nil)
			if err != nil {
				// A calculation failure blocks the save; the record must never
				// be persisted in a partially-scored state.
				var calcErr *hfs.CalculationError
				if errors.As(err, &calcErr) {
					writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("%s", calcErr.Message))
					return
				}
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			score = result.HFSScore
		} else {
			logger.Info("Food not eligible for scoring", "id", id, "warnings", len(eligibility.Warnings))
		}
	}

	updates := map[string]any{}
	for _, col := range updatableColumns {
		value, ok := sanitized[col]
		if !ok {
			continue
		}
		updates[col] = columnValue(col, value)
	}
	updates["hfs"] = score
	updates["ingredients_list"] = datatypes.JSONSlice[string](ingredients)
	updates["last_update"] = time.Now().UTC()

	if err := database.DB.Model(&models.Food{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		logger.Error("Failed to update food", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	logger.Info("Food updated", "id", id, "hfs", score)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"hfs":      score,
		"warnings": warnings,
	})
}

// columnValue converts JSON-shaped payload values into types the drivers
// accept for map-based updates.
func columnValue(col string, value any) any {
	switch col {
	case "ingredients_list", "nutrition_parsed", "declared_percentages":
		if value == nil {
			return nil
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil
		}
		return datatypes.JSON(raw)
	case "nova":
		if value == nil {
			return nil
		}
		if f, ok := value.(float64); ok {
			return int(f)
		}
		return value
	default:
		return value
	}
}

// DeleteFood removes a record's stored images best-effort, then the row.
// Image failures are logged and tolerated, never rolled back.
func DeleteFood(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var food models.Food
	if err := database.DB.First(&food, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, fmt.Errorf("food %s not found", id))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if paths := food.ImageURLs(); len(paths) > 0 {
		if s := GetStore(); s != nil {
			if err := s.Remove(r.Context(), paths); err != nil {
				logger.Warn("Failed to remove some food images", "id", id, "error", err)
			}
		}
	}

	if err := database.DB.Delete(&models.Food{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete food", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	logger.Info("Food deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
