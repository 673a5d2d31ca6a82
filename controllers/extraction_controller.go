package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/leohmarruda/health-food-score/database"
	"github.com/leohmarruda/health-food-score/extraction"
	"github.com/leohmarruda/health-food-score/forms"
	"github.com/leohmarruda/health-food-score/logger"
	"github.com/leohmarruda/health-food-score/models"
	"github.com/leohmarruda/health-food-score/services"
)

type rescanRequest struct {
	Slot         string   `json:"slot"`
	LockedFields []string `json:"locked_fields"`
}

// RescanFood reprocesses a single label photo through the AI extraction
// service and returns the merged draft. Locked fields are left untouched
// and raw-text fields only take non-empty new values. Nothing is persisted;
// the client reviews and saves explicitly.
func RescanFood(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req rescanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	column, ok := slotColumns[req.Slot]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown image slot %q", req.Slot))
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

	imageURL := imageForColumn(&food, column)
	if imageURL == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no %s image on record", req.Slot))
		return
	}

	fields, err := GetExtractor().Process(r.Context(), []string{imageURL}, extraction.ModeRescan)
	if err != nil {
		logger.Error("Rescan failed", "id", id, "slot", req.Slot, "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	locked := map[string]struct{}{}
	for _, f := range req.LockedFields {
		locked[f] = struct{}{}
	}

	raw, _ := json.Marshal(food)
	var draft forms.Payload
	json.Unmarshal(raw, &draft)

	merged := forms.MergeExtraction(draft, fields, locked)
	logger.Info("Rescan merged", "id", id, "slot", req.Slot, "fields", len(fields))
	writeJSON(w, http.StatusOK, merged)
}

func imageForColumn(f *models.Food, column string) string {
	switch column {
	case "front_photo_url":
		return f.FrontPhotoURL
	case "back_photo_url":
		return f.BackPhotoURL
	case "nutrition_label_url":
		return f.NutritionLabelURL
	case "ingredients_photo_url":
		return f.IngredientsPhotoURL
	}
	return ""
}

// LookupFood prefills missing nutrition values from Open Food Facts and
// persists the filled record.
func LookupFood(w http.ResponseWriter, r *http.Request) {
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

	filled, err := services.NewLookupService().Prefill(&food)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if filled {
		if err := database.DB.Save(&food).Error; err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "filled": filled, "food": food})
}
