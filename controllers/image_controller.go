package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/leohmarruda/health-food-score/database"
	"github.com/leohmarruda/health-food-score/extraction"
	"github.com/leohmarruda/health-food-score/jobs"
	"github.com/leohmarruda/health-food-score/logger"
	"github.com/leohmarruda/health-food-score/models"
)

// slotColumns maps image slots to their record columns.
var slotColumns = map[string]string{
	"front":       "front_photo_url",
	"back":        "back_photo_url",
	"nutrition":   "nutrition_label_url",
	"ingredients": "ingredients_photo_url",
}

// UploadImage stores one label photo for a record slot and persists its
// public URL. With ?process=1 a background full scan is enqueued once the
// upload lands.
func UploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	slot := chi.URLParam(r, "slot")

	column, ok := slotColumns[slot]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown image slot %q", slot))
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

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10 MB limit
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse form"))
		return
	}
	file, fh, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("error retrieving file"))
		return
	}
	defer file.Close()

	s := GetStore()
	if s == nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("object store unavailable"))
		return
	}

	info, err := s.Upload(r.Context(), fmt.Sprintf("%s-%s", slot, fh.Filename), file)
	if err != nil {
		logger.Error("Image upload failed", "id", id, "slot", slot, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := database.DB.Model(&models.Food{}).Where("id = ?", id).
		Update(column, info.PublicURL).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	logger.Info("Image uploaded", "id", id, "slot", slot, "path", info.Path)

	if r.URL.Query().Get("process") == "1" {
		jobs.GetWorker().Enqueue(jobs.ScanJob{FoodID: id, Mode: extraction.ModeFullScan})
	}

	writeJSON(w, http.StatusOK, info)
}
