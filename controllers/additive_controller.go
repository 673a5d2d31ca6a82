package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/leohmarruda/health-food-score/database"
	"github.com/leohmarruda/health-food-score/logger"
	"github.com/leohmarruda/health-food-score/models"
)

type additiveRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Weight   float64 `json:"weight"`
	Regex    string  `json:"regex"`
}

func (req *additiveRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if req.Regex != "" {
		if _, err := regexp.Compile("(?i)" + req.Regex); err != nil {
			return fmt.Errorf("invalid regex: %v", err)
		}
	}
	return nil
}

// ListAdditives returns every managed additive definition.
func ListAdditives(w http.ResponseWriter, r *http.Request) {
	var additives []models.FoodAdditive
	if err := database.DB.Order("name asc").Find(&additives).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, additives)
}

// CreateAdditive registers a new additive definition.
func CreateAdditive(w http.ResponseWriter, r *http.Request) {
	var req additiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	additive := models.FoodAdditive{
		Name:     strings.TrimSpace(req.Name),
		Category: req.Category,
		Weight:   req.Weight,
		Regex:    req.Regex,
	}
	if additive.Weight == 0 {
		additive.Weight = 1
	}
	if err := database.DB.Create(&additive).Error; err != nil {
		logger.Error("Failed to create additive", "name", additive.Name, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, additive)
}

// UpdateAdditive replaces an additive definition identified by name.
func UpdateAdditive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var additive models.FoodAdditive
	if err := database.DB.First(&additive, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, fmt.Errorf("additive %s not found", name))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var req additiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	req.Name = name
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	additive.Category = req.Category
	additive.Weight = req.Weight
	additive.Regex = req.Regex
	if err := database.DB.Save(&additive).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, additive)
}

// DeleteAdditive removes an additive definition.
func DeleteAdditive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := database.DB.Delete(&models.FoodAdditive{}, "name = ?", name).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
