package controllers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/leohmarruda/health-food-score/config"
	"github.com/leohmarruda/health-food-score/database"
	"github.com/leohmarruda/health-food-score/extraction"
	"github.com/leohmarruda/health-food-score/hfs"
	"github.com/leohmarruda/health-food-score/logger"
	"github.com/leohmarruda/health-food-score/models"
	"github.com/leohmarruda/health-food-score/storage"
)

const genericTransportError = "Error communicating with server"

var (
	store     storage.ObjectStore
	storeOnce sync.Once

	extractor     *extraction.Client
	extractorOnce sync.Once
)

// GetStore returns the process-wide object store, creating it on first use.
func GetStore() storage.ObjectStore {
	storeOnce.Do(func() {
		s, err := storage.NewLocalStore()
		if err != nil {
			logger.Error("Failed to initialize object store", "error", err)
			return
		}
		store = s
	})
	return store
}

// GetExtractor returns the AI extraction client.
func GetExtractor() *extraction.Client {
	extractorOnce.Do(func() {
		extractor = extraction.NewClient()
	})
	return extractor
}

// scoreProvider picks the aggregation strategy. The stub (sentinel) is the
// deployed default; HFS_PROVIDER=llm switches to the external model.
func scoreProvider() hfs.ScoreProvider {
	if config.GetEnv("HFS_PROVIDER", "stub") == "llm" {
		return hfs.NewLLMProvider()
	}
	return hfs.StubProvider{}
}

// newCalculator builds a score calculator loaded with the current additive
// definitions.
func newCalculator() *hfs.Calculator {
	var additives []models.FoodAdditive
	if err := database.DB.Find(&additives).Error; err != nil {
		logger.Warn("Failed to load additive definitions", "error", err)
	}
	return hfs.NewCalculator(scoreProvider()).WithAdditives(additives)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := genericTransportError
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
