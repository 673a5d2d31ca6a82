package main

import (
	"net/http"

	"github.com/joho/godotenv"

	"github.com/leohmarruda/health-food-score/config"
	"github.com/leohmarruda/health-food-score/database"
	"github.com/leohmarruda/health-food-score/jobs"
	"github.com/leohmarruda/health-food-score/logger"
	"github.com/leohmarruda/health-food-score/routes"
)

func main() {
	// Initialize Structured Logger
	logger.Init()

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system env vars")
	}

	// Initialize DB
	database.InitDB()

	// Start background scan worker
	jobs.GetWorker()

	// Setup Router
	r := routes.SetupRouter()

	port := config.GetEnv("PORT", "8080")
	logger.Info("Server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Error("Server failed to start", "error", err)
	}
}
