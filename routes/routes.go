package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appconfig "github.com/leohmarruda/health-food-score/config"
	"github.com/leohmarruda/health-food-score/controllers"
	auth "github.com/leohmarruda/health-food-score/middleware"
	"github.com/leohmarruda/health-food-score/storage"
)

func SetupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// CORS Configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(appconfig.GetEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"), ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Read-only food surface
	r.Get("/foods", controllers.ListFoods)
	r.Get("/foods/{id}", controllers.GetFood)
	r.Get("/additives", controllers.ListAdditives)

	// Mutations (API Key protected)
	r.Group(func(r chi.Router) {
		r.Use(auth.APIKeyMiddleware)

		r.Post("/foods", controllers.CreateFood)
		r.Patch("/foods/{id}/update", controllers.UpdateFood)
		r.Delete("/foods/{id}", controllers.DeleteFood)
		r.Post("/foods/{id}/images/{slot}", controllers.UploadImage)
		r.Post("/foods/{id}/rescan", controllers.RescanFood)
		r.Post("/foods/{id}/lookup", controllers.LookupFood)

		r.Post("/additives", controllers.CreateAdditive)
		r.Put("/additives/{name}", controllers.UpdateAdditive)
		r.Delete("/additives/{name}", controllers.DeleteAdditive)
	})

	// Server-Sent Events for background scan updates
	r.Get("/sse/scans", ScanSSE)

	// Locally stored label photos
	if s, ok := controllers.GetStore().(*storage.LocalStore); ok && s != nil {
		fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(s.Root())))
		r.Get("/files/*", fileServer.ServeHTTP)
	}

	return r
}
