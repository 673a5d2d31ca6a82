package middleware

import (
	"net/http"

	"github.com/leohmarruda/health-food-score/config"
)

// APIKeyMiddleware protects mutating endpoints.
// Checks X-API-Key header against the configured key.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")
		expectedKey := config.GetEnv("API_KEY", "secret-key")

		if apiKey != expectedKey {
			http.Error(w, "Forbidden: Invalid API Key", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
