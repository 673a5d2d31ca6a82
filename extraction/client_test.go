package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/process-images", r.URL.Path)
		require.Equal(t, "extract-key", r.Header.Get("X-API-Key"))

		var req processRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"/files/front.jpg"}, req.Images)
		assert.Equal(t, ModeFullScan, req.Mode)

		json.NewEncoder(w).Encode(map[string]any{
			"name":            "Granola",
			"energy_kcal":     420,
			"ingredients_raw": "Oats, Honey",
		})
	}))
	defer srv.Close()

	t.Setenv("EXTRACTOR_URL", srv.URL)
	t.Setenv("EXTRACTOR_API_KEY", "extract-key")

	fields, err := NewClient().Process(context.Background(), []string{"/files/front.jpg"}, ModeFullScan)
	require.NoError(t, err)
	assert.Equal(t, "Granola", fields["name"])
	assert.Equal(t, 420.0, fields["energy_kcal"])
}

func TestProcessRejectsEmptyInput(t *testing.T) {
	_, err := NewClient().Process(context.Background(), nil, ModeFullScan)
	assert.Error(t, err)
}

func TestProcessRejectsUnknownMode(t *testing.T) {
	_, err := NewClient().Process(context.Background(), []string{"/files/a.jpg"}, "guess")
	assert.Error(t, err)
}

func TestProcessUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	t.Setenv("EXTRACTOR_URL", srv.URL)
	_, err := NewClient().Process(context.Background(), []string{"/files/a.jpg"}, ModeRescan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
