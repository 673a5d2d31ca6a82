// Package extraction is the client for the external AI image-processing
// service that turns label photos into structured record fields.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leohmarruda/health-food-score/config"
	"github.com/leohmarruda/health-food-score/forms"
)

// Processing modes.
const (
	ModeFullScan = "full-scan"
	ModeRescan   = "rescan"
)

type processRequest struct {
	Images []string `json:"images"`
	Mode   string   `json:"mode"`
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: config.GetEnv("EXTRACTOR_URL", "http://localhost:8081"),
		apiKey:  config.GetEnv("EXTRACTOR_API_KEY", ""),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Process sends image URLs to the extraction service and returns the
// partial record fields it recognized. The caller is responsible for
// merging them into a draft without clobbering locked fields.
func (c *Client) Process(ctx context.Context, imageURLs []string, mode string) (forms.Payload, error) {
	if len(imageURLs) == 0 {
		return nil, fmt.Errorf("no images to process")
	}
	if mode != ModeFullScan && mode != ModeRescan {
		return nil, fmt.Errorf("unknown processing mode %q", mode)
	}

	jsonData, err := json.Marshal(processRequest{Images: imageURLs, Mode: mode})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-images", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extractor error (status %d): %s", resp.StatusCode, string(body))
	}

	var fields forms.Payload
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse extractor response: %w", err)
	}
	return fields, nil
}
