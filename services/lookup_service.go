package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/leohmarruda/health-food-score/config"
	"github.com/leohmarruda/health-food-score/logger"
	"github.com/leohmarruda/health-food-score/models"
)

// LookupService prefills missing flat nutrition values from the public
// Open Food Facts database. It only ever fills gaps; values already on the
// record are never overwritten.
type LookupService struct {
	client  *http.Client
	baseURL string
}

func NewLookupService() *LookupService {
	return &LookupService{
		client:  &http.Client{Timeout: 2 * time.Second},
		baseURL: config.GetEnv("OFF_BASE_URL", "https://world.openfoodfacts.org"),
	}
}

type offNutriments struct {
	EnergyKcal100g    json.Number `json:"energy-kcal_100g"`
	Proteins100g      json.Number `json:"proteins_100g"`
	Carbohydrates100g json.Number `json:"carbohydrates_100g"`
	Fat100g           json.Number `json:"fat_100g"`
	SaturatedFat100g  json.Number `json:"saturated-fat_100g"`
	Fiber100g         json.Number `json:"fiber_100g"`
	Sodium100g        json.Number `json:"sodium_100g"`
}

// Prefill searches Open Food Facts with progressively broader queries and
// fills the record's empty nutrition fields from the first product with
// meaningful energy data. Returns whether anything was filled.
func (s *LookupService) Prefill(food *models.Food) (bool, error) {
	queries := buildQueries(food)
	if len(queries) == 0 {
		return false, fmt.Errorf("record has no name to search for")
	}

	limit := 3
	for i, query := range queries {
		if i >= limit {
			break
		}
		logger.Info("Searching Open Food Facts", "query", query)
		url := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1",
			s.baseURL, strings.ReplaceAll(query, " ", "+"))

		resp, err := s.client.Get(url)
		if err != nil {
			logger.Warn("Open Food Facts search failed or timed out", "query", query, "error", err)
			continue
		}

		var result struct {
			Products []struct {
				Nutriments offNutriments `json:"nutriments"`
			} `json:"products"`
		}
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			logger.Warn("Failed to decode Open Food Facts response", "query", query, "error", err)
			continue
		}

		if len(result.Products) == 0 {
			continue
		}
		n := result.Products[0].Nutriments
		kcal, _ := n.EnergyKcal100g.Float64()
		if kcal <= 0 {
			logger.Warn("Open Food Facts returned zero calories", "query", query)
			continue
		}

		filled := applyNutriments(food, n, kcal)
		logger.Info("Nutrition prefetched from Open Food Facts", "food", food.Name, "query", query, "filled", filled)
		return filled, nil
	}

	return false, fmt.Errorf("no valid products found on Open Food Facts for any tried queries")
}

// buildQueries mirrors the tiered brand+name search: most specific first,
// deduplicated case-insensitively.
func buildQueries(food *models.Food) []string {
	name := strings.TrimSpace(food.Name)
	brand := strings.TrimSpace(food.Brand)

	queries := []string{}
	if brand != "" && name != "" {
		full := name
		if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(brand)) {
			full = brand + " " + name
		}
		queries = append(queries, full)
	}
	if name != "" {
		queries = append(queries, name)
	}
	if brand != "" && food.Category != "" {
		queries = append(queries, brand+" "+food.Category)
	}

	unique := []string{}
	seen := map[string]bool{}
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q != "" && !seen[strings.ToLower(q)] {
			unique = append(unique, q)
			seen[strings.ToLower(q)] = true
		}
	}
	return unique
}

// applyNutriments fills only the fields the record is missing. Values are
// capped to what is physically possible per 100g before they are applied.
func applyNutriments(food *models.Food, n offNutriments, kcal float64) bool {
	protein, _ := n.Proteins100g.Float64()
	carbs, _ := n.Carbohydrates100g.Float64()
	fat, _ := n.Fat100g.Float64()
	satFat, _ := n.SaturatedFat100g.Float64()
	fiber, _ := n.Fiber100g.Float64()
	sodiumG, _ := n.Sodium100g.Float64()

	// Max calories in 100g (pure fat) is ~900; macros cap at 100g.
	kcal = min(kcal, 900)
	protein = min(protein, 100)
	carbs = min(carbs, 100)
	fat = min(fat, 100)
	satFat = min(satFat, 100)
	fiber = min(fiber, 100)

	filled := false
	if food.EnergyKcal == 0 {
		food.EnergyKcal = kcal
		filled = true
	}
	if food.ProteinG == 0 && protein > 0 {
		food.ProteinG = protein
		filled = true
	}
	fillOptional := func(dst **float64, v float64) {
		if *dst == nil && v > 0 {
			*dst = &v
			filled = true
		}
	}
	fillOptional(&food.CarbsTotalG, carbs)
	fillOptional(&food.FatTotalG, fat)
	fillOptional(&food.SaturatedFatG, satFat)
	fillOptional(&food.FiberG, fiber)
	// Open Food Facts reports sodium in grams; the record stores mg.
	fillOptional(&food.SodiumMg, sodiumG*1000)

	food.DataSource = "openfoodfacts"
	return filled
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
