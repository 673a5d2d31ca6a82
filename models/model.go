package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScoreNotComputed is the sentinel HFS value for records that have never
// been scored or whose scoring was declined.
const ScoreNotComputed = -1.0

// Food represents a packaged food product and its nutrition-label data.
// Flat nutrition columns are per declared serving; NutritionParsed, when
// present, takes precedence over them as the source of truth.
type Food struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Brand    string `gorm:"size:255" json:"brand"`
	Category string `gorm:"size:255" json:"category"`

	// HFS is the Health Food Score; ScoreNotComputed means not scored.
	HFS        float64 `gorm:"default:-1" json:"hfs"`
	HFSVersion string  `gorm:"size:8;default:'v2'" json:"hfs_version"`

	// Nova is the food-processing classification (1-4); required for scoring.
	Nova *int `json:"nova"`

	// Image URLs, one per label photo slot.
	FrontPhotoURL       string `gorm:"size:1024" json:"front_photo_url"`
	BackPhotoURL        string `gorm:"size:1024" json:"back_photo_url"`
	NutritionLabelURL   string `gorm:"size:1024" json:"nutrition_label_url"`
	IngredientsPhotoURL string `gorm:"size:1024" json:"ingredients_photo_url"`

	// Flat nutrition values, per declared serving.
	EnergyKcal    float64  `gorm:"default:0" json:"energy_kcal"`
	ProteinG      float64  `gorm:"default:0" json:"protein_g"`
	CarbsTotalG   *float64 `json:"carbs_total_g"`
	FatTotalG     *float64 `json:"fat_total_g"`
	SaturatedFatG *float64 `json:"saturated_fat_g"`
	TransFatG     *float64 `json:"trans_fat_g"`
	SodiumMg      *float64 `json:"sodium_mg"`
	FiberG        *float64 `json:"fiber_g"`

	// Serving metadata. A zero/absent value is treated as 100 when the
	// unit is grams, so serving-based values can always be normalized.
	ServingSizeValue *float64 `json:"serving_size_value"`
	ServingSizeUnit  string   `gorm:"size:16" json:"serving_size_unit"`

	// Optional numeric fields where null is distinct from zero.
	Price         *float64 `json:"price"`
	ABVPercentage *float64 `json:"abv_percentage"`
	Density       *float64 `json:"density"`

	// Raw extraction output and parsed derivatives.
	IngredientsRaw      string                       `gorm:"type:text" json:"ingredients_raw"`
	IngredientsList     datatypes.JSONSlice[string]  `json:"ingredients_list"`
	NutritionRaw        string                       `gorm:"type:text" json:"nutrition_raw"`
	NutritionParsed     *NutritionParsed             `gorm:"serializer:json" json:"nutrition_parsed"`
	DeclaredPercentages datatypes.JSONSlice[float64] `json:"declared_percentages"`

	DeclaredSpecialNutrients string `gorm:"type:text" json:"declared_special_nutrients"`
	DeclaredProcesses        string `gorm:"type:text" json:"declared_processes"`
	DeclaredWarnings         string `gorm:"type:text" json:"declared_warnings"`
	FermentationType         string `gorm:"size:255" json:"fermentation_type"`

	Website        string `gorm:"size:1024" json:"website"`
	Location       string `gorm:"size:255" json:"location"`
	Certifications string `gorm:"type:text" json:"certifications"`
	DataSource     string `gorm:"size:50;default:'label'" json:"data_source"`

	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastUpdate time.Time `json:"last_update"`
}

// BeforeCreate assigns the record identity at creation time.
func (f *Food) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// ImageURLs returns the non-empty image URLs of the record.
func (f *Food) ImageURLs() []string {
	urls := []string{}
	for _, u := range []string{f.FrontPhotoURL, f.BackPhotoURL, f.NutritionLabelURL, f.IngredientsPhotoURL} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// NutritionParsed is the structured extraction output. Every field is
// optional; nil means the label did not declare the value.
type NutritionParsed struct {
	EnergyKcal    *float64        `json:"energy_kcal,omitempty"`
	Carbohydrates *CarbGroup      `json:"carbohydrates,omitempty"`
	Fats          *FatGroup       `json:"fats,omitempty"`
	Proteins      *ProteinGroup   `json:"proteins,omitempty"`
	Fiber         *FiberGroup     `json:"fiber,omitempty"`
	MineralsMg    *MineralGroup   `json:"minerals_mg,omitempty"`
	Vitamins      *VitaminGroup   `json:"vitamins,omitempty"`
	Metadata      *ParsedMetadata `json:"metadata,omitempty"`
}

type CarbGroup struct {
	TotalCarbsG  *float64 `json:"total_carbs_g,omitempty"`
	SugarsTotalG *float64 `json:"sugars_total_g,omitempty"`
	SugarsAddedG *float64 `json:"sugars_added_g,omitempty"`
	PolyolsG     *float64 `json:"polyols_g,omitempty"`
	StarchG      *float64 `json:"starch_g,omitempty"`
}

type FatGroup struct {
	TotalFatsG           *float64 `json:"total_fats_g,omitempty"`
	SaturatedFatsG       *float64 `json:"saturated_fats_g,omitempty"`
	TransFatsG           *float64 `json:"trans_fats_g,omitempty"`
	MonounsaturatedFatsG *float64 `json:"monounsaturated_fats_g,omitempty"`
	PolyunsaturatedFatsG *float64 `json:"polyunsaturated_fats_g,omitempty"`
	CholesterolMg        *float64 `json:"cholesterol_mg,omitempty"`
}

type ProteinGroup struct {
	TotalProteinsG *float64 `json:"total_proteins_g,omitempty"`
}

type FiberGroup struct {
	TotalFiberG     *float64 `json:"total_fiber_g,omitempty"`
	SolubleFiberG   *float64 `json:"soluble_fiber_g,omitempty"`
	InsolubleFiberG *float64 `json:"insoluble_fiber_g,omitempty"`
}

type MineralGroup struct {
	SodiumMg    *float64 `json:"sodium_mg,omitempty"`
	CalciumMg   *float64 `json:"calcium_mg,omitempty"`
	IronMg      *float64 `json:"iron_mg,omitempty"`
	PotassiumMg *float64 `json:"potassium_mg,omitempty"`
	MagnesiumMg *float64 `json:"magnesium_mg,omitempty"`
	ZincMg      *float64 `json:"zinc_mg,omitempty"`
}

type VitaminGroup struct {
	VitaminAMcg   *float64 `json:"vitamin_a_mcg,omitempty"`
	VitaminCMg    *float64 `json:"vitamin_c_mg,omitempty"`
	VitaminDMcg   *float64 `json:"vitamin_d_mcg,omitempty"`
	VitaminEMg    *float64 `json:"vitamin_e_mg,omitempty"`
	VitaminKMcg   *float64 `json:"vitamin_k_mcg,omitempty"`
	VitaminB6Mg   *float64 `json:"vitamin_b6_mg,omitempty"`
	VitaminB9Mcg  *float64 `json:"vitamin_b9_mcg,omitempty"`
	VitaminB12Mcg *float64 `json:"vitamin_b12_mcg,omitempty"`
}

type ParsedMetadata struct {
	ServingSize     *float64 `json:"serving_size,omitempty"`
	ServingSizeUnit string   `json:"serving_size_unit,omitempty"`
}

// FoodAdditive is a managed additive definition. Regex is matched against
// ingredient names; Weight feeds the additive sub-metric of the score.
type FoodAdditive struct {
	Name      string    `gorm:"primaryKey;size:255" json:"name"`
	Category  string    `gorm:"size:255" json:"category"`
	Weight    float64   `gorm:"default:1" json:"weight"`
	Regex     string    `gorm:"size:512" json:"regex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
