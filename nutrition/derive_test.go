package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leohmarruda/health-food-score/models"
)

func f64(v float64) *float64 { return &v }

func TestBasisForDefaults(t *testing.T) {
	b := BasisFor(nil, false, 1)
	assert.Equal(t, 100.0, b.ServingSize)
	assert.Equal(t, "g", b.ServingUnit)
	assert.Equal(t, 1.0, b.TotalRatio)
}

func TestBasisForPortionScaling(t *testing.T) {
	food := &models.Food{ServingSizeValue: f64(50), ServingSizeUnit: "g"}

	b := BasisFor(food, true, 1)
	assert.Equal(t, 50.0, b.ServingSize)
	assert.Equal(t, 0.5, b.TotalRatio)

	b = BasisFor(food, false, 1)
	assert.Equal(t, 1.0, b.TotalRatio, "per-100g basis ignores the serving size")

	b = BasisFor(food, true, 2)
	assert.Equal(t, 1.0, b.TotalRatio)
}

func TestBasisForMetadataPrecedence(t *testing.T) {
	food := &models.Food{
		ServingSizeValue: f64(50),
		ServingSizeUnit:  "g",
		NutritionParsed: &models.NutritionParsed{
			Metadata: &models.ParsedMetadata{ServingSize: f64(30), ServingSizeUnit: "ml"},
		},
	}
	b := BasisFor(food, true, 1)
	assert.Equal(t, 30.0, b.ServingSize)
	assert.Equal(t, "ml", b.ServingUnit)
}

func TestBasisForZeroServingFallsBackTo100(t *testing.T) {
	food := &models.Food{ServingSizeValue: f64(0), ServingSizeUnit: "g"}
	b := BasisFor(food, true, 1)
	assert.Equal(t, 100.0, b.ServingSize)
	assert.Equal(t, 1.0, b.TotalRatio)
}

func TestBasisForNegativeServingFallsBackTo100(t *testing.T) {
	food := &models.Food{ServingSizeValue: f64(-50), ServingSizeUnit: "g"}
	b := BasisFor(food, true, 1)
	assert.Equal(t, 100.0, b.ServingSize)
	assert.Equal(t, 1.0, b.TotalRatio, "a negative serving never flips the scaling ratio")

	food.NutritionParsed = &models.NutritionParsed{
		Metadata: &models.ParsedMetadata{ServingSize: f64(-30)},
	}
	b = BasisFor(food, true, 1)
	assert.Equal(t, 100.0, b.ServingSize)
}

func TestBasisForMultiplierFloor(t *testing.T) {
	b := BasisFor(nil, true, 0)
	assert.Equal(t, 0.5, b.Multiplier)
	b = BasisFor(nil, true, -3)
	assert.Equal(t, 0.5, b.Multiplier)
}

func TestWorkedExampleHalfServingDoubled(t *testing.T) {
	// 200 kcal and 10g protein per serving of 50g, two servings consumed.
	food := &models.Food{
		EnergyKcal:       200,
		ProteinG:         10,
		ServingSizeValue: f64(50),
		ServingSizeUnit:  "g",
	}
	b := BasisFor(food, true, 2)
	assert.Equal(t, 200, b.RoundScaled(f64(200)))
	assert.Equal(t, "10.0", b.FormatGrams(f64(10)))
}

func TestWorkedExampleSodiumDailyValue(t *testing.T) {
	b := BasisFor(nil, false, 1)
	require.Equal(t, 1.0, b.TotalRatio)
	assert.Equal(t, 35, b.Percent(f64(800), DVSodiumMg))
}

func TestFormatGramsZeroAndNil(t *testing.T) {
	b := BasisFor(nil, false, 1)
	assert.Equal(t, "0", b.FormatGrams(nil))
	assert.Equal(t, "0", b.FormatGrams(f64(0)))
	assert.Equal(t, "3.5", b.FormatGrams(f64(3.5)))
}

func TestRoundScaledNil(t *testing.T) {
	b := BasisFor(nil, false, 1)
	assert.Equal(t, 0, b.RoundScaled(nil))
	assert.Equal(t, 0, b.Percent(nil, DVSodiumMg))
}

func TestDerivedAmountMonotonicInMultiplier(t *testing.T) {
	food := &models.Food{ServingSizeValue: f64(40), ServingSizeUnit: "g"}
	value := f64(12.3)

	prev := -1.0
	for mult := 0.5; mult <= 5; mult += 0.5 {
		b := BasisFor(food, true, mult)
		amount := *value * b.TotalRatio
		require.GreaterOrEqual(t, amount, prev, "multiplier %v", mult)
		prev = amount
	}
}

func TestCoalescePrecedence(t *testing.T) {
	structured := f64(5)
	flat := f64(9)
	assert.Equal(t, structured, Coalesce(structured, flat))
	assert.Equal(t, flat, Coalesce(nil, flat))
	assert.Nil(t, Coalesce(nil, nil))
}

func rowByKey(rows []Row, key string) (Row, bool) {
	for _, r := range rows {
		if r.Key == key {
			return r, true
		}
	}
	return Row{}, false
}

func TestRowsStructuredOverridesFlat(t *testing.T) {
	food := &models.Food{
		EnergyKcal: 100,
		FatTotalG:  f64(9),
		NutritionParsed: &models.NutritionParsed{
			EnergyKcal: f64(250),
			Fats:       &models.FatGroup{TotalFatsG: f64(4)},
		},
	}
	rows := Rows(food, false, 1)

	cal, ok := rowByKey(rows, "calories")
	require.True(t, ok)
	assert.Equal(t, "250", cal.Amount)

	fat, ok := rowByKey(rows, "total_fat")
	require.True(t, ok)
	assert.Equal(t, "4.0", fat.Amount)
}

func TestRowsMacroZeroStillShown(t *testing.T) {
	food := &models.Food{SaturatedFatG: f64(0)}
	rows := Rows(food, false, 1)

	sat, ok := rowByKey(rows, "saturated_fat")
	require.True(t, ok, "a declared zero macro is still shown")
	assert.Equal(t, "0", sat.Amount)
	assert.Equal(t, 0, sat.Percent)
}

func TestRowsMacroAbsentSuppressed(t *testing.T) {
	rows := Rows(&models.Food{}, false, 1)
	_, ok := rowByKey(rows, "total_carbs")
	assert.False(t, ok)
	_, ok = rowByKey(rows, "sodium")
	assert.False(t, ok)
	// Calories and protein are always declared on the flat record.
	_, ok = rowByKey(rows, "calories")
	assert.True(t, ok)
}

func TestRowsOptionalZeroSuppressed(t *testing.T) {
	food := &models.Food{
		NutritionParsed: &models.NutritionParsed{
			Fats: &models.FatGroup{MonounsaturatedFatsG: f64(0)},
			Carbohydrates: &models.CarbGroup{
				SugarsTotalG: f64(8),
				SugarsAddedG: f64(0),
			},
		},
	}
	rows := Rows(food, false, 1)

	_, ok := rowByKey(rows, "monounsaturated_fat")
	assert.False(t, ok, "optional zero is suppressed")
	_, ok = rowByKey(rows, "sugars_added")
	assert.False(t, ok)

	sugars, ok := rowByKey(rows, "sugars_total")
	require.True(t, ok)
	assert.Equal(t, "8.0", sugars.Amount)
}

func TestRowsMicronutrientFormatting(t *testing.T) {
	food := &models.Food{
		NutritionParsed: &models.NutritionParsed{
			MineralsMg: &models.MineralGroup{
				SodiumMg:  f64(800),
				CalciumMg: f64(130.4),
				IronMg:    f64(2.55),
			},
			Vitamins: &models.VitaminGroup{VitaminDMcg: f64(10)},
		},
	}
	rows := Rows(food, false, 1)

	sodium, ok := rowByKey(rows, "sodium")
	require.True(t, ok)
	assert.Equal(t, "800", sodium.Amount, "mg amounts are rounded")
	assert.True(t, sodium.HasPercent)
	assert.Equal(t, 35, sodium.Percent)

	calcium, ok := rowByKey(rows, "calcium")
	require.True(t, ok)
	assert.Equal(t, "130", calcium.Amount)
	assert.Equal(t, 10, calcium.Percent)

	iron, ok := rowByKey(rows, "iron")
	require.True(t, ok)
	assert.Equal(t, "2.5", iron.Amount, "iron keeps one decimal")

	vitD, ok := rowByKey(rows, "vitamin_d")
	require.True(t, ok)
	assert.Equal(t, 50, vitD.Percent)
}
