package nutrition

import (
	"strconv"

	"github.com/leohmarruda/health-food-score/models"
)

// Row is one display-ready line of a nutrition label.
type Row struct {
	Key        string `json:"key"`
	Amount     string `json:"amount"`
	Unit       string `json:"unit"`
	Percent    int    `json:"percent,omitempty"`
	HasPercent bool   `json:"has_percent"`
	Indent     int    `json:"indent,omitempty"`
}

// groups flattens the optional nutrition_parsed tree into nil-safe views.
type groups struct {
	carbs    models.CarbGroup
	fats     models.FatGroup
	proteins models.ProteinGroup
	fiber    models.FiberGroup
	minerals models.MineralGroup
	vitamins models.VitaminGroup
	energy   *float64
}

func groupsOf(f *models.Food) groups {
	var g groups
	if f == nil || f.NutritionParsed == nil {
		return g
	}
	np := f.NutritionParsed
	g.energy = np.EnergyKcal
	if np.Carbohydrates != nil {
		g.carbs = *np.Carbohydrates
	}
	if np.Fats != nil {
		g.fats = *np.Fats
	}
	if np.Proteins != nil {
		g.proteins = *np.Proteins
	}
	if np.Fiber != nil {
		g.fiber = *np.Fiber
	}
	if np.MineralsMg != nil {
		g.minerals = *np.MineralsMg
	}
	if np.Vitamins != nil {
		g.vitamins = *np.Vitamins
	}
	return g
}

// Rows derives the complete label row set for a record. Primary macro rows
// are emitted whenever their source value is declared, zero included;
// optional sub-nutrient rows are emitted only for strictly positive values.
func Rows(f *models.Food, usePortion bool, multiplier float64) []Row {
	b := BasisFor(f, usePortion, multiplier)
	g := groupsOf(f)

	var flatCarbs, flatFat, flatSat, flatTrans, flatSodium, flatFiber *float64
	energy := ptr(0)
	protein := ptr(0)
	if f != nil {
		flatCarbs = f.CarbsTotalG
		flatFat = f.FatTotalG
		flatSat = f.SaturatedFatG
		flatTrans = f.TransFatG
		flatSodium = f.SodiumMg
		flatFiber = f.FiberG
		energy = ptr(f.EnergyKcal)
		protein = ptr(f.ProteinG)
	}

	rows := []Row{}

	macro := func(key, unit string, v *float64, dv float64, indent int) {
		if v == nil {
			return
		}
		r := Row{Key: key, Unit: unit, Indent: indent}
		if unit == "mg" {
			r.Amount = strconv.Itoa(b.RoundScaled(v))
		} else {
			r.Amount = b.FormatGrams(v)
		}
		if dv > 0 {
			r.Percent = b.Percent(v, dv)
			r.HasPercent = true
		}
		rows = append(rows, r)
	}

	// Optional sub-nutrients: suppressed when absent or zero.
	optional := func(key, unit string, v *float64, dv float64, indent int, rounded bool) {
		if v == nil || *v <= 0 {
			return
		}
		r := Row{Key: key, Unit: unit, Indent: indent}
		if rounded {
			r.Amount = strconv.Itoa(b.RoundScaled(v))
		} else {
			r.Amount = b.FormatGrams(v)
		}
		if dv > 0 {
			r.Percent = b.Percent(v, dv)
			r.HasPercent = true
		}
		rows = append(rows, r)
	}

	rows = append(rows, Row{
		Key:    "calories",
		Amount: strconv.Itoa(b.RoundScaled(Coalesce(g.energy, energy))),
		Unit:   "kcal",
	})

	macro("total_fat", "g", Coalesce(g.fats.TotalFatsG, flatFat), DVTotalFatG, 0)
	macro("saturated_fat", "g", Coalesce(g.fats.SaturatedFatsG, flatSat), DVSaturatedFatG, 1)
	macro("trans_fat", "g", Coalesce(g.fats.TransFatsG, flatTrans), 0, 1)
	optional("monounsaturated_fat", "g", g.fats.MonounsaturatedFatsG, 0, 1, false)
	optional("polyunsaturated_fat", "g", g.fats.PolyunsaturatedFatsG, 0, 1, false)
	optional("cholesterol", "mg", g.fats.CholesterolMg, DVCholesterolMg, 1, true)

	macro("sodium", "mg", Coalesce(g.minerals.SodiumMg, flatSodium), DVSodiumMg, 0)

	macro("total_carbs", "g", Coalesce(g.carbs.TotalCarbsG, flatCarbs), DVTotalCarbsG, 0)
	macro("fiber", "g", Coalesce(g.fiber.TotalFiberG, flatFiber), DVFiberG, 1)
	optional("soluble_fiber", "g", g.fiber.SolubleFiberG, 0, 2, false)
	optional("insoluble_fiber", "g", g.fiber.InsolubleFiberG, 0, 2, false)
	optional("sugars_total", "g", g.carbs.SugarsTotalG, 0, 1, false)
	optional("sugars_added", "g", g.carbs.SugarsAddedG, DVAddedSugarsG, 2, false)
	optional("polyols", "g", g.carbs.PolyolsG, 0, 1, false)
	optional("starch", "g", g.carbs.StarchG, 0, 1, false)

	macro("protein", "g", Coalesce(g.proteins.TotalProteinsG, protein), 0, 0)

	optional("calcium", "mg", g.minerals.CalciumMg, DVCalciumMg, 0, true)
	optional("iron", "mg", g.minerals.IronMg, DVIronMg, 0, false)
	optional("potassium", "mg", g.minerals.PotassiumMg, DVPotassiumMg, 0, true)
	optional("magnesium", "mg", g.minerals.MagnesiumMg, DVMagnesiumMg, 0, false)
	optional("zinc", "mg", g.minerals.ZincMg, DVZincMg, 0, false)

	optional("vitamin_a", "mcg", g.vitamins.VitaminAMcg, DVVitaminAMcg, 0, true)
	optional("vitamin_c", "mg", g.vitamins.VitaminCMg, DVVitaminCMg, 0, false)
	optional("vitamin_d", "mcg", g.vitamins.VitaminDMcg, DVVitaminDMcg, 0, true)
	optional("vitamin_e", "mg", g.vitamins.VitaminEMg, DVVitaminEMg, 0, false)
	optional("vitamin_k", "mcg", g.vitamins.VitaminKMcg, DVVitaminKMcg, 0, true)
	optional("vitamin_b12", "mcg", g.vitamins.VitaminB12Mcg, DVVitaminB12Mcg, 0, true)
	optional("vitamin_b6", "mg", g.vitamins.VitaminB6Mg, DVVitaminB6Mg, 0, false)
	optional("vitamin_b9", "mcg", g.vitamins.VitaminB9Mcg, DVVitaminB9Mcg, 0, true)

	return rows
}
