package nutrition

// Reference daily values used for the "% Daily Value" column, based on a
// 2,000 kcal diet. These match the values printed on US-style labels.
const (
	DVTotalFatG     = 78.0
	DVSaturatedFatG = 20.0
	DVCholesterolMg = 300.0
	DVSodiumMg      = 2300.0
	DVTotalCarbsG   = 275.0
	DVFiberG        = 28.0
	DVAddedSugarsG  = 50.0
	DVCalciumMg     = 1300.0
	DVIronMg        = 18.0
	DVPotassiumMg   = 4700.0
	DVMagnesiumMg   = 420.0
	DVZincMg        = 11.0
	DVVitaminAMcg   = 900.0
	DVVitaminCMg    = 90.0
	DVVitaminDMcg   = 20.0
	DVVitaminEMg    = 15.0
	DVVitaminKMcg   = 120.0
	DVVitaminB6Mg   = 1.7
	DVVitaminB9Mcg  = 400.0
	DVVitaminB12Mcg = 2.4
)
