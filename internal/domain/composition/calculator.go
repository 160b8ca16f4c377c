// Package composition computes the technical composition of a pastry recipe:
// a per-ingredient breakdown and recipe-wide totals.
package composition

import "github.com/alchemorsel/patisserie/internal/domain/pastry"

// IngredientBreakdown is the contribution of one recipe line.
//
// Component fields are percentages of the whole recipe weight, not of the
// ingredient itself. POD, PAC, Kcal and Cost are absolute contributions and
// are only normalised at the totals level.
type IngredientBreakdown struct {
	IngredientID string  `json:"ingredient_id"`
	Name         string  `json:"name"`
	QuantityG    float64 `json:"quantity_g"`
	Percentage   float64 `json:"percentage"`

	Sugar       float64 `json:"sugar"`
	Oil         float64 `json:"oil"`
	ButterFat   float64 `json:"butter_fat"`
	CocoaButter float64 `json:"cocoa_butter"`
	Cocoa       float64 `json:"cocoa"`
	AMP         float64 `json:"amp"`
	Lactose     float64 `json:"lactose"`
	OtherSolids float64 `json:"other_solids"`
	Water       float64 `json:"water"`
	Alcohol     float64 `json:"alcohol"`

	POD  float64 `json:"pod"`
	PAC  float64 `json:"pac"`
	Kcal float64 `json:"kcal"`
	Cost float64 `json:"cost"`
}

// RecipeTotals aggregates a whole recipe.
type RecipeTotals struct {
	TotalWeightG float64 `json:"total_weight_g"`

	SugarPct       float64 `json:"sugar_pct"`
	OilPct         float64 `json:"oil_pct"`
	ButterFatPct   float64 `json:"butter_fat_pct"`
	CocoaButterPct float64 `json:"cocoa_butter_pct"`
	CocoaPct       float64 `json:"cocoa_pct"`
	AMPPct         float64 `json:"amp_pct"`
	LactosePct     float64 `json:"lactose_pct"`
	OtherSolidsPct float64 `json:"other_solids_pct"`
	WaterPct       float64 `json:"water_pct"`
	AlcoholPct     float64 `json:"alcohol_pct"`

	TotalSugarsPct    float64 `json:"total_sugars_pct"`
	TotalFatsPct      float64 `json:"total_fats_pct"`
	TotalDryMatterPct float64 `json:"total_dry_matter_pct"`
	TotalLiquidsPct   float64 `json:"total_liquids_pct"`

	// Weighted per 100g of recipe
	POD         float64 `json:"pod"`
	PAC         float64 `json:"pac"`
	KcalPer100g float64 `json:"kcal_per_100g"`

	TotalCost float64 `json:"total_cost"`
}

// ComponentSum returns the sum of the ten component totals.
func (t RecipeTotals) ComponentSum() float64 {
	return t.SugarPct + t.OilPct + t.ButterFatPct + t.CocoaButterPct + t.CocoaPct +
		t.AMPPct + t.LactosePct + t.OtherSolidsPct + t.WaterPct + t.AlcoholPct
}

// Analysis is the calculator output.
type Analysis struct {
	Breakdowns []IngredientBreakdown `json:"breakdowns"`
	Totals     RecipeTotals          `json:"totals"`
}

// Calculator computes recipe analyses against an ingredient lookup.
// It holds no mutable state and is safe for concurrent use as long as the
// lookup is not mutated during a call.
type Calculator struct {
	ingredients pastry.IngredientLookup
}

// NewCalculator creates a calculator over the given ingredient lookup.
func NewCalculator(ingredients pastry.IngredientLookup) *Calculator {
	return &Calculator{ingredients: ingredients}
}

// Ingredient looks up an ingredient profile by id.
func (c *Calculator) Ingredient(id string) (pastry.IngredientProfile, bool) {
	return c.ingredients.Ingredient(id)
}

// Calculate returns the breakdown and totals of a recipe.
//
// A recipe without items or without positive total weight yields an empty
// analysis. Items whose ingredient cannot be resolved are skipped silently.
func (c *Calculator) Calculate(recipe *pastry.Recipe) Analysis {
	analysis := Analysis{Breakdowns: []IngredientBreakdown{}}
	if recipe == nil || len(recipe.Items) == 0 {
		return analysis
	}

	totalG := recipe.TotalWeightG()
	if totalG <= 0 {
		return analysis
	}
	analysis.Totals.TotalWeightG = totalG

	for _, item := range recipe.Items {
		profile, ok := c.ingredients.Ingredient(item.IngredientID)
		if !ok {
			continue
		}
		analysis.Breakdowns = append(analysis.Breakdowns, breakdown(item, profile, totalG))
	}

	analysis.Totals = sumTotals(analysis.Breakdowns, totalG)
	return analysis
}

func breakdown(item pastry.RecipeItem, p pastry.IngredientProfile, totalG float64) IngredientBreakdown {
	pct := item.QuantityG / totalG * 100.0
	q := item.QuantityG

	return IngredientBreakdown{
		IngredientID: item.IngredientID,
		Name:         p.Name,
		QuantityG:    q,
		Percentage:   pct,

		Sugar:       pct * p.SugarPct / 100.0,
		Oil:         pct * p.OilPct / 100.0,
		ButterFat:   pct * p.ButterFatPct / 100.0,
		CocoaButter: pct * p.CocoaButterPct / 100.0,
		Cocoa:       pct * p.CocoaPct / 100.0,
		AMP:         pct * p.AMPPct / 100.0,
		Lactose:     pct * p.LactosePct / 100.0,
		OtherSolids: pct * p.OtherSolidsPct / 100.0,
		Water:       pct * p.WaterPct / 100.0,
		Alcohol:     pct * p.AlcoholPct / 100.0,

		POD:  q * p.POD / 100.0,
		PAC:  q * p.PAC / 100.0,
		Kcal: q * p.KcalPer100g / 100.0,
		Cost: q * p.CostPerKg / 1000.0,
	}
}

func sumTotals(breakdowns []IngredientBreakdown, totalG float64) RecipeTotals {
	t := RecipeTotals{TotalWeightG: totalG}

	var pod, pac, kcal float64
	for _, bd := range breakdowns {
		t.SugarPct += bd.Sugar
		t.OilPct += bd.Oil
		t.ButterFatPct += bd.ButterFat
		t.CocoaButterPct += bd.CocoaButter
		t.CocoaPct += bd.Cocoa
		t.AMPPct += bd.AMP
		t.LactosePct += bd.Lactose
		t.OtherSolidsPct += bd.OtherSolids
		t.WaterPct += bd.Water
		t.AlcoholPct += bd.Alcohol
		t.TotalCost += bd.Cost

		pod += bd.POD
		pac += bd.PAC
		kcal += bd.Kcal
	}

	t.TotalSugarsPct = t.SugarPct
	t.TotalFatsPct = t.OilPct + t.ButterFatPct + t.CocoaButterPct
	t.TotalDryMatterPct = t.CocoaPct + t.AMPPct + t.LactosePct + t.OtherSolidsPct
	t.TotalLiquidsPct = t.WaterPct + t.AlcoholPct

	if totalG > 0 {
		per100 := totalG / 100.0
		t.POD = pod / per100
		t.PAC = pac / per100
		t.KcalPer100g = kcal / per100
	}
	return t
}
