// Package pastry contains the core domain model for pastry formulation:
// ingredient composition profiles, recipes and recipe categories with their
// ideal composition ranges.
package pastry

import (
	"fmt"
	"math"
)

// ComponentSumTolerance is the allowed deviation from 100% for the sum of an
// ingredient's component percentages.
const ComponentSumTolerance = 1.5

// IngredientProfile is the composition template of a pastry ingredient.
// All *Pct fields are percentages per 100g of ingredient.
type IngredientProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`

	SugarPct       float64 `json:"sugar_pct"`
	OilPct         float64 `json:"oil_pct"`        // vegetable fat
	ButterFatPct   float64 `json:"butter_fat_pct"` // dairy fat
	CocoaButterPct float64 `json:"cocoa_butter_pct"`
	CocoaPct       float64 `json:"cocoa_pct"` // non-fat cocoa solids
	AMPPct         float64 `json:"amp_pct"`   // milk proteins
	LactosePct     float64 `json:"lactose_pct"`
	OtherSolidsPct float64 `json:"other_solids_pct"`
	WaterPct       float64 `json:"water_pct"`
	AlcoholPct     float64 `json:"alcohol_pct"`

	POD         float64 `json:"pod"` // sweetening power, sucrose = 100
	PAC         float64 `json:"pac"` // anti-freezing power
	KcalPer100g float64 `json:"kcal_per_100g"`
	CostPerKg   float64 `json:"cost_per_kg"`
}

// ComponentSum returns the sum of all ten component percentages.
func (p IngredientProfile) ComponentSum() float64 {
	return p.SugarPct +
		p.OilPct +
		p.ButterFatPct +
		p.CocoaButterPct +
		p.CocoaPct +
		p.AMPPct +
		p.LactosePct +
		p.OtherSolidsPct +
		p.WaterPct +
		p.AlcoholPct
}

// TotalFatPct returns oil + butter fat + cocoa butter.
func (p IngredientProfile) TotalFatPct() float64 {
	return p.OilPct + p.ButterFatPct + p.CocoaButterPct
}

// TotalDryMatterPct returns cocoa + milk proteins + lactose + other solids.
func (p IngredientProfile) TotalDryMatterPct() float64 {
	return p.CocoaPct + p.AMPPct + p.LactosePct + p.OtherSolidsPct
}

// TotalLiquidPct returns water + alcohol.
func (p IngredientProfile) TotalLiquidPct() float64 {
	return p.WaterPct + p.AlcoholPct
}

// IsValid reports whether the components add up to roughly 100%.
// The check is advisory; calculations never depend on it.
func (p IngredientProfile) IsValid() bool {
	return math.Abs(p.ComponentSum()-100.0) < ComponentSumTolerance
}

func (p IngredientProfile) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Group)
}
