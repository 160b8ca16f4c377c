// Package gorm provides mapping between domain entities and GORM models
package gorm

import "github.com/alchemorsel/patisserie/internal/domain/pastry"

// IngredientToModel converts a domain profile to a GORM model
func IngredientToModel(p pastry.IngredientProfile) *IngredientModel {
	return &IngredientModel{
		ID:             p.ID,
		Name:           p.Name,
		Group:          p.Group,
		SugarPct:       p.SugarPct,
		OilPct:         p.OilPct,
		ButterFatPct:   p.ButterFatPct,
		CocoaButterPct: p.CocoaButterPct,
		CocoaPct:       p.CocoaPct,
		AMPPct:         p.AMPPct,
		LactosePct:     p.LactosePct,
		OtherSolidsPct: p.OtherSolidsPct,
		WaterPct:       p.WaterPct,
		AlcoholPct:     p.AlcoholPct,
		POD:            p.POD,
		PAC:            p.PAC,
		KcalPer100g:    p.KcalPer100g,
		CostPerKg:      p.CostPerKg,
	}
}

// ModelToIngredient converts a GORM model to a domain profile
func ModelToIngredient(m *IngredientModel) pastry.IngredientProfile {
	return pastry.IngredientProfile{
		ID:             m.ID,
		Name:           m.Name,
		Group:          m.Group,
		SugarPct:       m.SugarPct,
		OilPct:         m.OilPct,
		ButterFatPct:   m.ButterFatPct,
		CocoaButterPct: m.CocoaButterPct,
		CocoaPct:       m.CocoaPct,
		AMPPct:         m.AMPPct,
		LactosePct:     m.LactosePct,
		OtherSolidsPct: m.OtherSolidsPct,
		WaterPct:       m.WaterPct,
		AlcoholPct:     m.AlcoholPct,
		POD:            m.POD,
		PAC:            m.PAC,
		KcalPer100g:    m.KcalPer100g,
		CostPerKg:      m.CostPerKg,
	}
}

// CategoryToModel converts a domain category to a GORM model
func CategoryToModel(c pastry.RecipeCategory) *CategoryModel {
	return &CategoryModel{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		SugarRange:     toRangeField(c.SugarRange),
		FatRange:       toRangeField(c.FatRange),
		DryMatterRange: toRangeField(c.DryMatterRange),
		LiquidRange:    toRangeField(c.LiquidRange),
		PODRange:       toRangeField(c.PODRange),
		PACRange:       toRangeField(c.PACRange),
	}
}

// ModelToCategory converts a GORM model to a domain category
func ModelToCategory(m *CategoryModel) pastry.RecipeCategory {
	return pastry.RecipeCategory{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		SugarRange:     fromRangeField(m.SugarRange),
		FatRange:       fromRangeField(m.FatRange),
		DryMatterRange: fromRangeField(m.DryMatterRange),
		LiquidRange:    fromRangeField(m.LiquidRange),
		PODRange:       fromRangeField(m.PODRange),
		PACRange:       fromRangeField(m.PACRange),
	}
}

// RecipeToModel converts a domain recipe to a GORM model
func RecipeToModel(r *pastry.Recipe) *RecipeModel {
	items := make(RecipeItems, len(r.Items))
	copy(items, r.Items)

	return &RecipeModel{
		ID:         r.ID,
		Version:    r.Version,
		Name:       r.Name,
		CategoryID: r.CategoryID,
		Status:     string(r.Status),
		Author:     r.Author,
		Origin:     r.Origin,
		Notes:      r.Notes,
		Items:      items,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// ModelToRecipe converts a GORM model to a domain recipe
func ModelToRecipe(m *RecipeModel) *pastry.Recipe {
	items := make([]pastry.RecipeItem, len(m.Items))
	copy(items, m.Items)

	return &pastry.Recipe{
		ID:         m.ID,
		Version:    m.Version,
		Name:       m.Name,
		CategoryID: m.CategoryID,
		Status:     pastry.RecipeStatus(m.Status),
		Author:     m.Author,
		Origin:     m.Origin,
		Notes:      m.Notes,
		Items:      items,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toRangeField(r *pastry.RangeSpec) *RangeField {
	if r == nil {
		return nil
	}
	f := RangeField(*r)
	return &f
}

func fromRangeField(f *RangeField) *pastry.RangeSpec {
	if f == nil {
		return nil
	}
	r := pastry.RangeSpec(*f)
	return &r
}
