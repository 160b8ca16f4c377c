// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"time"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/brianvoe/gofakeit/v6"
)

// Reference ingredients for the 65% dark chocolate ganache.
var (
	Cream35 = pastry.IngredientProfile{
		ID: "cream_35", Name: "Nata 35%", Group: "Lácteos",
		ButterFatPct: 35.0, AMPPct: 2.3, LactosePct: 1.7, WaterPct: 61.0,
		POD: 6, PAC: 0, KcalPer100g: 335, CostPerKg: 4.5,
	}
	InvertedSugar = pastry.IngredientProfile{
		ID: "inverted_sugar", Name: "Azúcar invertido", Group: "Azúcares",
		SugarPct: 75.0, WaterPct: 25.0,
		POD: 130, PAC: 190, KcalPer100g: 300, CostPerKg: 5.0,
	}
	Glucose60 = pastry.IngredientProfile{
		ID: "glucose_60", Name: "Glucosa DE 60", Group: "Azúcares",
		SugarPct: 80.0, WaterPct: 20.0,
		POD: 50, PAC: 120, KcalPer100g: 320, CostPerKg: 3.5,
	}
	SorbitolPowder = pastry.IngredientProfile{
		ID: "sorbitol_powder", Name: "Sorbitol polvo", Group: "Azúcares",
		SugarPct: 98.0, WaterPct: 2.0,
		POD: 60, PAC: 190, KcalPer100g: 392, CostPerKg: 5.5,
	}
	AnhydrousButter = pastry.IngredientProfile{
		ID: "anhydrous_butter", Name: "Mantequilla anhidra", Group: "Lácteos",
		ButterFatPct: 99.5, WaterPct: 0.5,
		POD: 0, PAC: 0, KcalPer100g: 900, CostPerKg: 12.0,
	}
	DarkChoc65 = pastry.IngredientProfile{
		ID: "dark_choc_65", Name: "Chocolate negro 65%", Group: "Chocolate",
		SugarPct: 33.0, CocoaButterPct: 38.0, CocoaPct: 27.0,
		OtherSolidsPct: 1.0, WaterPct: 1.0,
		POD: 33, PAC: 33, KcalPer100g: 580, CostPerKg: 14.0,
	}
)

// Reference categories.
var (
	GanacheMolded = pastry.RecipeCategory{
		ID: "ganache_molded", Name: "Ganache moldeada",
		SugarRange:     pastry.NewRange(22, 32),
		FatRange:       pastry.NewRange(28, 35),
		DryMatterRange: pastry.NewRange(5, 18),
		LiquidRange:    pastry.NewRange(18, 25),
	}
	IceCream = pastry.RecipeCategory{
		ID: "ice_cream", Name: "Helado",
		SugarRange:     pastry.NewRange(18, 22),
		FatRange:       pastry.NewRange(6, 12),
		DryMatterRange: pastry.NewRange(10, 20),
		LiquidRange:    pastry.NewRange(58, 66),
		PODRange:       pastry.NewRange(16, 20),
		PACRange:       pastry.NewRange(24, 28),
	}
)

// GanacheIngredients returns the six reference ganache ingredients.
func GanacheIngredients() []pastry.IngredientProfile {
	return []pastry.IngredientProfile{
		Cream35, InvertedSugar, Glucose60, SorbitolPowder, AnhydrousButter, DarkChoc65,
	}
}

// GanacheRecipe returns the 1013 g reference ganache.
func GanacheRecipe() *pastry.Recipe {
	return NewRecipeBuilder().
		WithName("65% dark chocolate ganache").
		WithCategory(GanacheMolded.ID).
		WithItem(Cream35.ID, 305).
		WithItem(InvertedSugar.ID, 72).
		WithItem(Glucose60.ID, 46).
		WithItem(SorbitolPowder.ID, 58).
		WithItem(AnhydrousButter.ID, 112).
		WithItem(DarkChoc65.ID, 420).
		Build()
}

// IngredientFactory generates random but well-formed ingredient profiles
type IngredientFactory struct {
	faker *gofakeit.Faker
}

// NewIngredientFactory creates a new ingredient factory with seeded faker
func NewIngredientFactory(seed int64) *IngredientFactory {
	return &IngredientFactory{faker: gofakeit.New(seed)}
}

// Profile creates a profile whose ten components sum to exactly 100%.
func (f *IngredientFactory) Profile() pastry.IngredientProfile {
	weights := make([]float64, 10)
	var sum float64
	for i := range weights {
		weights[i] = f.faker.Float64Range(0, 10)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] = weights[i] / sum * 100.0
	}

	return pastry.IngredientProfile{
		ID:             f.faker.UUID(),
		Name:           f.faker.Dessert(),
		Group:          f.faker.RandomString([]string{"Azúcares", "Lácteos", "Chocolate", "Grasas", "Otros"}),
		SugarPct:       weights[0],
		OilPct:         weights[1],
		ButterFatPct:   weights[2],
		CocoaButterPct: weights[3],
		CocoaPct:       weights[4],
		AMPPct:         weights[5],
		LactosePct:     weights[6],
		OtherSolidsPct: weights[7],
		WaterPct:       weights[8],
		AlcoholPct:     weights[9],
		POD:            f.faker.Float64Range(0, 200),
		PAC:            f.faker.Float64Range(0, 300),
		KcalPer100g:    f.faker.Float64Range(0, 900),
		CostPerKg:      f.faker.Float64Range(0.5, 40),
	}
}

// Profiles creates n random profiles.
func (f *IngredientFactory) Profiles(n int) []pastry.IngredientProfile {
	out := make([]pastry.IngredientProfile, n)
	for i := range out {
		out[i] = f.Profile()
	}
	return out
}

// RecipeFor creates a recipe using every given profile with a random
// positive quantity.
func (f *IngredientFactory) RecipeFor(profiles []pastry.IngredientProfile) *pastry.Recipe {
	b := NewRecipeBuilder().WithName(f.faker.Dessert())
	for _, p := range profiles {
		b.WithItem(p.ID, f.faker.Float64Range(1, 1000))
	}
	return b.Build()
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	name       string
	categoryID string
	status     pastry.RecipeStatus
	author     string
	items      []pastry.RecipeItem
}

// NewRecipeBuilder creates a new recipe builder with default values
func NewRecipeBuilder() *RecipeBuilder {
	return &RecipeBuilder{
		name:   fmt.Sprintf("Test recipe %d", time.Now().UnixNano()),
		status: pastry.RecipeStatusDraft,
		items:  []pastry.RecipeItem{},
	}
}

// WithName sets the recipe name
func (rb *RecipeBuilder) WithName(name string) *RecipeBuilder {
	rb.name = name
	return rb
}

// WithCategory sets the recipe category
func (rb *RecipeBuilder) WithCategory(categoryID string) *RecipeBuilder {
	rb.categoryID = categoryID
	return rb
}

// WithStatus sets the recipe status
func (rb *RecipeBuilder) WithStatus(status pastry.RecipeStatus) *RecipeBuilder {
	rb.status = status
	return rb
}

// WithAuthor sets the recipe author
func (rb *RecipeBuilder) WithAuthor(author string) *RecipeBuilder {
	rb.author = author
	return rb
}

// WithItem appends an ingredient line, duplicates included
func (rb *RecipeBuilder) WithItem(ingredientID string, quantityG float64) *RecipeBuilder {
	rb.items = append(rb.items, pastry.RecipeItem{IngredientID: ingredientID, QuantityG: quantityG})
	return rb
}

// Build constructs the recipe
func (rb *RecipeBuilder) Build() *pastry.Recipe {
	r := pastry.NewRecipe(rb.name)
	r.CategoryID = rb.categoryID
	r.Status = rb.status
	r.Author = rb.author
	r.Items = append(r.Items, rb.items...)
	return r
}
