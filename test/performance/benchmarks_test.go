//go:build performance
// +build performance

// Package performance benchmarks the analysis pipeline
package performance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alchemorsel/patisserie/internal/application/analysis"
	"github.com/alchemorsel/patisserie/internal/domain/composition"
	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/domain/validation"
	"github.com/alchemorsel/patisserie/internal/infrastructure/export"
	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/patisserie/test/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Recipe sizes, in ingredients
const (
	SmallRecipe  = 6
	MediumRecipe = 25
	LargeRecipe  = 100

	// Analysing one recipe should never come close to this
	MaxAnalysisTime = 5 * time.Millisecond
)

type fixedTables struct {
	ingredients *pastry.IngredientTable
	categories  *pastry.CategoryTable
}

func (t fixedTables) Ingredients() *pastry.IngredientTable { return t.ingredients }

func (t fixedTables) Categories() *pastry.CategoryTable { return t.categories }

func randomRecipe(seed int64, size int) ([]pastry.IngredientProfile, *pastry.Recipe) {
	factory := testutils.NewIngredientFactory(seed)
	profiles := factory.Profiles(size)
	return profiles, factory.RecipeFor(profiles)
}

func BenchmarkCalculator(b *testing.B) {
	for _, size := range []int{SmallRecipe, MediumRecipe, LargeRecipe} {
		profiles, recipe := randomRecipe(int64(size), size)
		calc := composition.NewCalculator(pastry.NewIngredientMap(profiles...))

		b.Run(fmt.Sprintf("Ingredients_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = calc.Calculate(recipe)
			}
		})
	}
}

func BenchmarkValidator(b *testing.B) {
	calc := composition.NewCalculator(pastry.NewIngredientMap(testutils.GanacheIngredients()...))
	totals := calc.Calculate(testutils.GanacheRecipe()).Totals
	validator := validation.NewValidator()
	category := testutils.GanacheMolded

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = validator.Validate(totals, &category)
	}
}

func BenchmarkCSVExport(b *testing.B) {
	profiles, recipe := randomRecipe(7, MediumRecipe)
	result := composition.NewCalculator(pastry.NewIngredientMap(profiles...)).Calculate(recipe)
	exporter := export.NewCSVExporter()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := exporter.Bytes(result); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAnalyzeRecipe(b *testing.B) {
	ctx := context.Background()
	profiles, recipe := randomRecipe(11, MediumRecipe)
	recipe.ID = "bench-recipe"
	recipe.Version = 1

	repo := new(testutils.MockRecipeRepository)
	repo.On("FindByID", mock.Anything, recipe.ID).Return(recipe, nil)

	tables := fixedTables{
		ingredients: pastry.NewIngredientTable(1, profiles),
		categories:  pastry.NewCategoryTable(1, []pastry.RecipeCategory{testutils.GanacheMolded}),
	}

	b.Run("Uncached", func(b *testing.B) {
		service := analysis.NewService(analysis.Dependencies{Recipes: repo, Tables: tables})

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := service.AnalyzeRecipe(ctx, recipe.ID); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Cached", func(b *testing.B) {
		cache := memory.NewCacheRepository(0)
		defer cache.Close()
		service := analysis.NewService(analysis.Dependencies{Recipes: repo, Tables: tables, Cache: cache})

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := service.AnalyzeRecipe(ctx, recipe.ID); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func TestAnalysisLatency(t *testing.T) {
	profiles, recipe := randomRecipe(3, LargeRecipe)
	calc := composition.NewCalculator(pastry.NewIngredientMap(profiles...))
	validator := validation.NewValidator()
	category := testutils.GanacheMolded

	start := time.Now()
	result := calc.Calculate(recipe)
	_ = validator.Validate(result.Totals, &category)
	elapsed := time.Since(start)

	require.Less(t, elapsed, MaxAnalysisTime, "analysis of %d ingredients took %s", LargeRecipe, elapsed)
}
