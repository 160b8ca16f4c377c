package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alchemorsel/patisserie/internal/domain/validation"
	"github.com/alchemorsel/patisserie/internal/ports/inbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ganacheRecipe = filepath.Join("..", "..", "data", "recipes", "ganache_negra_65.json")

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--log-level", "error"))

	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	t.Run("JSON_ShouldReportGanacheComposition", func(t *testing.T) {
		out, err := run(t, "analyze", "--recipe", ganacheRecipe, "--output", "json")
		require.NoError(t, err)

		var dto inbound.AnalysisDTO
		require.NoError(t, json.Unmarshal([]byte(out), &dto))

		assert.Equal(t, "Ganache negra 65%", dto.RecipeName)
		assert.InDelta(t, 1013.0, dto.Totals.TotalWeightG, 1e-9)
		assert.InDelta(t, 28.257, dto.Totals.TotalSugarsPct, 0.001)

		fat, ok := dto.Validation.Metric(validation.MetricFat)
		require.True(t, ok)
		assert.Equal(t, validation.LevelRed, fat.Level)
	})

	t.Run("YAML_ShouldUseBlockStyle", func(t *testing.T) {
		out, err := run(t, "analyze", "--recipe", ganacheRecipe, "-o", "yaml")
		require.NoError(t, err)

		assert.Contains(t, out, "total_weight_g: 1013")
		assert.Contains(t, out, "level: red")
		assert.NotContains(t, out, `"recipe_name"`)
	})

	t.Run("Table_ShouldListMetrics", func(t *testing.T) {
		out, err := run(t, "analyze", "--recipe", ganacheRecipe)
		require.NoError(t, err)

		assert.Contains(t, out, "Ganache negra 65%")
		assert.Contains(t, out, "METRIC")
		assert.Contains(t, out, "red")
	})

	t.Run("UnknownFormat_ShouldFail", func(t *testing.T) {
		_, err := run(t, "analyze", "--recipe", ganacheRecipe, "-o", "xml")

		assert.ErrorContains(t, err, "unknown output format")
	})

	t.Run("MissingIngredientFile_ShouldFail", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.json")

		_, err := run(t, "analyze", "--recipe", ganacheRecipe, "--ingredients", missing)

		assert.Error(t, err)
	})

	t.Run("RecipeName_ShouldResolveInRecipesDir", func(t *testing.T) {
		t.Setenv("PATISSERIE_DATA_RECIPES_DIR", filepath.Dir(ganacheRecipe))

		out, err := run(t, "analyze", "--recipe", "ganache_negra_65", "-o", "json")
		require.NoError(t, err)

		assert.Contains(t, out, `"recipe_name": "Ganache negra 65%"`)
	})

	t.Run("RecipeFlagRequired", func(t *testing.T) {
		_, err := run(t, "analyze")

		assert.Error(t, err)
	})
}

func TestExportCommand(t *testing.T) {
	t.Run("ShouldWriteSheetToFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ganache.csv")

		_, err := run(t, "export", "--recipe", ganacheRecipe, "--out", path)
		require.NoError(t, err)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(raw), "Ingrediente;"))
		assert.Contains(t, string(raw), "TOTALES")
	})

	t.Run("ShouldWriteSheetToStdout", func(t *testing.T) {
		out, err := run(t, "export", "--recipe", ganacheRecipe)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(out, "Ingrediente;"))
	})
}

func TestCheckIngredientsCommand(t *testing.T) {
	t.Run("BuiltInTable_ShouldPass", func(t *testing.T) {
		out, err := run(t, "check-ingredients")
		require.NoError(t, err)

		assert.Contains(t, out, "add up to 100%")
	})

	t.Run("SkewedProfile_ShouldBeListed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ingredients.json")
		table := `[
			{"id":"sugar","name":"Sugar","sugar_pct":100},
			{"id":"odd_cream","name":"Odd cream","butter_fat_pct":35,"water_pct":50}
		]`
		require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

		out, err := run(t, "check-ingredients", "--ingredients", path)

		assert.ErrorContains(t, err, "1 of 2")
		assert.Contains(t, out, "odd_cream")
		assert.NotContains(t, out, "sugar ")
	})
}
