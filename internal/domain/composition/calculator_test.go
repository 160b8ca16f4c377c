package composition_test

import (
	"testing"
	"time"

	"github.com/alchemorsel/patisserie/internal/domain/composition"
	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// CalculatorTestSuite provides a test suite for the composition calculator
type CalculatorTestSuite struct {
	suite.Suite
	calculator *composition.Calculator
	factory    *testutils.IngredientFactory
	assertions *testutils.AnalysisAssertions
}

// SetupSuite initializes the test suite
func (suite *CalculatorTestSuite) SetupSuite() {
	suite.calculator = composition.NewCalculator(pastry.NewIngredientMap(testutils.GanacheIngredients()...))
	suite.factory = testutils.NewIngredientFactory(time.Now().UnixNano())
	suite.assertions = testutils.NewAnalysisAssertions(suite.T())
}

func (suite *CalculatorTestSuite) TestDegenerateRecipes() {
	suite.Run("EmptyRecipe_ShouldYieldEmptyAnalysis", func() {
		a := suite.calculator.Calculate(pastry.NewRecipe(""))

		assert.Empty(suite.T(), a.Breakdowns)
		assert.Equal(suite.T(), composition.RecipeTotals{}, a.Totals)
	})

	suite.Run("NilRecipe_ShouldYieldEmptyAnalysis", func() {
		a := suite.calculator.Calculate(nil)
		assert.Empty(suite.T(), a.Breakdowns)
	})

	suite.Run("ZeroWeight_ShouldYieldEmptyAnalysis", func() {
		r := testutils.NewRecipeBuilder().
			WithItem("cream_35", 0).
			WithItem("dark_choc_65", 0).
			Build()

		a := suite.calculator.Calculate(r)

		assert.Empty(suite.T(), a.Breakdowns)
		assert.Zero(suite.T(), a.Totals.TotalWeightG)
	})

	suite.Run("UnknownIngredient_ShouldBeSkipped", func() {
		r := testutils.NewRecipeBuilder().WithItem("nonexistent", 100).Build()

		a := suite.calculator.Calculate(r)

		assert.Empty(suite.T(), a.Breakdowns)
		assert.Equal(suite.T(), 100.0, a.Totals.TotalWeightG)
		assert.Zero(suite.T(), a.Totals.TotalSugarsPct)
	})

	suite.Run("UnknownIngredient_StillCountsTowardsWeight", func() {
		r := testutils.NewRecipeBuilder().
			WithItem("sorbitol_powder", 100).
			WithItem("nonexistent", 100).
			Build()

		a := suite.calculator.Calculate(r)

		require.Len(suite.T(), a.Breakdowns, 1)
		assert.InDelta(suite.T(), 50.0, a.Breakdowns[0].Percentage, 1e-9)
		assert.InDelta(suite.T(), 49.0, a.Totals.TotalSugarsPct, 1e-9)
	})
}

func (suite *CalculatorTestSuite) TestSingleIngredient() {
	sugar := pastry.IngredientProfile{ID: "sugar", Name: "Sugar", SugarPct: 100, POD: 100, PAC: 100, KcalPer100g: 400, CostPerKg: 1.2}
	calc := composition.NewCalculator(pastry.NewIngredientMap(sugar))

	a := calc.Calculate(testutils.NewRecipeBuilder().WithItem("sugar", 500).Build())

	require.Len(suite.T(), a.Breakdowns, 1)
	bd := a.Breakdowns[0]
	assert.InDelta(suite.T(), 100.0, bd.Percentage, 0.01)
	assert.InDelta(suite.T(), 100.0, bd.Sugar, 0.01)
	assert.InDelta(suite.T(), 500.0, bd.POD, 0.01)
	assert.InDelta(suite.T(), 0.6, bd.Cost, 1e-9)

	t := a.Totals
	assert.InDelta(suite.T(), 100.0, t.TotalSugarsPct, 0.01)
	assert.InDelta(suite.T(), 0.0, t.TotalFatsPct, 0.01)
	assert.InDelta(suite.T(), 100.0, t.POD, 0.01)
	assert.InDelta(suite.T(), 100.0, t.PAC, 0.01)
	assert.InDelta(suite.T(), 400.0, t.KcalPer100g, 0.01)
}

func (suite *CalculatorTestSuite) TestGanache() {
	a := suite.calculator.Calculate(testutils.GanacheRecipe())
	t := a.Totals

	suite.Run("WeightAndLines", func() {
		assert.InDelta(suite.T(), 1013.0, t.TotalWeightG, 0.01)
		require.Len(suite.T(), a.Breakdowns, 6)
		assert.Equal(suite.T(), "cream_35", a.Breakdowns[0].IngredientID)
		assert.Equal(suite.T(), "dark_choc_65", a.Breakdowns[5].IngredientID)
	})

	suite.Run("LineShares", func() {
		assert.InDelta(suite.T(), 30.1, a.Breakdowns[0].Percentage, 0.2)
		assert.InDelta(suite.T(), 41.5, a.Breakdowns[5].Percentage, 0.2)
	})

	suite.Run("GroupedTotals", func() {
		assert.InDelta(suite.T(), 29.3, t.TotalSugarsPct, 1.5)
		assert.InDelta(suite.T(), 37.5, t.TotalFatsPct, 1.5)
		assert.Greater(suite.T(), t.TotalDryMatterPct, 9.0)
		assert.Less(suite.T(), t.TotalDryMatterPct, 15.0)
		assert.InDelta(suite.T(), 20.1, t.TotalLiquidsPct, 2.0)
	})

	suite.Run("TechnicalScalars", func() {
		assert.InDelta(suite.T(), 29.0, t.POD, 5.0)
		assert.InDelta(suite.T(), 43.0, t.PAC, 8.0)
		assert.InDelta(suite.T(), 502.0, t.KcalPer100g, 30.0)
		assert.InDelta(suite.T(), 9.4365, t.TotalCost, 1e-6)
	})

	suite.Run("Closure", func() {
		suite.assertions.PercentagesClose(a)
		suite.assertions.GroupedSumsMatch(t)
		grouped := t.TotalSugarsPct + t.TotalFatsPct + t.TotalDryMatterPct + t.TotalLiquidsPct
		assert.InDelta(suite.T(), 100.0, grouped, 2.0)
	})
}

func (suite *CalculatorTestSuite) TestRandomRecipes() {
	for i := 0; i < 25; i++ {
		profiles := suite.factory.Profiles(1 + i%7)
		calc := composition.NewCalculator(pastry.NewIngredientMap(profiles...))
		r := suite.factory.RecipeFor(profiles)

		a := calc.Calculate(r)

		suite.assertions.PercentagesClose(a)
		suite.assertions.GroupedSumsMatch(a.Totals)
		// Every generated profile sums to 100, so the recipe does too.
		assert.InDelta(suite.T(), 100.0, a.Totals.ComponentSum(), 1e-6)

		// Scaling quantities leaves percentages alone and scales cost.
		scaled := pastry.NewRecipe(r.Name)
		for _, item := range r.Items {
			scaled.Items = append(scaled.Items, pastry.RecipeItem{IngredientID: item.IngredientID, QuantityG: item.QuantityG * 3})
		}
		b := calc.Calculate(scaled)

		suite.assertions.TotalsEqual(a.Totals, b.Totals, 1e-6)
		assert.InDelta(suite.T(), a.Totals.TotalCost*3, b.Totals.TotalCost, 1e-6)
	}
}

func (suite *CalculatorTestSuite) TestDuplicateLines() {
	// Repeated ingredient lines are treated as separate lines.
	r := testutils.NewRecipeBuilder().
		WithItem("anhydrous_butter", 50).
		WithItem("anhydrous_butter", 50).
		Build()

	a := suite.calculator.Calculate(r)

	require.Len(suite.T(), a.Breakdowns, 2)
	assert.InDelta(suite.T(), 50.0, a.Breakdowns[0].Percentage, 1e-9)
	assert.InDelta(suite.T(), 99.5, a.Totals.TotalFatsPct, 1e-9)
}

func TestCalculatorTestSuite(t *testing.T) {
	suite.Run(t, new(CalculatorTestSuite))
}
