package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alchemorsel/patisserie/internal/domain/composition"
	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ganacheAnalysis() composition.Analysis {
	calc := composition.NewCalculator(pastry.NewIngredientMap(testutils.GanacheIngredients()...))
	return calc.Calculate(testutils.GanacheRecipe())
}

func TestCSVExporter_Ganache(t *testing.T) {
	// Act
	out, err := NewCSVExporter().ToString(ganacheAnalysis())
	require.NoError(t, err)

	// Assert
	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	require.Len(t, lines, 1+6+1+1+1+1+8)

	assert.Equal(t, strings.Join(header, ";"), lines[0])
	assert.Equal(t, "Nata 35%;305.0;30.1;0.0;0.0;10.5;0.0;0.0;0.7;0.5;0.0;18.4;0.0;18.3;0.0;1021.8;1.37", lines[1])
	assert.Equal(t, "Chocolate negro 65%;420.0;41.5;13.7;0.0;0.0;15.8;11.2;0.0;0.0;0.4;0.4;0.0;138.6;138.6;2436.0;5.88", lines[6])
	assert.Equal(t, "", lines[7])
	assert.Equal(t, "TOTALES;1013.0;100.0;28.3;0.0;21.5;15.8;11.2;0.7;0.5;0.4;21.6;0.0;30.4;43.5;499.1;9.44", lines[8])
	assert.Equal(t, "", lines[9])
	assert.Equal(t, []string{
		"RESUMEN",
		"Azúcares totales;28.3%",
		"Grasas totales;37.3%",
		"Materia seca;12.8%",
		"Líquidos;21.6%",
		"POD;30.4",
		"PAC;43.5",
		"Kcal/100g;499.1",
		"Coste total;9.44 €",
	}, lines[10:])
}

func TestCSVExporter_SingleIngredient(t *testing.T) {
	sugar := pastry.IngredientProfile{ID: "sugar", Name: "Sugar", SugarPct: 100, POD: 100, PAC: 100, KcalPer100g: 400}
	recipe := pastry.NewRecipe("")
	recipe.AddItem("sugar", 200)

	var buf bytes.Buffer
	err := NewCSVExporter().Export(composition.NewCalculator(pastry.NewIngredientMap(sugar)).Calculate(recipe), &buf)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Sugar;200.0;100.0;100.0")
	assert.Contains(t, buf.String(), "RESUMEN")
}

func TestCSVExporter_EmptyAnalysis(t *testing.T) {
	out, err := NewCSVExporter().ToString(composition.Analysis{})

	require.NoError(t, err)
	assert.Contains(t, out, "TOTALES;0.0;100.0")
	assert.Contains(t, out, "Coste total;0.00 €")
}

func TestCSVExporter_QuotesSeparatorInNames(t *testing.T) {
	odd := pastry.IngredientProfile{ID: "odd", Name: "Sal; gruesa", OtherSolidsPct: 100}
	recipe := pastry.NewRecipe("")
	recipe.AddItem("odd", 10)

	out, err := NewCSVExporter().ToString(composition.NewCalculator(pastry.NewIngredientMap(odd)).Calculate(recipe))

	require.NoError(t, err)
	assert.Contains(t, out, "\"Sal; gruesa\";10.0")
}
