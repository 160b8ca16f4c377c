// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alchemorsel/patisserie/internal/domain/composition"
	"github.com/alchemorsel/patisserie/internal/domain/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tolerance used when comparing computed percentages.
const Tolerance = 1e-6

// AnalysisAssertions provides composition-specific assertion methods
type AnalysisAssertions struct {
	t *testing.T
}

// NewAnalysisAssertions creates a new analysis assertions helper
func NewAnalysisAssertions(t *testing.T) *AnalysisAssertions {
	return &AnalysisAssertions{t: t}
}

// PercentagesClose asserts that breakdown percentages add up to 100
func (aa *AnalysisAssertions) PercentagesClose(a composition.Analysis, msgAndArgs ...interface{}) {
	aa.t.Helper()
	require.NotEmpty(aa.t, a.Breakdowns, "Analysis should have breakdowns")

	var sum float64
	for _, bd := range a.Breakdowns {
		sum += bd.Percentage
	}
	assert.InDelta(aa.t, 100.0, sum, Tolerance, msgAndArgs...)
}

// GroupedSumsMatch asserts that grouped totals equal the sum of component totals
func (aa *AnalysisAssertions) GroupedSumsMatch(t composition.RecipeTotals, msgAndArgs ...interface{}) {
	aa.t.Helper()
	grouped := t.TotalSugarsPct + t.TotalFatsPct + t.TotalDryMatterPct + t.TotalLiquidsPct
	assert.InDelta(aa.t, t.ComponentSum(), grouped, Tolerance, msgAndArgs...)
}

// TotalsEqual asserts two totals are equal within tolerance
func (aa *AnalysisAssertions) TotalsEqual(expected, actual composition.RecipeTotals, delta float64) {
	aa.t.Helper()
	assert.InDelta(aa.t, expected.TotalSugarsPct, actual.TotalSugarsPct, delta, "sugars")
	assert.InDelta(aa.t, expected.TotalFatsPct, actual.TotalFatsPct, delta, "fats")
	assert.InDelta(aa.t, expected.TotalDryMatterPct, actual.TotalDryMatterPct, delta, "dry matter")
	assert.InDelta(aa.t, expected.TotalLiquidsPct, actual.TotalLiquidsPct, delta, "liquids")
	assert.InDelta(aa.t, expected.POD, actual.POD, delta, "POD")
	assert.InDelta(aa.t, expected.PAC, actual.PAC, delta, "PAC")
	assert.InDelta(aa.t, expected.KcalPer100g, actual.KcalPer100g, delta, "kcal")
}

// MetricLevel asserts the level of a single metric
func (aa *AnalysisAssertions) MetricLevel(r validation.Result, key string, expected validation.Level) {
	aa.t.Helper()
	m, ok := r.Metric(key)
	require.True(aa.t, ok, "metric %s should be present", key)
	assert.Equal(aa.t, expected, m.Level, "metric %s level", key)
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// JSONResponse asserts status and content type, then decodes the body into v
func (ha *HTTPAssertions) JSONResponse(rec *httptest.ResponseRecorder, expectedStatus int, v interface{}) {
	ha.t.Helper()
	require.Equal(ha.t, expectedStatus, rec.Code, "unexpected status, body: %s", rec.Body.String())
	assert.Contains(ha.t, rec.Header().Get("Content-Type"), "application/json")
	if v != nil {
		require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), v))
	}
}

// StatusCode asserts the response status code
func (ha *HTTPAssertions) StatusCode(rec *httptest.ResponseRecorder, expected int) {
	ha.t.Helper()
	assert.Equal(ha.t, expected, rec.Code, "%s: %s", http.StatusText(rec.Code), rec.Body.String())
}
