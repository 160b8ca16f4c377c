// Package validation grades recipe totals against the ideal ranges of a
// recipe category, producing a traffic light per metric and recommendations.
package validation

import (
	"fmt"

	"github.com/alchemorsel/patisserie/internal/domain/composition"
	"github.com/alchemorsel/patisserie/internal/domain/pastry"
)

// NearTolerancePct is the share of a range's span, on each side, that still
// counts as "near" the range.
const NearTolerancePct = 15.0

// NoCategoryName is reported when a recipe is validated without a category.
const NoCategoryName = "(sin categoría)"

// Level is a traffic-light grade. Levels are ordered by severity.
type Level int

const (
	LevelGreen Level = iota
	LevelOrange
	LevelRed
)

func (l Level) String() string {
	switch l {
	case LevelGreen:
		return "green"
	case LevelOrange:
		return "orange"
	case LevelRed:
		return "red"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// MarshalText encodes the level as its lower-case name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses a level name.
func (l *Level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "green":
		*l = LevelGreen
	case "orange":
		*l = LevelOrange
	case "red":
		*l = LevelRed
	default:
		return fmt.Errorf("unknown validation level %q", text)
	}
	return nil
}

// Metric keys, in evaluation order.
const (
	MetricSugar     = "sugar"
	MetricFat       = "fat"
	MetricDryMatter = "dry_matter"
	MetricLiquid    = "liquid"
	MetricPOD       = "pod"
	MetricPAC       = "pac"
)

// MetricValidation is the grade of one metric.
type MetricValidation struct {
	Key         string            `json:"key"`
	DisplayName string            `json:"display_name"`
	Value       float64           `json:"value"`
	Range       *pastry.RangeSpec `json:"range"`
	Level       Level             `json:"level"`
	Message     string            `json:"message,omitempty"`
}

// IsOK reports whether the metric is green.
func (m MetricValidation) IsOK() bool {
	return m.Level == LevelGreen
}

// Result is the full grade of a recipe.
type Result struct {
	CategoryName    string             `json:"category_name"`
	Metrics         []MetricValidation `json:"metrics"`
	Recommendations []string           `json:"recommendations"`
}

// IsValid reports whether every metric is green.
func (r Result) IsValid() bool {
	return r.Worst() == LevelGreen
}

// HasWarnings reports whether any metric is orange.
func (r Result) HasWarnings() bool {
	for _, m := range r.Metrics {
		if m.Level == LevelOrange {
			return true
		}
	}
	return false
}

// HasErrors reports whether any metric is red.
func (r Result) HasErrors() bool {
	for _, m := range r.Metrics {
		if m.Level == LevelRed {
			return true
		}
	}
	return false
}

// Worst returns the most severe level among the metrics.
func (r Result) Worst() Level {
	worst := LevelGreen
	for _, m := range r.Metrics {
		if m.Level > worst {
			worst = m.Level
		}
	}
	return worst
}

// Metric returns the metric with the given key.
func (r Result) Metric(key string) (MetricValidation, bool) {
	for _, m := range r.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return MetricValidation{}, false
}

// Direction tells on which side of a range a value fell.
type Direction string

const (
	DirectionLow  Direction = "low"
	DirectionHigh Direction = "high"
)

type templateKey struct {
	metric    string
	direction Direction
}

// recommendations holds the canned advice per metric and direction. The same
// text is used for orange and red grades.
var recommendations = map[templateKey]string{
	{MetricSugar, DirectionHigh}:     "Azúcares demasiado altos: reduzca azúcar o aumente otros ingredientes.",
	{MetricSugar, DirectionLow}:      "Azúcares demasiado bajos: añada más edulcorantes o aumente su proporción.",
	{MetricFat, DirectionHigh}:       "Grasas demasiado altas: reduzca mantequilla/nata o aumente líquidos.",
	{MetricFat, DirectionLow}:        "Grasas demasiado bajas: añada más grasa (mantequilla, chocolate, nata).",
	{MetricDryMatter, DirectionHigh}: "Materia seca excesiva: reduzca cacao/leche en polvo o añada líquidos.",
	{MetricDryMatter, DirectionLow}:  "Materia seca insuficiente: añada leche en polvo, cacao u otros sólidos.",
	{MetricLiquid, DirectionHigh}:    "Demasiado líquido: reduzca nata/leche o aumente sólidos.",
	{MetricLiquid, DirectionLow}:     "Líquidos insuficientes: añada más nata, leche o agua.",
	{MetricPOD, DirectionHigh}:       "POD demasiado alto: use edulcorantes con menor poder endulzante (glucosa, dextrosa).",
	{MetricPOD, DirectionLow}:        "POD demasiado bajo: use edulcorantes con mayor poder endulzante (fructosa, invertido).",
	{MetricPAC, DirectionHigh}:       "PAC demasiado alto: reduzca alcoholes o edulcorantes con alto PAC.",
	{MetricPAC, DirectionLow}:        "PAC demasiado bajo: añada dextrosa, sorbitol o alcohol para mejorar textura.",
}

// Recommendation returns the advice for a metric that fell on the given side
// of its range with the given level. Metrics without a template get a generic
// message built from their display name.
func Recommendation(key, displayName string, dir Direction, level Level) string {
	if msg, ok := recommendations[templateKey{key, dir}]; ok {
		return msg
	}
	switch {
	case level == LevelOrange && dir == DirectionLow:
		return fmt.Sprintf("%s ligeramente bajo.", displayName)
	case level == LevelOrange:
		return fmt.Sprintf("%s ligeramente alto.", displayName)
	case dir == DirectionLow:
		return fmt.Sprintf("%s fuera de rango (bajo).", displayName)
	default:
		return fmt.Sprintf("%s fuera de rango (alto).", displayName)
	}
}

// Validator grades totals against category ranges.
type Validator struct {
	tolerancePct float64
}

// Option configures a Validator.
type Option func(*Validator)

// WithTolerance overrides the near-band tolerance percentage.
func WithTolerance(pct float64) Option {
	return func(v *Validator) {
		v.tolerancePct = pct
	}
}

// NewValidator creates a validator using NearTolerancePct unless overridden.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{tolerancePct: NearTolerancePct}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate grades totals against category. A nil category yields an empty
// result named NoCategoryName.
func (v *Validator) Validate(totals composition.RecipeTotals, category *pastry.RecipeCategory) Result {
	result := Result{
		Metrics:         []MetricValidation{},
		Recommendations: []string{},
	}
	if category == nil {
		result.CategoryName = NoCategoryName
		return result
	}
	result.CategoryName = category.Name

	checks := []struct {
		key, name string
		value     float64
		ideal     *pastry.RangeSpec
	}{
		{MetricSugar, "Azúcares", totals.TotalSugarsPct, category.SugarRange},
		{MetricFat, "Grasas", totals.TotalFatsPct, category.FatRange},
		{MetricDryMatter, "Materia seca", totals.TotalDryMatterPct, category.DryMatterRange},
		{MetricLiquid, "Líquidos", totals.TotalLiquidsPct, category.LiquidRange},
		{MetricPOD, "POD", totals.POD, category.PODRange},
		{MetricPAC, "PAC", totals.PAC, category.PACRange},
	}

	for _, c := range checks {
		mv := v.validateMetric(c.key, c.name, c.value, c.ideal)
		result.Metrics = append(result.Metrics, mv)
		if !mv.IsOK() && mv.Message != "" {
			result.Recommendations = append(result.Recommendations, mv.Message)
		}
	}
	return result
}

func (v *Validator) validateMetric(key, name string, value float64, ideal *pastry.RangeSpec) MetricValidation {
	mv := MetricValidation{
		Key:         key,
		DisplayName: name,
		Value:       value,
		Range:       ideal,
		Level:       LevelGreen,
	}

	// No ideal defined for this metric in this category.
	if ideal == nil || ideal.Contains(value) {
		return mv
	}

	if ideal.IsNear(value, v.tolerancePct) {
		mv.Level = LevelOrange
	} else {
		mv.Level = LevelRed
	}

	dir := DirectionHigh
	if value < ideal.Min {
		dir = DirectionLow
	}
	mv.Message = Recommendation(key, name, dir, mv.Level)
	return mv
}
