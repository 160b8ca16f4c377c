package pastry

// DefaultNearTolerancePct is the tolerance IsNear uses when callers have no
// better value.
const DefaultNearTolerancePct = 10.0

// RangeSpec is a closed interval [Min, Max] over a metric.
type RangeSpec struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NewRange creates a range pointer, handy for optional category fields.
func NewRange(min, max float64) *RangeSpec {
	return &RangeSpec{Min: min, Max: max}
}

// Contains reports whether min <= value <= max.
func (r RangeSpec) Contains(value float64) bool {
	return r.Min <= value && value <= r.Max
}

// Span returns max - min.
func (r RangeSpec) Span() float64 {
	return r.Max - r.Min
}

// IsNear reports whether value lies within the range widened on both sides by
// tolerancePct percent of its span. A zero-span range has no margin.
func (r RangeSpec) IsNear(value, tolerancePct float64) bool {
	margin := r.Span() * tolerancePct / 100.0
	return r.Min-margin <= value && value <= r.Max+margin
}

// RecipeCategory groups recipes sharing the same ideal composition. Every
// range is optional; a nil range means the category sets no ideal for it.
type RecipeCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Percentages of recipe weight
	SugarRange     *RangeSpec `json:"sugar_range"`
	FatRange       *RangeSpec `json:"fat_range"`
	DryMatterRange *RangeSpec `json:"dry_matter_range"`
	LiquidRange    *RangeSpec `json:"liquid_range"`

	// Technical scalars
	PODRange *RangeSpec `json:"pod_range"`
	PACRange *RangeSpec `json:"pac_range"`
}
