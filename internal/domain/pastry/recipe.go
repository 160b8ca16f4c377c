package pastry

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DefaultRecipeName is used for recipes created without a name.
const DefaultRecipeName = "Nueva receta"

// RecipeStatus is the editorial state of a recipe.
type RecipeStatus string

const (
	RecipeStatusDraft     RecipeStatus = "Borrador"
	RecipeStatusConfirmed RecipeStatus = "Confirmada"
	RecipeStatusTrial     RecipeStatus = "Prueba"
)

// Valid reports whether s is one of the known statuses.
func (s RecipeStatus) Valid() bool {
	switch s {
	case RecipeStatusDraft, RecipeStatusConfirmed, RecipeStatusTrial:
		return true
	}
	return false
}

// ParseStatus converts s to a status. An empty string yields the draft status.
func ParseStatus(s string) (RecipeStatus, error) {
	if s == "" {
		return RecipeStatusDraft, nil
	}
	status := RecipeStatus(s)
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// RecipeItem is a single ingredient line of a recipe.
type RecipeItem struct {
	IngredientID string  `json:"ingredient_id"`
	QuantityG    float64 `json:"quantity_g"`
}

// Recipe is an ordered list of ingredient quantities plus metadata.
// Item order matters for display only.
type Recipe struct {
	ID         string       `json:"id,omitempty"`
	Version    int64        `json:"version,omitempty"`
	Name       string       `json:"name"`
	CategoryID string       `json:"category_id"`
	Status     RecipeStatus `json:"status"`
	Author     string       `json:"author"`
	Origin     string       `json:"origin"`
	Notes      string       `json:"notes"`
	Items      []RecipeItem `json:"items"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewRecipe creates an empty draft recipe.
func NewRecipe(name string) *Recipe {
	if name == "" {
		name = DefaultRecipeName
	}
	now := time.Now()
	return &Recipe{
		ID:        uuid.NewString(),
		Version:   1,
		Name:      name,
		Status:    RecipeStatusDraft,
		Items:     []RecipeItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TotalWeightG returns the sum of all item quantities in grams.
func (r *Recipe) TotalWeightG() float64 {
	var total float64
	for _, item := range r.Items {
		total += item.QuantityG
	}
	return total
}

// AddItem appends an ingredient. If the ingredient is already present its
// quantity is replaced instead.
func (r *Recipe) AddItem(ingredientID string, quantityG float64) {
	for i := range r.Items {
		if r.Items[i].IngredientID == ingredientID {
			r.Items[i].QuantityG = quantityG
			r.touch()
			return
		}
	}
	r.Items = append(r.Items, RecipeItem{IngredientID: ingredientID, QuantityG: quantityG})
	r.touch()
}

// RemoveItem removes an ingredient and reports whether it was present.
func (r *Recipe) RemoveItem(ingredientID string) bool {
	for i := range r.Items {
		if r.Items[i].IngredientID == ingredientID {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			r.touch()
			return true
		}
	}
	return false
}

// UpdateQuantity changes the quantity of an existing ingredient and reports
// whether it was found.
func (r *Recipe) UpdateQuantity(ingredientID string, quantityG float64) bool {
	for i := range r.Items {
		if r.Items[i].IngredientID == ingredientID {
			r.Items[i].QuantityG = quantityG
			r.touch()
			return true
		}
	}
	return false
}

// ScaleToWeight scales every quantity proportionally so the recipe weighs
// roughly targetG. Quantities are rounded to 0.1 g. Recipes without weight
// are left untouched.
func (r *Recipe) ScaleToWeight(targetG float64) {
	current := r.TotalWeightG()
	if current <= 0 {
		return
	}
	factor := targetG / current
	for i := range r.Items {
		r.Items[i].QuantityG = math.Round(r.Items[i].QuantityG*factor*10) / 10
	}
	r.touch()
}

// Duplicate returns a new draft copy of the recipe with its own identity.
func (r *Recipe) Duplicate() *Recipe {
	dup := NewRecipe(r.Name + " (copia)")
	dup.CategoryID = r.CategoryID
	dup.Author = r.Author
	dup.Origin = r.Origin
	dup.Notes = r.Notes
	dup.Items = make([]RecipeItem, len(r.Items))
	copy(dup.Items, r.Items)
	return dup
}

// ItemPercentage returns the share of total weight held by an ingredient, or
// 0 when the ingredient is absent or the recipe has no weight.
func (r *Recipe) ItemPercentage(ingredientID string) float64 {
	total := r.TotalWeightG()
	if total <= 0 {
		return 0
	}
	for _, item := range r.Items {
		if item.IngredientID == ingredientID {
			return item.QuantityG / total * 100.0
		}
	}
	return 0
}

func (r *Recipe) touch() {
	r.UpdatedAt = time.Now()
}
