package pastry

import "errors"

// Domain errors for pastry operations

var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrVersionConflict    = errors.New("recipe was modified concurrently")
	ErrEmptyRecipe        = errors.New("recipe has no weight")
	ErrInvalidStatus      = errors.New("invalid recipe status")
)
