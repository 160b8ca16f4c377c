// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
)

// RecipeService defines the use cases for recipe management
// This is the primary port that HTTP handlers and other driving adapters will use
type RecipeService interface {
	// Commands - operations that modify state
	CreateRecipe(ctx context.Context, cmd RecipeCommand) (*pastry.Recipe, error)
	UpdateRecipe(ctx context.Context, cmd UpdateRecipeCommand) (*pastry.Recipe, error)
	DeleteRecipe(ctx context.Context, recipeID string) error
	DuplicateRecipe(ctx context.Context, recipeID string) (*pastry.Recipe, error)
	ScaleRecipe(ctx context.Context, cmd ScaleRecipeCommand) (*pastry.Recipe, error)

	// Queries - operations that read state
	GetRecipe(ctx context.Context, recipeID string) (*pastry.Recipe, error)
	ListRecipes(ctx context.Context, query ListRecipesQuery) (*RecipeList, error)
}

// Command objects for operations

// RecipeItemCommand is one ingredient line. Non-positive quantities are
// rejected here; the calculator itself tolerates them.
type RecipeItemCommand struct {
	IngredientID string  `json:"ingredient_id" validate:"required"`
	QuantityG    float64 `json:"quantity_g" validate:"gt=0"`
}

// RecipeCommand contains data for creating a new recipe
type RecipeCommand struct {
	Name       string              `json:"name" validate:"required,max=200"`
	CategoryID string              `json:"category_id"`
	Status     pastry.RecipeStatus `json:"status" validate:"omitempty,oneof=Borrador Confirmada Prueba"`
	Author     string              `json:"author" validate:"max=200"`
	Origin     string              `json:"origin" validate:"max=200"`
	Notes      string              `json:"notes" validate:"max=5000"`
	Items      []RecipeItemCommand `json:"items" validate:"dive"`
}

// UpdateRecipeCommand replaces the editable fields of a stored recipe
type UpdateRecipeCommand struct {
	RecipeID string `json:"-" validate:"required"`
	// Version the client last read; zero skips the optimistic check.
	Version int64 `json:"version"`
	RecipeCommand
}

// ScaleRecipeCommand scales a stored recipe to a target weight
type ScaleRecipeCommand struct {
	RecipeID      string  `json:"-" validate:"required"`
	TargetWeightG float64 `json:"target_weight_g" validate:"gt=0"`
}

// Query objects

// ListRecipesQuery defines listing parameters
type ListRecipesQuery struct {
	CategoryID string
	Status     pastry.RecipeStatus
	Query      string
	Page       int
	PageSize   int
}

// Response DTOs

// RecipeList is a page of recipes
type RecipeList struct {
	Recipes  []*pastry.Recipe `json:"recipes"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}
