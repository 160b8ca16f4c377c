package inbound

import (
	"context"

	"github.com/alchemorsel/patisserie/internal/domain/composition"
	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/domain/validation"
)

// AnalysisService computes and grades recipe compositions
type AnalysisService interface {
	AnalyzeRecipe(ctx context.Context, recipeID string) (*AnalysisDTO, error)
	AnalyzeDraft(ctx context.Context, cmd RecipeCommand) (*AnalysisDTO, error)

	ExportCSV(ctx context.Context, recipeID string) ([]byte, error)
	PublishCSV(ctx context.Context, recipeID string) (string, error)

	ListIngredients(ctx context.Context) ([]pastry.IngredientProfile, error)
	ListCategories(ctx context.Context) ([]pastry.RecipeCategory, error)
}

// AnalysisDTO is the full analysis of a recipe
type AnalysisDTO struct {
	RecipeID     string                            `json:"recipe_id,omitempty"`
	RecipeName   string                            `json:"recipe_name"`
	CategoryID   string                            `json:"category_id,omitempty"`
	Breakdowns   []composition.IngredientBreakdown `json:"breakdowns"`
	Totals       composition.RecipeTotals          `json:"totals"`
	Validation   validation.Result                 `json:"validation"`
	IsValid      bool                              `json:"is_valid"`
	HasWarnings  bool                              `json:"has_warnings"`
	HasErrors    bool                              `json:"has_errors"`
	Warnings     []InputWarning                    `json:"warnings,omitempty"`
	IngredientsV int64                             `json:"ingredients_version"`
	CategoriesV  int64                             `json:"categories_version"`
}

// InputWarning flags suspicious input that the calculator tolerated
type InputWarning struct {
	Code         string `json:"code"`
	IngredientID string `json:"ingredient_id,omitempty"`
	Message      string `json:"message"`
}

// Warning codes
const (
	WarningUnknownIngredient = "unknown_ingredient"
	WarningNonPositiveQty    = "non_positive_quantity"
	WarningProfileSum        = "profile_component_sum"
	WarningUnknownCategory   = "unknown_category"
)
