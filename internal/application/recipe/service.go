// Package recipe provides the application layer for recipe management
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	stderrors "errors"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/ports/inbound"
	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	"github.com/alchemorsel/patisserie/pkg/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Paging defaults
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CategoryLookup resolves category ids against the current catalog
type CategoryLookup interface {
	Categories() *pastry.CategoryTable
}

// RecipeService implements the recipe use cases
type RecipeService struct {
	recipeRepo outbound.RecipeRepository
	categories CategoryLookup
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewRecipeService creates a new recipe service
func NewRecipeService(
	recipeRepo outbound.RecipeRepository,
	categories CategoryLookup,
	validate *validator.Validate,
	logger *zap.Logger,
) *RecipeService {
	if validate == nil {
		validate = validator.New()
	}
	return &RecipeService{
		recipeRepo: recipeRepo,
		categories: categories,
		validate:   validate,
		logger:     logger.Named("recipe-service"),
	}
}

// CreateRecipe creates a new recipe
func (s *RecipeService) CreateRecipe(ctx context.Context, cmd inbound.RecipeCommand) (*pastry.Recipe, error) {
	s.logger.Info("Creating new recipe",
		zap.String("name", cmd.Name),
		zap.String("category_id", cmd.CategoryID),
		zap.Int("items", len(cmd.Items)),
	)

	if err := s.validate.StructCtx(ctx, cmd); err != nil {
		return nil, errors.FromValidator(err)
	}
	if err := s.checkCategory(cmd.CategoryID); err != nil {
		return nil, err
	}

	recipe := pastry.NewRecipe(cmd.Name)
	if err := applyCommand(recipe, cmd); err != nil {
		return nil, err
	}

	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, errors.NewDatabaseError("create recipe", err)
	}

	s.logger.Info("Recipe created successfully",
		zap.String("recipe_id", recipe.ID),
		zap.Float64("total_weight_g", recipe.TotalWeightG()),
	)

	return recipe, nil
}

// UpdateRecipe replaces the editable fields of a recipe. A zero command
// version updates whatever version is stored.
func (s *RecipeService) UpdateRecipe(ctx context.Context, cmd inbound.UpdateRecipeCommand) (*pastry.Recipe, error) {
	s.logger.Info("Updating recipe",
		zap.String("recipe_id", cmd.RecipeID),
		zap.Int64("version", cmd.Version),
	)

	if err := s.validate.StructCtx(ctx, cmd); err != nil {
		return nil, errors.FromValidator(err)
	}
	if err := s.checkCategory(cmd.CategoryID); err != nil {
		return nil, err
	}

	recipe, err := s.find(ctx, cmd.RecipeID)
	if err != nil {
		return nil, err
	}

	expected := cmd.Version
	if expected == 0 {
		expected = recipe.Version
	}
	if expected != recipe.Version {
		return nil, errors.NewVersionConflictError(recipe.ID, expected)
	}

	recipe.Name = cmd.Name
	recipe.Items = recipe.Items[:0]
	if err := applyCommand(recipe, cmd.RecipeCommand); err != nil {
		return nil, err
	}

	if err := s.save(ctx, recipe, expected); err != nil {
		return nil, err
	}

	s.logger.Info("Recipe updated successfully",
		zap.String("recipe_id", recipe.ID),
		zap.Int64("version", recipe.Version),
	)

	return recipe, nil
}

// DeleteRecipe deletes a recipe
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID string) error {
	s.logger.Info("Deleting recipe", zap.String("recipe_id", recipeID))

	if err := s.recipeRepo.Delete(ctx, recipeID); err != nil {
		if stderrors.Is(err, pastry.ErrRecipeNotFound) {
			return errors.NewRecipeNotFoundError(recipeID)
		}
		return errors.NewDatabaseError("delete recipe", err)
	}
	return nil
}

// DuplicateRecipe stores a draft copy of a recipe
func (s *RecipeService) DuplicateRecipe(ctx context.Context, recipeID string) (*pastry.Recipe, error) {
	original, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	dup := original.Duplicate()
	if err := s.recipeRepo.Create(ctx, dup); err != nil {
		return nil, errors.NewDatabaseError("create recipe", err)
	}

	s.logger.Info("Recipe duplicated",
		zap.String("recipe_id", recipeID),
		zap.String("copy_id", dup.ID),
	)

	return dup, nil
}

// ScaleRecipe scales every quantity so the recipe weighs the target weight
func (s *RecipeService) ScaleRecipe(ctx context.Context, cmd inbound.ScaleRecipeCommand) (*pastry.Recipe, error) {
	if err := s.validate.StructCtx(ctx, cmd); err != nil {
		return nil, errors.FromValidator(err)
	}

	recipe, err := s.find(ctx, cmd.RecipeID)
	if err != nil {
		return nil, err
	}
	if recipe.TotalWeightG() <= 0 {
		return nil, errors.NewValidationError(pastry.ErrEmptyRecipe.Error()).WithCause(pastry.ErrEmptyRecipe)
	}

	from := recipe.TotalWeightG()
	recipe.ScaleToWeight(cmd.TargetWeightG)

	if err := s.save(ctx, recipe, recipe.Version); err != nil {
		return nil, err
	}

	s.logger.Info("Recipe scaled",
		zap.String("recipe_id", recipe.ID),
		zap.Float64("from_g", from),
		zap.Float64("to_g", recipe.TotalWeightG()),
	)

	return recipe, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, recipeID string) (*pastry.Recipe, error) {
	return s.find(ctx, recipeID)
}

// ListRecipes returns a page of recipes
func (s *RecipeService) ListRecipes(ctx context.Context, query inbound.ListRecipesQuery) (*inbound.RecipeList, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	recipes, total, err := s.recipeRepo.List(ctx, outbound.ListCriteria{
		CategoryID: query.CategoryID,
		Status:     query.Status,
		Query:      query.Query,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
	})
	if err != nil {
		return nil, errors.NewDatabaseError("list recipes", err)
	}
	if recipes == nil {
		recipes = []*pastry.Recipe{}
	}

	return &inbound.RecipeList{
		Recipes:  recipes,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *RecipeService) find(ctx context.Context, recipeID string) (*pastry.Recipe, error) {
	recipe, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		if stderrors.Is(err, pastry.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(recipeID)
		}
		return nil, errors.NewDatabaseError("find recipe", err)
	}
	return recipe, nil
}

func (s *RecipeService) save(ctx context.Context, recipe *pastry.Recipe, expected int64) error {
	err := s.recipeRepo.UpdateWithVersion(ctx, recipe, expected)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, pastry.ErrVersionConflict):
		return errors.NewVersionConflictError(recipe.ID, expected)
	case stderrors.Is(err, pastry.ErrRecipeNotFound):
		return errors.NewRecipeNotFoundError(recipe.ID)
	default:
		return errors.NewDatabaseError("update recipe", err)
	}
}

func (s *RecipeService) checkCategory(categoryID string) error {
	if categoryID == "" || s.categories == nil {
		return nil
	}
	if s.categories.Categories().Category(categoryID) == nil {
		return errors.NewCategoryNotFoundError(categoryID)
	}
	return nil
}

// applyCommand copies command fields onto recipe. Repeated ingredient ids
// collapse into one line holding the last quantity.
func applyCommand(recipe *pastry.Recipe, cmd inbound.RecipeCommand) error {
	status, err := pastry.ParseStatus(string(cmd.Status))
	if err != nil {
		return errors.NewValidationError(err.Error()).WithCause(err)
	}

	recipe.CategoryID = cmd.CategoryID
	recipe.Status = status
	recipe.Author = cmd.Author
	recipe.Origin = cmd.Origin
	recipe.Notes = cmd.Notes
	for _, item := range cmd.Items {
		recipe.AddItem(item.IngredientID, item.QuantityG)
	}
	return nil
}

var _ inbound.RecipeService = (*RecipeService)(nil)
