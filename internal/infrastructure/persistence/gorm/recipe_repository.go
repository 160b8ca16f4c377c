// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	"gorm.io/gorm"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create creates a new recipe
func (r *RecipeRepository) Create(ctx context.Context, recipe *pastry.Recipe) error {
	if recipe.Version == 0 {
		recipe.Version = 1
	}
	return r.db.WithContext(ctx).Create(RecipeToModel(recipe)).Error
}

// Delete deletes a recipe by ID (soft delete)
func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&RecipeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return pastry.ErrRecipeNotFound
	}

	return nil
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, id string) (*pastry.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, pastry.ErrRecipeNotFound
		}
		return nil, result.Error
	}

	return ModelToRecipe(&model), nil
}

// List returns a page of recipes matching criteria, newest first, plus the
// total number of matches
func (r *RecipeRepository) List(ctx context.Context, criteria outbound.ListCriteria) ([]*pastry.Recipe, int, error) {
	query := r.db.WithContext(ctx).Model(&RecipeModel{})

	if criteria.CategoryID != "" {
		query = query.Where("category_id = ?", criteria.CategoryID)
	}

	if criteria.Status != "" {
		query = query.Where("status = ?", string(criteria.Status))
	}

	if criteria.Query != "" {
		searchTerm := "%" + strings.ToLower(criteria.Query) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(author) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if criteria.Limit > 0 {
		query = query.Limit(criteria.Limit)
	}
	if criteria.Offset > 0 {
		query = query.Offset(criteria.Offset)
	}

	var models []RecipeModel
	if err := query.Order("updated_at DESC").Order("id").Find(&models).Error; err != nil {
		return nil, 0, err
	}

	recipes := make([]*pastry.Recipe, 0, len(models))
	for i := range models {
		recipes = append(recipes, ModelToRecipe(&models[i]))
	}

	return recipes, int(total), nil
}

// UpdateWithVersion updates a recipe with optimistic locking
func (r *RecipeRepository) UpdateWithVersion(ctx context.Context, recipe *pastry.Recipe, expectedVersion int64) error {
	model := RecipeToModel(recipe)
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"category_id": model.CategoryID,
			"status":      model.Status,
			"author":      model.Author,
			"origin":      model.Origin,
			"notes":       model.Notes,
			"items":       model.Items,
			"version":     expectedVersion + 1,
			"updated_at":  now,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&RecipeModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return pastry.ErrRecipeNotFound
		}
		return pastry.ErrVersionConflict
	}

	recipe.Version = expectedVersion + 1
	recipe.UpdatedAt = now
	return nil
}
