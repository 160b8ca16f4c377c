package gorm

import (
	"context"
	"errors"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository implements the category repository interface using GORM
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) outbound.CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindAll returns every category ordered by name
func (r *CategoryRepository) FindAll(ctx context.Context) ([]pastry.RecipeCategory, error) {
	var models []CategoryModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, err
	}

	categories := make([]pastry.RecipeCategory, 0, len(models))
	for i := range models {
		categories = append(categories, ModelToCategory(&models[i]))
	}
	return categories, nil
}

// FindByID finds a category by ID
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*pastry.RecipeCategory, error) {
	var model CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pastry.ErrCategoryNotFound
		}
		return nil, err
	}

	c := ModelToCategory(&model)
	return &c, nil
}

// Count returns the number of stored categories
func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CategoryModel{}).Count(&count).Error
	return count, err
}

// Upsert inserts categories or overwrites existing ones with the same ID
func (r *CategoryRepository) Upsert(ctx context.Context, categories []pastry.RecipeCategory) error {
	return upsertCategories(r.db.WithContext(ctx), categories)
}

// ReplaceAll makes the stored table equal to categories: rows are upserted and
// every row whose ID is absent from categories is deleted, in one transaction
func (r *CategoryRepository) ReplaceAll(ctx context.Context, categories []pastry.RecipeCategory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertCategories(tx, categories); err != nil {
			return err
		}

		ids := make([]string, 0, len(categories))
		for _, c := range categories {
			ids = append(ids, c.ID)
		}
		stale := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		}
		return stale.Delete(&CategoryModel{}).Error
	})
}

func upsertCategories(db *gorm.DB, categories []pastry.RecipeCategory) error {
	if len(categories) == 0 {
		return nil
	}

	models := make([]*CategoryModel, 0, len(categories))
	for _, c := range categories {
		models = append(models, CategoryToModel(c))
	}

	return db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		CreateInBatches(models, upsertBatchSize).Error
}
