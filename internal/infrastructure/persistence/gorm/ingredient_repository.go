package gorm

import (
	"context"
	"errors"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 100

// IngredientRepository implements the ingredient repository interface using GORM
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) outbound.IngredientRepository {
	return &IngredientRepository{db: db}
}

// FindAll returns every ingredient ordered by group and name
func (r *IngredientRepository) FindAll(ctx context.Context) ([]pastry.IngredientProfile, error) {
	var models []IngredientModel
	if err := r.db.WithContext(ctx).Order("ingredient_group").Order("name").Find(&models).Error; err != nil {
		return nil, err
	}

	profiles := make([]pastry.IngredientProfile, 0, len(models))
	for i := range models {
		profiles = append(profiles, ModelToIngredient(&models[i]))
	}
	return profiles, nil
}

// FindByID finds an ingredient by ID
func (r *IngredientRepository) FindByID(ctx context.Context, id string) (*pastry.IngredientProfile, error) {
	var model IngredientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pastry.ErrIngredientNotFound
		}
		return nil, err
	}

	p := ModelToIngredient(&model)
	return &p, nil
}

// Count returns the number of stored ingredients
func (r *IngredientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&IngredientModel{}).Count(&count).Error
	return count, err
}

// Upsert inserts profiles or overwrites existing ones with the same ID
func (r *IngredientRepository) Upsert(ctx context.Context, profiles []pastry.IngredientProfile) error {
	return upsertIngredients(r.db.WithContext(ctx), profiles)
}

// ReplaceAll makes the stored table equal to profiles: rows are upserted and
// every row whose ID is absent from profiles is deleted, in one transaction
func (r *IngredientRepository) ReplaceAll(ctx context.Context, profiles []pastry.IngredientProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertIngredients(tx, profiles); err != nil {
			return err
		}

		ids := make([]string, 0, len(profiles))
		for _, p := range profiles {
			ids = append(ids, p.ID)
		}
		stale := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		}
		return stale.Delete(&IngredientModel{}).Error
	})
}

func upsertIngredients(db *gorm.DB, profiles []pastry.IngredientProfile) error {
	if len(profiles) == 0 {
		return nil
	}

	models := make([]*IngredientModel, 0, len(profiles))
	for _, p := range profiles {
		models = append(models, IngredientToModel(p))
	}

	return db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		CreateInBatches(models, upsertBatchSize).Error
}
