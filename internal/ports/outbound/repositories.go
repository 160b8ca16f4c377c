// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
)

// ErrCacheMiss is returned by CacheRepository.Get when a key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// IngredientRepository defines the interface for ingredient profile persistence
type IngredientRepository interface {
	FindAll(ctx context.Context) ([]pastry.IngredientProfile, error)
	FindByID(ctx context.Context, id string) (*pastry.IngredientProfile, error)
	Count(ctx context.Context) (int64, error)

	// Bulk import, used by seeding
	Upsert(ctx context.Context, profiles []pastry.IngredientProfile) error
	// Full table replacement, used by hot reload; ids not in profiles are removed
	ReplaceAll(ctx context.Context, profiles []pastry.IngredientProfile) error
}

// CategoryRepository defines the interface for recipe category persistence
type CategoryRepository interface {
	FindAll(ctx context.Context) ([]pastry.RecipeCategory, error)
	FindByID(ctx context.Context, id string) (*pastry.RecipeCategory, error)
	Count(ctx context.Context) (int64, error)
	Upsert(ctx context.Context, categories []pastry.RecipeCategory) error
	ReplaceAll(ctx context.Context, categories []pastry.RecipeCategory) error
}

// RecipeRepository defines the interface for recipe persistence
// This follows the Repository pattern for data access abstraction
type RecipeRepository interface {
	Create(ctx context.Context, recipe *pastry.Recipe) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*pastry.Recipe, error)
	List(ctx context.Context, criteria ListCriteria) ([]*pastry.Recipe, int, error)

	// Optimistic locking: fails with pastry.ErrVersionConflict when the stored
	// version differs from expectedVersion. The recipe version is bumped on success.
	UpdateWithVersion(ctx context.Context, recipe *pastry.Recipe, expectedVersion int64) error
}

// ListCriteria filters recipe listings
type ListCriteria struct {
	CategoryID string
	Status     pastry.RecipeStatus
	Query      string
	Offset     int
	Limit      int
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageService defines the interface for file storage
type StorageService interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
