// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"time"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockRecipeRepository provides a mock implementation of RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

// Create stores a new recipe
func (m *MockRecipeRepository) Create(ctx context.Context, r *pastry.Recipe) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// Delete deletes a recipe
func (m *MockRecipeRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// FindByID finds a recipe by ID
func (m *MockRecipeRepository) FindByID(ctx context.Context, id string) (*pastry.Recipe, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*pastry.Recipe); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// List lists recipes matching criteria
func (m *MockRecipeRepository) List(ctx context.Context, criteria outbound.ListCriteria) ([]*pastry.Recipe, int, error) {
	args := m.Called(ctx, criteria)
	recipes, _ := args.Get(0).([]*pastry.Recipe)
	return recipes, args.Int(1), args.Error(2)
}

// UpdateWithVersion updates a recipe with optimistic locking
func (m *MockRecipeRepository) UpdateWithVersion(ctx context.Context, r *pastry.Recipe, expectedVersion int64) error {
	args := m.Called(ctx, r, expectedVersion)
	return args.Error(0)
}

// MockIngredientRepository provides a mock implementation of IngredientRepository
type MockIngredientRepository struct {
	mock.Mock
}

// FindAll returns all ingredient profiles
func (m *MockIngredientRepository) FindAll(ctx context.Context) ([]pastry.IngredientProfile, error) {
	args := m.Called(ctx)
	profiles, _ := args.Get(0).([]pastry.IngredientProfile)
	return profiles, args.Error(1)
}

// FindByID finds an ingredient profile by ID
func (m *MockIngredientRepository) FindByID(ctx context.Context, id string) (*pastry.IngredientProfile, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*pastry.IngredientProfile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// Count counts stored profiles
func (m *MockIngredientRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Upsert imports profiles
func (m *MockIngredientRepository) Upsert(ctx context.Context, profiles []pastry.IngredientProfile) error {
	args := m.Called(ctx, profiles)
	return args.Error(0)
}

// ReplaceAll replaces the stored profiles
func (m *MockIngredientRepository) ReplaceAll(ctx context.Context, profiles []pastry.IngredientProfile) error {
	args := m.Called(ctx, profiles)
	return args.Error(0)
}

// MockCategoryRepository provides a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

// FindAll returns all categories
func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]pastry.RecipeCategory, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]pastry.RecipeCategory)
	return categories, args.Error(1)
}

// FindByID finds a category by ID
func (m *MockCategoryRepository) FindByID(ctx context.Context, id string) (*pastry.RecipeCategory, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*pastry.RecipeCategory); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// Count counts stored categories
func (m *MockCategoryRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Upsert imports categories
func (m *MockCategoryRepository) Upsert(ctx context.Context, categories []pastry.RecipeCategory) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}

// ReplaceAll replaces the stored categories
func (m *MockCategoryRepository) ReplaceAll(ctx context.Context, categories []pastry.RecipeCategory) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}

// MockCacheRepository provides a mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

// Get retrieves a value from cache
func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	value, _ := args.Get(0).([]byte)
	return value, args.Error(1)
}

// Set stores a value in cache
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Delete removes a value from cache
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Exists checks if a key exists in cache
func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockStorageService provides a mock implementation of StorageService
type MockStorageService struct {
	mock.Mock
}

// Upload uploads data and returns its location
func (m *MockStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

var (
	_ outbound.RecipeRepository     = (*MockRecipeRepository)(nil)
	_ outbound.IngredientRepository = (*MockIngredientRepository)(nil)
	_ outbound.CategoryRepository   = (*MockCategoryRepository)(nil)
	_ outbound.CacheRepository      = (*MockCacheRepository)(nil)
	_ outbound.StorageService       = (*MockStorageService)(nil)
)
