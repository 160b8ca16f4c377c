// Package catalog holds the current ingredient and category snapshots that
// every analysis reads from. Snapshots are immutable; a reload swaps in a
// new one with a higher version.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	"go.uber.org/zap"
)

// Table names used in logs and metrics
const (
	TableIngredients = "ingredients"
	TableCategories  = "categories"
)

// Source supplies the seed tables
type Source interface {
	LoadIngredients(ctx context.Context) ([]pastry.IngredientProfile, error)
	LoadCategories(ctx context.Context) ([]pastry.RecipeCategory, error)
}

// Observer is notified after every reload attempt
type Observer interface {
	CatalogReloaded(table string, version int64, entries int, err error)
}

// Catalog serves versioned snapshots backed by the repositories
type Catalog struct {
	ingredientRepo outbound.IngredientRepository
	categoryRepo   outbound.CategoryRepository
	observer       Observer
	logger         *zap.Logger

	mu          sync.RWMutex
	ingredients *pastry.IngredientTable
	categories  *pastry.CategoryTable
}

// New creates a catalog with empty snapshots at version 0. observer may be nil.
func New(
	ingredientRepo outbound.IngredientRepository,
	categoryRepo outbound.CategoryRepository,
	observer Observer,
	logger *zap.Logger,
) *Catalog {
	return &Catalog{
		ingredientRepo: ingredientRepo,
		categoryRepo:   categoryRepo,
		observer:       observer,
		logger:         logger.Named("catalog"),
		ingredients:    pastry.NewIngredientTable(0, nil),
		categories:     pastry.NewCategoryTable(0, nil),
	}
}

// Ingredients returns the current ingredient snapshot
func (c *Catalog) Ingredients() *pastry.IngredientTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ingredients
}

// Categories returns the current category snapshot
func (c *Catalog) Categories() *pastry.CategoryTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categories
}

// ReplaceIngredients installs a new ingredient snapshot and returns its version
func (c *Catalog) ReplaceIngredients(profiles []pastry.IngredientProfile) int64 {
	c.mu.Lock()
	table := pastry.NewIngredientTable(c.ingredients.Version()+1, profiles)
	c.ingredients = table
	c.mu.Unlock()

	c.notify(TableIngredients, table.Version(), table.Len(), nil)
	return table.Version()
}

// ReplaceCategories installs a new category snapshot and returns its version
func (c *Catalog) ReplaceCategories(categories []pastry.RecipeCategory) int64 {
	c.mu.Lock()
	table := pastry.NewCategoryTable(c.categories.Version()+1, categories)
	c.categories = table
	c.mu.Unlock()

	c.notify(TableCategories, table.Version(), len(categories), nil)
	return table.Version()
}

// Bootstrap seeds empty repositories from source when seed is set, then
// loads both snapshots from the repositories
func (c *Catalog) Bootstrap(ctx context.Context, source Source, seed bool) error {
	if seed && source != nil {
		if err := c.seed(ctx, source); err != nil {
			return err
		}
	}
	return c.Refresh(ctx)
}

// Refresh reloads both snapshots from the repositories
func (c *Catalog) Refresh(ctx context.Context) error {
	profiles, err := c.ingredientRepo.FindAll(ctx)
	if err != nil {
		c.notify(TableIngredients, 0, 0, err)
		return fmt.Errorf("load ingredients: %w", err)
	}
	categories, err := c.categoryRepo.FindAll(ctx)
	if err != nil {
		c.notify(TableCategories, 0, 0, err)
		return fmt.Errorf("load categories: %w", err)
	}

	iv := c.ReplaceIngredients(profiles)
	cv := c.ReplaceCategories(categories)

	c.logger.Info("Catalog loaded",
		zap.Int("ingredients", len(profiles)),
		zap.Int64("ingredients_version", iv),
		zap.Int("categories", len(categories)),
		zap.Int64("categories_version", cv),
	)
	return nil
}

// ErrEmptyImport rejects a reload that would empty a table
var ErrEmptyImport = errors.New("refusing to replace table with no entries")

// ImportIngredients makes profiles the full ingredient table, removing
// entries that are no longer listed, and reloads the snapshot
func (c *Catalog) ImportIngredients(ctx context.Context, profiles []pastry.IngredientProfile) (int64, error) {
	if len(profiles) == 0 {
		c.notify(TableIngredients, 0, 0, ErrEmptyImport)
		return 0, ErrEmptyImport
	}
	if err := c.ingredientRepo.ReplaceAll(ctx, profiles); err != nil {
		c.notify(TableIngredients, 0, 0, err)
		return 0, fmt.Errorf("store ingredients: %w", err)
	}
	all, err := c.ingredientRepo.FindAll(ctx)
	if err != nil {
		c.notify(TableIngredients, 0, 0, err)
		return 0, fmt.Errorf("load ingredients: %w", err)
	}
	return c.ReplaceIngredients(all), nil
}

// ImportCategories makes categories the full category table and reloads
// the snapshot
func (c *Catalog) ImportCategories(ctx context.Context, categories []pastry.RecipeCategory) (int64, error) {
	if len(categories) == 0 {
		c.notify(TableCategories, 0, 0, ErrEmptyImport)
		return 0, ErrEmptyImport
	}
	if err := c.categoryRepo.ReplaceAll(ctx, categories); err != nil {
		c.notify(TableCategories, 0, 0, err)
		return 0, fmt.Errorf("store categories: %w", err)
	}
	all, err := c.categoryRepo.FindAll(ctx)
	if err != nil {
		c.notify(TableCategories, 0, 0, err)
		return 0, fmt.Errorf("load categories: %w", err)
	}
	return c.ReplaceCategories(all), nil
}

func (c *Catalog) seed(ctx context.Context, source Source) error {
	n, err := c.ingredientRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count ingredients: %w", err)
	}
	if n == 0 {
		profiles, err := source.LoadIngredients(ctx)
		if err != nil {
			return fmt.Errorf("load seed ingredients: %w", err)
		}
		if err := c.ingredientRepo.Upsert(ctx, profiles); err != nil {
			return fmt.Errorf("seed ingredients: %w", err)
		}
		c.logger.Info("Seeded ingredients", zap.Int("count", len(profiles)))
	}

	n, err = c.categoryRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n == 0 {
		categories, err := source.LoadCategories(ctx)
		if err != nil {
			return fmt.Errorf("load seed categories: %w", err)
		}
		if err := c.categoryRepo.Upsert(ctx, categories); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		c.logger.Info("Seeded categories", zap.Int("count", len(categories)))
	}
	return nil
}

func (c *Catalog) notify(table string, version int64, entries int, err error) {
	if err != nil {
		c.logger.Error("Catalog reload failed", zap.String("table", table), zap.Error(err))
	}
	if c.observer != nil {
		c.observer.CatalogReloaded(table, version, entries, err)
	}
}
