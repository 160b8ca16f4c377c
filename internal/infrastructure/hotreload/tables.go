package hotreload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/jsonfile"
	"go.uber.org/zap"
)

// CatalogImporter receives reloaded tables
type CatalogImporter interface {
	ImportIngredients(ctx context.Context, profiles []pastry.IngredientProfile) (int64, error)
	ImportCategories(ctx context.Context, categories []pastry.RecipeCategory) (int64, error)
}

// TableWatcher reloads one JSON table file into the catalog. A file that
// fails to parse leaves the current catalog version in place.
type TableWatcher struct {
	path   string
	name   string
	load   func(ctx context.Context, raw []byte) (int64, error)
	logger *zap.Logger
}

// NewIngredientsWatcher reloads the ingredient table at path
func NewIngredientsWatcher(path string, catalog CatalogImporter, logger *zap.Logger) (*TableWatcher, error) {
	return newTableWatcher(path, "ingredients", logger, func(ctx context.Context, raw []byte) (int64, error) {
		profiles, err := jsonfile.ParseIngredients(raw)
		if err != nil {
			return 0, err
		}
		return catalog.ImportIngredients(ctx, profiles)
	})
}

// NewCategoriesWatcher reloads the category table at path
func NewCategoriesWatcher(path string, catalog CatalogImporter, logger *zap.Logger) (*TableWatcher, error) {
	return newTableWatcher(path, "categories", logger, func(ctx context.Context, raw []byte) (int64, error) {
		categories, err := jsonfile.ParseCategories(raw)
		if err != nil {
			return 0, err
		}
		return catalog.ImportCategories(ctx, categories)
	})
}

func newTableWatcher(
	path, name string,
	logger *zap.Logger,
	load func(ctx context.Context, raw []byte) (int64, error),
) (*TableWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableWatcher{path: abs, name: name, load: load, logger: logger}, nil
}

// Path returns the absolute path of the watched table
func (w *TableWatcher) Path() string {
	return w.path
}

// ShouldHandle reports whether path is the watched table
func (w *TableWatcher) ShouldHandle(path string) bool {
	return filepath.Clean(path) == w.path
}

// HandleChange reads and imports the table
func (w *TableWatcher) HandleChange(ctx context.Context, event FileChangeEvent) error {
	raw, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", w.name, err)
	}

	version, err := w.load(ctx, raw)
	if err != nil {
		return fmt.Errorf("reload %s: %w", w.name, err)
	}

	w.logger.Info("Reloaded table",
		zap.String("table", w.name),
		zap.String("path", w.path),
		zap.Int64("version", version),
	)
	return nil
}

// Description names the handler in logs
func (w *TableWatcher) Description() string {
	return w.name + " table " + w.path
}
