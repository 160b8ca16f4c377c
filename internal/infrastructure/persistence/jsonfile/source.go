package jsonfile

import (
	"context"
	"errors"
	"os"

	"github.com/alchemorsel/patisserie/data"
	"github.com/alchemorsel/patisserie/internal/domain/pastry"
)

// Source reads the ingredient and category tables from disk. A table whose
// file does not exist falls back to the built-in copy.
type Source struct {
	IngredientsPath string
	CategoriesPath  string
}

// LoadIngredients reads the ingredient table
func (s Source) LoadIngredients(ctx context.Context) ([]pastry.IngredientProfile, error) {
	raw, err := readOr(s.IngredientsPath, data.Ingredients)
	if err != nil {
		return nil, err
	}
	return ParseIngredients(raw)
}

// LoadCategories reads the category table
func (s Source) LoadCategories(ctx context.Context) ([]pastry.RecipeCategory, error) {
	raw, err := readOr(s.CategoriesPath, data.Categories)
	if err != nil {
		return nil, err
	}
	return ParseCategories(raw)
}

func readOr(path string, builtin []byte) ([]byte, error) {
	if path == "" {
		return builtin, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return builtin, nil
	}
	return raw, err
}
