// Package jsonfile reads and writes the JSON documents used to exchange
// ingredient tables, category tables and single recipes
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
)

// timeLayouts are tried in order when reading recipe timestamps. Files
// written by older tools carry local ISO timestamps without a zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// recipeDocument is the on-disk recipe shape
type recipeDocument struct {
	Name       string              `json:"name"`
	CategoryID string              `json:"category_id"`
	Status     string              `json:"status"`
	Author     string              `json:"author"`
	Origin     string              `json:"origin"`
	Notes      string              `json:"notes"`
	Items      []pastry.RecipeItem `json:"items"`
	CreatedAt  string              `json:"created_at"`
	UpdatedAt  string              `json:"updated_at"`
}

// LoadIngredients reads an ingredient table file and indexes it by id
func LoadIngredients(path string) (map[string]pastry.IngredientProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ingredients %s: %w", path, err)
	}
	profiles, err := ParseIngredients(raw)
	if err != nil {
		return nil, fmt.Errorf("parse ingredients %s: %w", path, err)
	}
	return indexIngredients(profiles), nil
}

// ParseIngredients decodes a JSON array of ingredient profiles. Unknown
// fields are ignored and missing numbers read as zero.
func ParseIngredients(raw []byte) ([]pastry.IngredientProfile, error) {
	var profiles []pastry.IngredientProfile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, err
	}
	for i, p := range profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("ingredient at index %d has no id", i)
		}
	}
	return profiles, nil
}

// SaveIngredients writes the table as a JSON array ordered by group and name
func SaveIngredients(ingredients map[string]pastry.IngredientProfile, path string) error {
	profiles := make([]pastry.IngredientProfile, 0, len(ingredients))
	for _, p := range ingredients {
		profiles = append(profiles, p)
	}
	return writeJSON(path, pastry.NewIngredientTable(0, profiles).All())
}

// LoadCategories reads a category table file and indexes it by id
func LoadCategories(path string) (map[string]pastry.RecipeCategory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories %s: %w", path, err)
	}
	categories, err := ParseCategories(raw)
	if err != nil {
		return nil, fmt.Errorf("parse categories %s: %w", path, err)
	}
	out := make(map[string]pastry.RecipeCategory, len(categories))
	for _, c := range categories {
		out[c.ID] = c
	}
	return out, nil
}

// ParseCategories decodes a JSON array of categories. Null or absent
// ranges stay nil.
func ParseCategories(raw []byte) ([]pastry.RecipeCategory, error) {
	var categories []pastry.RecipeCategory
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, err
	}
	for i, c := range categories {
		if c.ID == "" {
			return nil, fmt.Errorf("category at index %d has no id", i)
		}
	}
	return categories, nil
}

// LoadRecipe reads a single recipe document
func LoadRecipe(path string) (*pastry.Recipe, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe %s: %w", path, err)
	}
	recipe, err := ParseRecipe(raw)
	if err != nil {
		return nil, fmt.Errorf("parse recipe %s: %w", path, err)
	}
	return recipe, nil
}

// ParseRecipe decodes a recipe document, filling the defaults for absent
// name, status and timestamps
func ParseRecipe(raw []byte) (*pastry.Recipe, error) {
	var doc recipeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	recipe := pastry.NewRecipe(doc.Name)
	recipe.CategoryID = doc.CategoryID
	if doc.Status != "" {
		recipe.Status = pastry.RecipeStatus(doc.Status)
	}
	recipe.Author = doc.Author
	recipe.Origin = doc.Origin
	recipe.Notes = doc.Notes
	if doc.Items != nil {
		recipe.Items = doc.Items
	}

	if t, ok := parseTime(doc.CreatedAt); ok {
		recipe.CreatedAt = t
	}
	if t, ok := parseTime(doc.UpdatedAt); ok {
		recipe.UpdatedAt = t
	}
	return recipe, nil
}

// SaveRecipe writes a recipe document, creating parent directories
func SaveRecipe(recipe *pastry.Recipe, path string) error {
	doc := recipeDocument{
		Name:       recipe.Name,
		CategoryID: recipe.CategoryID,
		Status:     string(recipe.Status),
		Author:     recipe.Author,
		Origin:     recipe.Origin,
		Notes:      recipe.Notes,
		Items:      recipe.Items,
		CreatedAt:  recipe.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  recipe.UpdatedAt.Format(time.RFC3339),
	}
	if doc.Items == nil {
		doc.Items = []pastry.RecipeItem{}
	}
	return writeJSON(path, doc)
}

func parseTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func indexIngredients(profiles []pastry.IngredientProfile) map[string]pastry.IngredientProfile {
	out := make(map[string]pastry.IngredientProfile, len(profiles))
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out
}

// writeJSON keeps non-ASCII text readable and indents by two spaces
func writeJSON(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
