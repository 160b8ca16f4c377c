package pastry

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// fingerprint hashes entries in id order so that equal contents give equal
// digests in every process
func fingerprint[T any](ids []string, entry func(id string) T) string {
	sort.Strings(ids)
	digest := xxhash.New()
	for _, id := range ids {
		data, err := json.Marshal(entry(id))
		if err != nil {
			// NaN or Inf values
			data = []byte(err.Error())
		}
		_, _ = digest.WriteString(id)
		_, _ = digest.Write([]byte{0})
		_, _ = digest.Write(data)
		_, _ = digest.Write([]byte{'\n'})
	}
	return strconv.FormatUint(digest.Sum64(), 16)
}

// IngredientLookup resolves ingredient profiles by id.
type IngredientLookup interface {
	Ingredient(id string) (IngredientProfile, bool)
}

// IngredientTable is an immutable, versioned snapshot of ingredient profiles.
type IngredientTable struct {
	version     int64
	fingerprint string
	profiles    map[string]IngredientProfile
}

// NewIngredientTable builds a table from profiles. Later duplicates win.
func NewIngredientTable(version int64, profiles []IngredientProfile) *IngredientTable {
	m := make(map[string]IngredientProfile, len(profiles))
	for _, p := range profiles {
		m[p.ID] = p
	}
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return &IngredientTable{
		version:     version,
		fingerprint: fingerprint(ids, func(id string) IngredientProfile { return m[id] }),
		profiles:    m,
	}
}

// Version counts reloads within this process; a reload produces a higher version.
func (t *IngredientTable) Version() int64 {
	return t.version
}

// Fingerprint is a digest of the table contents. Unlike Version it is stable
// across processes, so it is safe in shared cache keys.
func (t *IngredientTable) Fingerprint() string {
	return t.fingerprint
}

// Ingredient implements IngredientLookup.
func (t *IngredientTable) Ingredient(id string) (IngredientProfile, bool) {
	p, ok := t.profiles[id]
	return p, ok
}

// Len returns the number of profiles.
func (t *IngredientTable) Len() int {
	return len(t.profiles)
}

// All returns the profiles sorted by group then name.
func (t *IngredientTable) All() []IngredientProfile {
	out := make([]IngredientProfile, 0, len(t.profiles))
	for _, p := range t.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// IngredientMap is a plain map lookup, convenient in tests and tools.
type IngredientMap map[string]IngredientProfile

// Ingredient implements IngredientLookup.
func (m IngredientMap) Ingredient(id string) (IngredientProfile, bool) {
	p, ok := m[id]
	return p, ok
}

// NewIngredientMap indexes profiles by id.
func NewIngredientMap(profiles ...IngredientProfile) IngredientMap {
	m := make(IngredientMap, len(profiles))
	for _, p := range profiles {
		m[p.ID] = p
	}
	return m
}

// CategoryTable is an immutable, versioned snapshot of recipe categories.
type CategoryTable struct {
	version     int64
	fingerprint string
	categories  map[string]RecipeCategory
}

// NewCategoryTable builds a category snapshot.
func NewCategoryTable(version int64, categories []RecipeCategory) *CategoryTable {
	m := make(map[string]RecipeCategory, len(categories))
	for _, c := range categories {
		m[c.ID] = c
	}
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return &CategoryTable{
		version:     version,
		fingerprint: fingerprint(ids, func(id string) RecipeCategory { return m[id] }),
		categories:  m,
	}
}

// Version counts reloads within this process.
func (t *CategoryTable) Version() int64 {
	return t.version
}

// Fingerprint is a digest of the category contents.
func (t *CategoryTable) Fingerprint() string {
	return t.fingerprint
}

// Len returns the number of categories.
func (t *CategoryTable) Len() int {
	return len(t.categories)
}

// Category returns the category with the given id, or nil.
func (t *CategoryTable) Category(id string) *RecipeCategory {
	c, ok := t.categories[id]
	if !ok {
		return nil
	}
	return &c
}

// All returns the categories sorted by name.
func (t *CategoryTable) All() []RecipeCategory {
	out := make([]RecipeCategory, 0, len(t.categories))
	for _, c := range t.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
