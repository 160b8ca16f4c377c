// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"gorm.io/gorm"
)

// IngredientModel represents the GORM model for ingredient profiles
type IngredientModel struct {
	ID    string `gorm:"type:varchar(64);primaryKey"`
	Name  string `gorm:"type:varchar(255);not null"`
	Group string `gorm:"column:ingredient_group;type:varchar(100);index"`

	SugarPct       float64
	OilPct         float64
	ButterFatPct   float64
	CocoaButterPct float64
	CocoaPct       float64
	AMPPct         float64 `gorm:"column:amp_pct"`
	LactosePct     float64
	OtherSolidsPct float64
	WaterPct       float64
	AlcoholPct     float64

	POD         float64 `gorm:"column:pod"`
	PAC         float64 `gorm:"column:pac"`
	KcalPer100g float64 `gorm:"column:kcal_per_100g"`
	CostPerKg   float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategoryModel represents the GORM model for recipe categories
type CategoryModel struct {
	ID          string `gorm:"type:varchar(64);primaryKey"`
	Name        string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`

	SugarRange     *RangeField `gorm:"type:json"`
	FatRange       *RangeField `gorm:"type:json"`
	DryMatterRange *RangeField `gorm:"type:json"`
	LiquidRange    *RangeField `gorm:"type:json"`
	PODRange       *RangeField `gorm:"column:pod_range;type:json"`
	PACRange       *RangeField `gorm:"column:pac_range;type:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID         string `gorm:"type:varchar(64);primaryKey"`
	Version    int64  `gorm:"not null;default:1"`
	Name       string `gorm:"type:varchar(255);not null;index"`
	CategoryID string `gorm:"type:varchar(64);index"`
	Status     string `gorm:"type:varchar(20);index"`
	Author     string `gorm:"type:varchar(255)"`
	Origin     string `gorm:"type:varchar(255)"`
	Notes      string `gorm:"type:text"`

	// Items keep their order in a single JSON column
	Items RecipeItems `gorm:"type:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// RangeField stores an optional ideal range as JSON
type RangeField pastry.RangeSpec

// Scan implements the sql.Scanner interface
func (r *RangeField) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("cannot scan %T into RangeField", value)
	}
}

// Value implements the driver.Valuer interface
func (r RangeField) Value() (driver.Value, error) {
	b, err := json.Marshal(pastry.RangeSpec(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// RecipeItems custom type for handling ordered recipe lines in JSON
type RecipeItems []pastry.RecipeItem

// Scan implements the sql.Scanner interface
func (s *RecipeItems) Scan(value interface{}) error {
	if value == nil {
		*s = RecipeItems{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into RecipeItems", value)
	}
}

// Value implements the driver.Valuer interface
func (s RecipeItems) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&IngredientModel{},
		&CategoryModel{},
		&RecipeModel{},
	}
}

func (IngredientModel) TableName() string {
	return "ingredients"
}

func (CategoryModel) TableName() string {
	return "categories"
}

func (RecipeModel) TableName() string {
	return "recipes"
}
