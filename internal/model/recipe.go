package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Recipe struct {
	ID            uint            `gorm:"primaryKey"`
	Name          string          `gorm:"size:200;uniqueIndex;not null"`
	Category      string          `gorm:"size:60;index"`
	YieldQuantity decimal.Decimal `gorm:"type:decimal(10,2);not null;default:1"`
	YieldUnit     string          `gorm:"size:30;not null;default:'each'"`
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (Recipe) TableName() string { return "recipes" }

type RecipeIngredient struct {
	ID           uint            `gorm:"primaryKey"`
	RecipeID     uint            `gorm:"not null;uniqueIndex:idx_recipe_ingredient,priority:1"`
	IngredientID uint            `gorm:"not null;uniqueIndex:idx_recipe_ingredient,priority:2"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Unit         string          `gorm:"size:30;not null"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:RESTRICT"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredients" }
