package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient is the generic thing a recipe calls for ("all-purpose flour").
type Ingredient struct {
	ID          uint   `gorm:"primaryKey"`
	Slug        string `gorm:"size:100;uniqueIndex;not null"`
	DisplayName string `gorm:"size:200;not null"`
	Category    string `gorm:"size:60;index"`
	DefaultUnit string `gorm:"size:30;not null;default:'g'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Ingredient) TableName() string { return "ingredients" }

// Product is a purchasable brand/package of an ingredient
// ("King Arthur AP flour, 5 lb bag").
type Product struct {
	ID                  uint            `gorm:"primaryKey"`
	IngredientID        uint            `gorm:"not null;index"`
	Brand               string          `gorm:"size:120;not null"`
	PackageSize         decimal.Decimal `gorm:"type:decimal(12,4);not null;check:chk_products_package_size,package_size > 0"`
	PackageUnit         string          `gorm:"size:30;not null"`
	PreferredSupplierID *uint           `gorm:"index"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Ingredient        *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:RESTRICT"`
	PreferredSupplier *Supplier   `gorm:"foreignKey:PreferredSupplierID;constraint:OnDelete:SET NULL"`
}

func (Product) TableName() string { return "products" }
