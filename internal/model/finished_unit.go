package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// YieldMode describes how a recipe batch turns into finished units.
type YieldMode string

const (
	// YieldDiscreteCount: each unit is an individual item (cookies, muffins).
	// Producing these also maintains a BARE wrapper assembly.
	YieldDiscreteCount YieldMode = "discrete_count"
	// YieldBatchPortion: the batch is portioned (a cake, a tray bake).
	YieldBatchPortion YieldMode = "batch_portion"
)

// FinishedUnit is a terminal produced good. It never contains components.
type FinishedUnit struct {
	ID             uint            `gorm:"primaryKey"`
	Slug           string          `gorm:"size:100;uniqueIndex;not null"`
	DisplayName    string          `gorm:"size:200;index;not null"`
	RecipeID       *uint           `gorm:"index"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`
	InventoryCount int             `gorm:"not null;default:0;check:chk_finished_units_inventory,inventory_count >= 0"`
	MinimumStock   int             `gorm:"not null;default:0"`
	YieldMode      YieldMode       `gorm:"type:varchar(20);not null;default:'discrete_count'"`
	ItemsPerBatch  int             `gorm:"not null;default:1"`
	ItemUnit       string          `gorm:"size:30;not null;default:'piece'"`
	Category       string          `gorm:"size:60;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:SET NULL"`
}

func (FinishedUnit) TableName() string { return "finished_units" }

// MaterialUnit is a terminal packaging component (box, ribbon length, tissue).
// Its inventory is fractional: half a metre of ribbon is a valid quantity.
type MaterialUnit struct {
	ID                uint            `gorm:"primaryKey"`
	Slug              string          `gorm:"size:100;uniqueIndex;not null"`
	DisplayName       string          `gorm:"size:200;index;not null"`
	MaterialProductID *uint           `gorm:"index"`
	Unit              string          `gorm:"size:30;not null;default:'each'"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`
	InventoryCount    decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0;check:chk_material_units_inventory,inventory_count >= 0"`
	MinimumStock      decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	MaterialProduct *Product `gorm:"foreignKey:MaterialProductID;constraint:OnDelete:SET NULL"`
}

func (MaterialUnit) TableName() string { return "material_units" }
