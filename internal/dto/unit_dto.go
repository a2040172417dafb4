package dto

import (
	"time"

	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateFinishedUnitRequest struct {
	DisplayName    string          `json:"display_name"    validate:"required,max=200"`
	RecipeID       *uint           `json:"recipe_id"`
	UnitCost       decimal.Decimal `json:"unit_cost"       validate:"min=0"`
	InventoryCount int             `json:"inventory_count" validate:"min=0"`
	MinimumStock   int             `json:"minimum_stock"   validate:"min=0"`
	YieldMode      string          `json:"yield_mode"      validate:"omitempty,oneof=discrete_count batch_portion"`
	ItemsPerBatch  int             `json:"items_per_batch" validate:"omitempty,min=1"`
	ItemUnit       string          `json:"item_unit"`
	Category       string          `json:"category"`
}

type CreateMaterialUnitRequest struct {
	DisplayName       string          `json:"display_name"        validate:"required,max=200"`
	MaterialProductID *uint           `json:"material_product_id"`
	Unit              string          `json:"unit"`
	UnitCost          decimal.Decimal `json:"unit_cost"           validate:"min=0"`
	InventoryCount    decimal.Decimal `json:"inventory_count"     validate:"min=0"`
	MinimumStock      decimal.Decimal `json:"minimum_stock"       validate:"min=0"`
}

type UpdateUnitCostRequest struct {
	UnitCost decimal.Decimal `json:"unit_cost" validate:"min=0"`
}

// AdjustInventoryRequest is a manual count correction; Delta may be negative.
type AdjustInventoryRequest struct {
	Delta  decimal.Decimal `json:"delta"  validate:"required"`
	Reason string          `json:"reason" validate:"required,max=255"`
}

type RecordProductionRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type UnitFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	LowStock bool   `form:"low_stock"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type MovementFilter struct {
	ComponentType string `form:"component_type"`
	ComponentID   uint   `form:"component_id"`
	Kind          string `form:"kind"`
	OperationID   string `form:"operation_id"`
	Page          int    `form:"page,default=1"`
	Limit         int    `form:"limit,default=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FinishedUnitResponse struct {
	ID             uint            `json:"id"`
	Slug           string          `json:"slug"`
	DisplayName    string          `json:"display_name"`
	RecipeID       *uint           `json:"recipe_id"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	InventoryCount int             `json:"inventory_count"`
	MinimumStock   int             `json:"minimum_stock"`
	YieldMode      model.YieldMode `json:"yield_mode"`
	ItemsPerBatch  int             `json:"items_per_batch"`
	ItemUnit       string          `json:"item_unit"`
	Category       string          `json:"category"`
	LowStock       bool            `json:"low_stock"`
}

type MaterialUnitResponse struct {
	ID                uint            `json:"id"`
	Slug              string          `json:"slug"`
	DisplayName       string          `json:"display_name"`
	MaterialProductID *uint           `json:"material_product_id"`
	Unit              string          `json:"unit"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	InventoryCount    decimal.Decimal `json:"inventory_count"`
	MinimumStock      decimal.Decimal `json:"minimum_stock"`
	LowStock          bool            `json:"low_stock"`
}

type ProductionResult struct {
	FinishedUnit   FinishedUnitResponse `json:"finished_unit"`
	BareAssemblyID *uint                `json:"bare_assembly_id"`
	OperationID    string               `json:"operation_id"`
}

type MovementResponse struct {
	ID            uint                `json:"id"`
	ComponentType model.ComponentType `json:"component_type"`
	ComponentID   uint                `json:"component_id"`
	Kind          string              `json:"kind"`
	Delta         decimal.Decimal     `json:"delta"`
	Before        decimal.Decimal     `json:"before"`
	After         decimal.Decimal     `json:"after"`
	Reason        string              `json:"reason"`
	OperationID   string              `json:"operation_id"`
	CreatedAt     time.Time           `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// StockAlert is the payload of a stock_alert job.
type StockAlert struct {
	ComponentType model.ComponentType `json:"component_type"`
	ComponentID   uint                `json:"component_id"`
	DisplayName   string              `json:"display_name"`
	OnHand        decimal.Decimal     `json:"on_hand"`
	MinimumStock  decimal.Decimal     `json:"minimum_stock"`
}
