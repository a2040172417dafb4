package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateSupplierRequest struct {
	Name  string  `json:"name"  validate:"required,max=150"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
	City  *string `json:"city"`
	Notes *string `json:"notes"`
}

type CreateIngredientRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=200"`
	Category    string `json:"category"`
	DefaultUnit string `json:"default_unit"`
}

type CreateProductRequest struct {
	IngredientID        uint            `json:"ingredient_id"         validate:"required"`
	Brand               string          `json:"brand"                 validate:"required,max=120"`
	PackageSize         decimal.Decimal `json:"package_size"          validate:"required,gt=0"`
	PackageUnit         string          `json:"package_unit"          validate:"required"`
	PreferredSupplierID *uint           `json:"preferred_supplier_id"`
}

type RecordPurchaseRequest struct {
	ProductID       uint            `json:"product_id"       validate:"required"`
	SupplierID      *uint           `json:"supplier_id"`
	PurchasedAt     *time.Time      `json:"purchased_at"`
	PackageQuantity decimal.Decimal `json:"package_quantity" validate:"required,gt=0"`
	UnitPrice       decimal.Decimal `json:"unit_price"       validate:"min=0"`
	Notes           *string         `json:"notes"`
}

type ConsumeIngredientRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SupplierResponse struct {
	ID     uint    `json:"id"`
	Name   string  `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
	City   *string `json:"city"`
	Notes  *string `json:"notes"`
	Active bool    `json:"active"`
}

type IngredientResponse struct {
	ID          uint   `json:"id"`
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	DefaultUnit string `json:"default_unit"`
}

type ProductResponse struct {
	ID                  uint            `json:"id"`
	IngredientID        uint            `json:"ingredient_id"`
	Brand               string          `json:"brand"`
	PackageSize         decimal.Decimal `json:"package_size"`
	PackageUnit         string          `json:"package_unit"`
	PreferredSupplierID *uint           `json:"preferred_supplier_id"`
	OnHand              decimal.Decimal `json:"on_hand"`
}

type PurchaseResponse struct {
	ID              uint            `json:"id"`
	ProductID       uint            `json:"product_id"`
	SupplierID      *uint           `json:"supplier_id"`
	PurchasedAt     time.Time       `json:"purchased_at"`
	PackageQuantity decimal.Decimal `json:"package_quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	InventoryItemID uint            `json:"inventory_item_id"`
}

type LotConsumption struct {
	InventoryItemID uint            `json:"inventory_item_id"`
	ProductID       uint            `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Cost            decimal.Decimal `json:"cost"`
}

type ConsumptionResult struct {
	IngredientID uint             `json:"ingredient_id"`
	Quantity     decimal.Decimal  `json:"quantity"`
	TotalCost    decimal.Decimal  `json:"total_cost"`
	Lots         []LotConsumption `json:"lots"`
}

// Price trend directions.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

type PricePoint struct {
	PurchaseID  uint            `json:"purchase_id"`
	PurchasedAt time.Time       `json:"purchased_at"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type PriceTrendResponse struct {
	ProductID     uint            `json:"product_id"`
	History       []PricePoint    `json:"history"`
	MinPrice      decimal.Decimal `json:"min_price"`
	MaxPrice      decimal.Decimal `json:"max_price"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	LatestPrice   decimal.Decimal `json:"latest_price"`
	PercentChange decimal.Decimal `json:"percent_change"`
	Direction     string          `json:"direction"`
}
