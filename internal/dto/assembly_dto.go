package dto

import (
	"time"

	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Service inputs ──────────────────────────────────────────────────────────

// ComponentSpec is the strongly typed component entry the services accept.
// Handlers build it from ComponentRequest.
type ComponentSpec struct {
	Component model.ComponentRef
	Quantity  decimal.Decimal
	Notes     *string
	SortOrder *int
}

type CreateAssemblyInput struct {
	DisplayName           string
	AssemblyType          model.AssemblyType
	Description           *string
	PackagingInstructions *string
	Notes                 *string
	// nil and empty both mean "no components"; minimum counts are then
	// checked once a full list is supplied through Update.
	Components []ComponentSpec
}

type UpdateAssemblyInput struct {
	DisplayName           *string
	AssemblyType          *model.AssemblyType
	Description           *string
	PackagingInstructions *string
	Notes                 *string
	// nil leaves the component set alone; a non-nil slice (even empty)
	// replaces it.
	Components []ComponentSpec
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ComponentRequest accepts both the current keys (component_type,
// component_id, quantity) and the legacy per-type id keys
// (finished_unit_id / material_unit_id / finished_good_id,
// component_quantity).
type ComponentRequest struct {
	ComponentType string           `json:"component_type"`
	ComponentID   uint             `json:"component_id"`
	Quantity      *decimal.Decimal `json:"quantity"`

	FinishedUnitID    *uint            `json:"finished_unit_id"`
	MaterialUnitID    *uint            `json:"material_unit_id"`
	FinishedGoodID    *uint            `json:"finished_good_id"`
	ComponentQuantity *decimal.Decimal `json:"component_quantity"`

	Notes     *string `json:"notes"`
	SortOrder *int    `json:"sort_order" validate:"omitempty,min=0"`
}

type CreateAssemblyRequest struct {
	DisplayName           string             `json:"display_name"  validate:"required,max=200"`
	AssemblyType          string             `json:"assembly_type"`
	Description           *string            `json:"description"`
	PackagingInstructions *string            `json:"packaging_instructions"`
	Notes                 *string            `json:"notes"`
	Components            []ComponentRequest `json:"components"    validate:"omitempty,max=20,dive"`
}

type UpdateAssemblyRequest struct {
	DisplayName           *string            `json:"display_name"  validate:"omitempty,max=200"`
	AssemblyType          *string            `json:"assembly_type"`
	Description           *string            `json:"description"`
	PackagingInstructions *string            `json:"packaging_instructions"`
	Notes                 *string            `json:"notes"`
	Components            []ComponentRequest `json:"components"    validate:"omitempty,max=20,dive"`
}

type QuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

type ProduceRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type AssemblyFilter struct {
	AssemblyType string `form:"assembly_type"`
	Search       string `form:"search"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CompositionResponse struct {
	ID                uint                `json:"id"`
	AssemblyID        uint                `json:"assembly_id"`
	ComponentType     model.ComponentType `json:"component_type"`
	ComponentID       uint                `json:"component_id"`
	DisplayName       string              `json:"display_name"`
	ComponentQuantity decimal.Decimal     `json:"component_quantity"`
	Notes             *string             `json:"notes"`
	SortOrder         int                 `json:"sort_order"`
}

type AssemblyResponse struct {
	ID                    uint                  `json:"id"`
	Slug                  string                `json:"slug"`
	DisplayName           string                `json:"display_name"`
	AssemblyType          model.AssemblyType    `json:"assembly_type"`
	Description           *string               `json:"description"`
	PackagingInstructions *string               `json:"packaging_instructions"`
	Notes                 *string               `json:"notes"`
	InventoryCount        int                   `json:"inventory_count"`
	Components            []CompositionResponse `json:"components"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

type AssemblyListResponse struct {
	Data  []AssemblyResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type AvailabilityResponse struct {
	AssemblyID   uint                  `json:"assembly_id"`
	Quantity     int                   `json:"quantity"`
	CanProduce   bool                  `json:"can_produce"`
	Requirements InventoryRequirements `json:"requirements"`
}

// ProductionResponse is returned by produce and disassemble.
type ProductionResponse struct {
	AssemblyID     uint   `json:"assembly_id"`
	Quantity       int    `json:"quantity"`
	InventoryCount int    `json:"inventory_count"`
	OperationID    string `json:"operation_id"`
	LeavesAdjusted int    `json:"leaves_adjusted"`
}

// NewCompositionResponse maps an edge row. DisplayName is filled only when
// the component relation was preloaded.
func NewCompositionResponse(c *model.Composition) CompositionResponse {
	ref := c.Component()
	return CompositionResponse{
		ID:                c.ID,
		AssemblyID:        c.AssemblyID,
		ComponentType:     ref.Type(),
		ComponentID:       ref.ID(),
		DisplayName:       c.DisplayName(),
		ComponentQuantity: c.ComponentQuantity,
		Notes:             c.Notes,
		SortOrder:         c.SortOrder,
	}
}
