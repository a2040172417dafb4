package dto

import (
	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"github.com/shopspring/decimal"
)

// CreateCompositionInput adds one edge to an assembly.
type CreateCompositionInput struct {
	AssemblyID uint
	Component  model.ComponentRef
	Quantity   decimal.Decimal
	Notes      *string
	SortOrder  *int // nil appends after the current last edge
}

type CreateCompositionRequest struct {
	AssemblyID uint `json:"assembly_id" validate:"required"`
	ComponentRequest
}

type CycleCheckRequest struct {
	ParentID uint `json:"parent_id" validate:"required"`
	ChildID  uint `json:"child_id"  validate:"required"`
}

type CycleCheckResponse struct {
	ParentID uint `json:"parent_id"`
	ChildID  uint `json:"child_id"`
	Safe     bool `json:"safe"`
}

// HierarchyNode is one node of GetHierarchy's tree. The root carries
// Level 0 and its direct components Level 1.
type HierarchyNode struct {
	CompositionID     *uint               `json:"composition_id,omitempty"`
	ComponentType     model.ComponentType `json:"component_type"`
	ComponentID       uint                `json:"component_id"`
	DisplayName       string              `json:"display_name"`
	Slug              string              `json:"slug"`
	AssemblyType      model.AssemblyType  `json:"assembly_type,omitempty"`
	Quantity          decimal.Decimal     `json:"quantity"`
	UnitCost          *decimal.Decimal    `json:"unit_cost,omitempty"`
	SortOrder         int                 `json:"sort_order"`
	Level             int                 `json:"level"`
	DepthLimitReached bool                `json:"depth_limit_reached"`
	Subcomponents     []HierarchyNode     `json:"subcomponents"`
}

// FlattenedComponent is one leaf of a flattened bill of materials.
type FlattenedComponent struct {
	ComponentType model.ComponentType `json:"component_type"`
	ComponentID   uint                `json:"component_id"`
	DisplayName   string              `json:"display_name"`
	Slug          string              `json:"slug"`
	TotalQuantity decimal.Decimal     `json:"total_quantity"`
	UnitCost      decimal.Decimal     `json:"unit_cost"`
	TotalCost     decimal.Decimal     `json:"total_cost"`
}

type CostLineItem struct {
	CompositionID uint                `json:"composition_id"`
	ComponentType model.ComponentType `json:"component_type"`
	ComponentID   uint                `json:"component_id"`
	DisplayName   string              `json:"display_name"`
	Quantity      decimal.Decimal     `json:"quantity"`
	UnitCost      decimal.Decimal     `json:"unit_cost"`
	TotalCost     decimal.Decimal     `json:"total_cost"`
}

type CostBreakdown struct {
	AssemblyID        uint            `json:"assembly_id"`
	FinishedUnitCosts []CostLineItem  `json:"finished_unit_costs"`
	MaterialUnitCosts []CostLineItem  `json:"material_unit_costs"`
	FinishedGoodCosts []CostLineItem  `json:"finished_good_costs"`
	TotalLeafCost     decimal.Decimal `json:"total_leaf_cost"`
	TotalSubassembly  decimal.Decimal `json:"total_subassembly_cost"`
	TotalAssemblyCost decimal.Decimal `json:"total_assembly_cost"`
}

// Availability statuses reported by CalculateRequiredInventory.
const (
	StatusAvailable    = "available"
	StatusInsufficient = "insufficient"
)

type LeafRequirement struct {
	ComponentType model.ComponentType `json:"component_type"`
	ComponentID   uint                `json:"component_id"`
	DisplayName   string              `json:"display_name"`
	Required      decimal.Decimal     `json:"required"`
	Available     decimal.Decimal     `json:"available"`
	Shortage      decimal.Decimal     `json:"shortage"`
}

type InventoryRequirements struct {
	AssemblyID               uint              `json:"assembly_id"`
	Quantity                 int               `json:"quantity"`
	AvailabilityStatus       string            `json:"availability_status"`
	FinishedUnitRequirements []LeafRequirement `json:"finished_unit_requirements"`
	MaterialUnitRequirements []LeafRequirement `json:"material_unit_requirements"`
}

// Leaves returns all requirement lines, finished units first.
func (r *InventoryRequirements) Leaves() []LeafRequirement {
	out := make([]LeafRequirement, 0, len(r.FinishedUnitRequirements)+len(r.MaterialUnitRequirements))
	out = append(out, r.FinishedUnitRequirements...)
	return append(out, r.MaterialUnitRequirements...)
}

// BOMSheet is the input of the printable production sheet.
type BOMSheet struct {
	Assembly   AssemblyResponse
	Quantity   int
	Components []FlattenedComponent
	TotalCost  decimal.Decimal
}
