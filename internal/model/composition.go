package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Composition is one edge of the bill-of-materials graph: the assembly
// AssemblyID contains ComponentQuantity of exactly one component. Which
// component column is populated is enforced by a CHECK constraint; in Go
// code use Component() / SetComponent() rather than the raw columns.
//
// Edges are owned by the parent assembly and cascade with it. References to
// the component are restrictive: a component still used by an edge cannot
// be deleted from under it.
type Composition struct {
	ID         uint `gorm:"primaryKey"`
	AssemblyID uint `gorm:"not null;uniqueIndex:idx_compositions_assembly_fu,priority:1;uniqueIndex:idx_compositions_assembly_mu,priority:1;uniqueIndex:idx_compositions_assembly_fg,priority:1;check:chk_compositions_not_self,assembly_id <> finished_good_id"`

	FinishedUnitID *uint `gorm:"uniqueIndex:idx_compositions_assembly_fu,priority:2;index;check:chk_compositions_single_component,(CASE WHEN finished_unit_id IS NULL THEN 0 ELSE 1 END) + (CASE WHEN material_unit_id IS NULL THEN 0 ELSE 1 END) + (CASE WHEN finished_good_id IS NULL THEN 0 ELSE 1 END) = 1"`
	MaterialUnitID *uint `gorm:"uniqueIndex:idx_compositions_assembly_mu,priority:2;index"`
	FinishedGoodID *uint `gorm:"uniqueIndex:idx_compositions_assembly_fg,priority:2;index"`

	// Whole numbers for finished units and finished goods, fractional for materials.
	ComponentQuantity decimal.Decimal `gorm:"type:decimal(12,4);not null;check:chk_compositions_positive_quantity,component_quantity > 0"`
	Notes             *string
	SortOrder         int `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Assembly     *FinishedGood `gorm:"foreignKey:AssemblyID;constraint:OnDelete:CASCADE"`
	FinishedUnit *FinishedUnit `gorm:"foreignKey:FinishedUnitID;constraint:OnDelete:RESTRICT"`
	MaterialUnit *MaterialUnit `gorm:"foreignKey:MaterialUnitID;constraint:OnDelete:RESTRICT"`
	FinishedGood *FinishedGood `gorm:"foreignKey:FinishedGoodID;constraint:OnDelete:RESTRICT"`
}

func (Composition) TableName() string { return "compositions" }

// Component returns the tagged reference stored on this row. A row that
// violates the single-component rule yields the zero ref.
func (c *Composition) Component() ComponentRef {
	var refs []ComponentRef
	if c.FinishedUnitID != nil {
		refs = append(refs, FinishedUnitRef(*c.FinishedUnitID))
	}
	if c.MaterialUnitID != nil {
		refs = append(refs, MaterialUnitRef(*c.MaterialUnitID))
	}
	if c.FinishedGoodID != nil {
		refs = append(refs, FinishedGoodRef(*c.FinishedGoodID))
	}
	if len(refs) != 1 {
		return ComponentRef{}
	}
	return refs[0]
}

// SetComponent clears all component columns and populates the one for ref.
func (c *Composition) SetComponent(ref ComponentRef) {
	c.FinishedUnitID, c.MaterialUnitID, c.FinishedGoodID = nil, nil, nil
	id := ref.ID()
	switch ref.Type() {
	case ComponentFinishedUnit:
		c.FinishedUnitID = &id
	case ComponentMaterialUnit:
		c.MaterialUnitID = &id
	case ComponentFinishedGood:
		c.FinishedGoodID = &id
	}
}

// DisplayName resolves the name of the preloaded component, if any.
func (c *Composition) DisplayName() string {
	switch {
	case c.FinishedUnit != nil:
		return c.FinishedUnit.DisplayName
	case c.MaterialUnit != nil:
		return c.MaterialUnit.DisplayName
	case c.FinishedGood != nil:
		return c.FinishedGood.DisplayName
	}
	return ""
}
