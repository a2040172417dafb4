package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind values for InventoryMovement.Kind.
const (
	MovementProduction  = "production"  // finished units baked
	MovementAssembly    = "assembly"    // consumed by / produced from an assembly run
	MovementDisassembly = "disassembly" // returned by breaking assemblies apart
	MovementAdjustment  = "adjustment"  // manual count correction
)

// InventoryMovement is an append-only stock ledger entry. Rows written by
// one produce/disassemble run share an OperationID.
type InventoryMovement struct {
	ID            uint            `gorm:"primaryKey"`
	ComponentType ComponentType   `gorm:"type:varchar(20);not null;index:idx_movements_component,priority:1"`
	ComponentID   uint            `gorm:"not null;index:idx_movements_component,priority:2"`
	Kind          string          `gorm:"size:20;not null;index"`
	Delta         decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Before        decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	After         decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Reason        string          `gorm:"size:255"`
	OperationID   uuid.UUID       `gorm:"type:varchar(36);not null;index"`
	CreatedAt     time.Time       `gorm:"index"`
}

func (InventoryMovement) TableName() string { return "inventory_movements" }

// Component returns the ref the movement was recorded against.
func (m *InventoryMovement) Component() ComponentRef {
	ref, _ := NewComponentRef(m.ComponentType, m.ComponentID)
	return ref
}
