package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase records buying PackageQuantity packages of a product at UnitPrice
// each. The purchase history of a product doubles as its price history.
type Purchase struct {
	ID              uint            `gorm:"primaryKey"`
	ProductID       uint            `gorm:"not null;index:idx_purchases_product_date,priority:1"`
	SupplierID      *uint           `gorm:"index"`
	PurchasedAt     time.Time       `gorm:"not null;index:idx_purchases_product_date,priority:2"`
	PackageQuantity decimal.Decimal `gorm:"type:decimal(12,4);not null;check:chk_purchases_quantity,package_quantity > 0"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,4);not null;check:chk_purchases_price,unit_price >= 0"`
	Notes           *string
	CreatedAt       time.Time

	Product  *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID;constraint:OnDelete:SET NULL"`
}

func (Purchase) TableName() string { return "purchases" }

// InventoryItem is one FIFO lot of a product on the shelf, in the product's
// package unit. Lots are consumed oldest AcquiredAt first.
type InventoryItem struct {
	ID                uint            `gorm:"primaryKey"`
	ProductID         uint            `gorm:"not null;index:idx_inventory_items_fifo,priority:1"`
	PurchaseID        *uint           `gorm:"index"`
	QuantityRemaining decimal.Decimal `gorm:"type:decimal(12,4);not null;check:chk_inventory_items_remaining,quantity_remaining >= 0"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`
	AcquiredAt        time.Time       `gorm:"not null;index:idx_inventory_items_fifo,priority:2"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Product  *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Purchase *Purchase `gorm:"foreignKey:PurchaseID;constraint:OnDelete:SET NULL"`
}

func (InventoryItem) TableName() string { return "inventory_items" }
