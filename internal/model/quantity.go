package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuantityPlaces is the scale of every decimal(…,4) column. SQLite keeps
// these as REAL, so values are rounded back to this scale on read and in
// any SQL arithmetic.
const QuantityPlaces int32 = 4

// RoundQuantity rounds d to the stored scale.
func RoundQuantity(d decimal.Decimal) decimal.Decimal { return d.Round(QuantityPlaces) }

func (u *FinishedUnit) AfterFind(*gorm.DB) error {
	u.UnitCost = RoundQuantity(u.UnitCost)
	return nil
}

func (u *MaterialUnit) AfterFind(*gorm.DB) error {
	u.UnitCost = RoundQuantity(u.UnitCost)
	u.InventoryCount = RoundQuantity(u.InventoryCount)
	u.MinimumStock = RoundQuantity(u.MinimumStock)
	return nil
}

func (c *Composition) AfterFind(*gorm.DB) error {
	c.ComponentQuantity = RoundQuantity(c.ComponentQuantity)
	return nil
}

func (i *InventoryItem) AfterFind(*gorm.DB) error {
	i.QuantityRemaining = RoundQuantity(i.QuantityRemaining)
	i.UnitCost = RoundQuantity(i.UnitCost)
	return nil
}

func (p *Purchase) AfterFind(*gorm.DB) error {
	p.PackageQuantity = RoundQuantity(p.PackageQuantity)
	p.UnitPrice = RoundQuantity(p.UnitPrice)
	return nil
}

func (m *InventoryMovement) AfterFind(*gorm.DB) error {
	m.Delta = RoundQuantity(m.Delta)
	m.Before = RoundQuantity(m.Before)
	m.After = RoundQuantity(m.After)
	return nil
}
