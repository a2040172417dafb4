package model

import (
	"fmt"
	"strings"
	"time"
)

// AssemblyType tags what kind of package a FinishedGood is.
type AssemblyType string

const (
	AssemblyCustomOrder AssemblyType = "CUSTOM_ORDER"
	AssemblyGiftBox     AssemblyType = "GIFT_BOX"
	AssemblyVarietyPack AssemblyType = "VARIETY_PACK"
	AssemblyHolidaySet  AssemblyType = "HOLIDAY_SET"
	AssemblyBulkPack    AssemblyType = "BULK_PACK"
	AssemblyBare        AssemblyType = "BARE" // auto-generated single-item wrapper
)

// AssemblyTypes lists every recognised variant in display order.
var AssemblyTypes = []AssemblyType{
	AssemblyCustomOrder, AssemblyGiftBox, AssemblyVarietyPack,
	AssemblyHolidaySet, AssemblyBulkPack, AssemblyBare,
}

// ParseAssemblyType accepts the enum name in any case; "gift box" style
// spacing is normalised to underscores.
func ParseAssemblyType(s string) (AssemblyType, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
	for _, t := range AssemblyTypes {
		if string(t) == norm {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown assembly type %q", s)
}

// FinishedGood is an assembly node of the BOM graph: a package that
// contains finished units, material units and other finished goods.
type FinishedGood struct {
	ID                    uint         `gorm:"primaryKey"`
	Slug                  string       `gorm:"size:100;uniqueIndex;not null"`
	DisplayName           string       `gorm:"size:200;index;not null"`
	AssemblyType          AssemblyType `gorm:"type:varchar(20);not null;default:'CUSTOM_ORDER';index"`
	Description           *string
	PackagingInstructions *string
	Notes                 *string
	InventoryCount        int `gorm:"not null;default:0;check:chk_finished_goods_inventory,inventory_count >= 0"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (FinishedGood) TableName() string { return "finished_goods" }
