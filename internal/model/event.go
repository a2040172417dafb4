package model

import "time"

// Event is a planned occasion (holiday sale, gift run) that uses assemblies.
type Event struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:200;not null"`
	EventDate time.Time `gorm:"not null;index"`
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time

	Assemblies []EventAssembly `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

func (Event) TableName() string { return "events" }

// EventAssembly plans Quantity of an assembly for an event. An assembly
// referenced here cannot be deleted.
type EventAssembly struct {
	ID             uint `gorm:"primaryKey"`
	EventID        uint `gorm:"not null;uniqueIndex:idx_event_assembly,priority:1"`
	FinishedGoodID uint `gorm:"not null;uniqueIndex:idx_event_assembly,priority:2;index"`
	Quantity       int  `gorm:"not null;default:1;check:chk_event_assemblies_quantity,quantity > 0"`

	FinishedGood *FinishedGood `gorm:"foreignKey:FinishedGoodID;constraint:OnDelete:RESTRICT"`
}

func (EventAssembly) TableName() string { return "event_assemblies" }
