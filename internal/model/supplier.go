package model

import "time"

// Supplier is a store or wholesaler ingredients and packaging are bought from.
type Supplier struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"size:150;uniqueIndex;not null"`
	Email     *string `gorm:"size:150"`
	Phone     *string `gorm:"size:40"`
	City      *string `gorm:"size:80"`
	Notes     *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Supplier) TableName() string { return "suppliers" }
