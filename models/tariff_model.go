package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tariff is a catalog entry students purchase from. The purchase itself is
// recorded as a PurchasedTariff snapshot so later catalog edits do not change
// what a student already paid for.
type Tariff struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title               string    `gorm:"size:100;not null;unique" json:"title"`
	Price               float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	QuantityHours       int       `gorm:"not null" json:"quantity_hours"`
	QuantityWeeksActive int       `gorm:"not null" json:"quantity_weeks_active"`
	Benefits            string    `gorm:"type:text" json:"benefits"`
	IsPopular           bool      `gorm:"default:false" json:"is_popular"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Tariff) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
