package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// PurchasedTariff is a package of lesson hours owned by one student. ExpiredIn
// stays nil until the package is activated: on payment confirmation for the
// first package, or when the previous package runs out for the ones after it.
type PurchasedTariff struct {
	ID                  uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	StudentID           uuid.UUID     `gorm:"not null;index" json:"student_id"`
	Title               string        `gorm:"size:100;not null" json:"title"`
	Price               float64       `gorm:"type:numeric(10,2);not null" json:"price"`
	QuantityHours       int           `gorm:"not null" json:"quantity_hours"`
	CompletedHours      int           `gorm:"not null;default:0" json:"completed_hours"`
	QuantityWeeksActive int           `gorm:"not null" json:"quantity_weeks_active"`
	ExpiredIn           *time.Time    `json:"expired_in"`
	PaymentID           *string       `gorm:"size:64;unique" json:"-"`
	PaymentStatus       PaymentStatus `gorm:"size:20;not null;default:'pending'" json:"payment_status"`

	Student User `gorm:"foreignkey:StudentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *PurchasedTariff) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *PurchasedTariff) HasRemainingHours() bool {
	return t.CompletedHours < t.QuantityHours
}
