package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonStatus string

const (
	LessonNotConfirmed LessonStatus = "NOT_CONFIRMED"
	LessonStartSoon    LessonStatus = "START_SOON"
	LessonAllSuccess   LessonStatus = "ALL_SUCCESS"
	LessonUnSuccess    LessonStatus = "UN_SUCCESS"
)

// TerminalLessonStatuses are the states a lesson never leaves. A lesson in one
// of them no longer reserves hours on its tariff.
var TerminalLessonStatuses = []LessonStatus{LessonAllSuccess, LessonUnSuccess}

func (s LessonStatus) IsTerminal() bool {
	return s == LessonAllSuccess || s == LessonUnSuccess
}

type Lesson struct {
	ID                uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	StudentID         uuid.UUID    `gorm:"not null;index" json:"student_id"`
	TeacherID         uuid.UUID    `gorm:"not null;index" json:"teacher_id"`
	StartDate         time.Time    `gorm:"not null;index" json:"start_date"`
	Status            LessonStatus `gorm:"size:20;not null;default:'NOT_CONFIRMED'" json:"status"`
	PurchasedTariffID uuid.UUID    `gorm:"not null" json:"purchased_tariff_id"`
	MeetingID         *string      `gorm:"size:64;index" json:"meeting_id"`
	MeetingLink       *string      `gorm:"size:255" json:"meeting_link"`

	Student         User            `gorm:"foreignkey:StudentID" json:"-"`
	Teacher         User            `gorm:"foreignkey:TeacherID" json:"-"`
	PurchasedTariff PurchasedTariff `gorm:"foreignkey:PurchasedTariffID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
