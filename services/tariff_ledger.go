package services

import (
	"errors"
	"time"

	"github.com/annadmitrieva/tutor_admin/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNoPurchasedTariffs        = errors.New("the student has no purchased tariffs")
	ErrHoursOrValidityExhausted  = errors.New("the student has run out of hours or the tariff validity has ended")
	ErrTariffExpiresBeforeLesson = errors.New("the tariff validity ends before the requested lesson date")
)

// Backward tolerance when counting reserved hours, so a lesson that just
// started still counts against the tariff.
const scheduledLessonsTolerance = time.Hour

// SelectActiveTariff picks the tariff that pays for a booking at lessonStart.
// A reschedule frees the hour of the lesson being moved, so it is subtracted
// from the reserved count instead of double-charging the student.
func SelectActiveTariff(db *gorm.DB, studentID uuid.UUID, lessonStart time.Time, isReschedule bool, now time.Time) (*models.PurchasedTariff, error) {
	var tariffs []models.PurchasedTariff
	if err := db.Where("student_id = ?", studentID).Order("created_at asc").Find(&tariffs).Error; err != nil {
		return nil, err
	}
	if len(tariffs) == 0 {
		return nil, ErrNoPurchasedTariffs
	}

	scheduled, err := countScheduledLessons(db, studentID, now)
	if err != nil {
		return nil, err
	}

	active := findEligibleTariff(tariffs, int(scheduled), isReschedule, now)
	if active == nil {
		return nil, ErrHoursOrValidityExhausted
	}

	if active.ExpiredIn.Before(lessonStart) {
		return nil, ErrTariffExpiresBeforeLesson
	}

	return active, nil
}

// findEligibleTariff is a first-match scan in purchase order, not best-fit.
func findEligibleTariff(tariffs []models.PurchasedTariff, scheduled int, isReschedule bool, now time.Time) *models.PurchasedTariff {
	reserved := scheduled
	if isReschedule {
		reserved--
	}

	for i := range tariffs {
		t := &tariffs[i]

		hasHours := t.CompletedHours+reserved < t.QuantityHours
		paid := t.PaymentStatus == models.PaymentSucceeded
		notExpired := t.ExpiredIn != nil && t.ExpiredIn.After(now)

		if hasHours && paid && notExpired {
			return t
		}
	}

	return nil
}

// countScheduledLessons counts the student's non-terminal lessons from one
// hour ago onward. Terminal lessons release their reservation purely by
// status, which is why the filter is part of the ledger contract.
func countScheduledLessons(db *gorm.DB, studentID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := db.Model(&models.Lesson{}).
		Where("student_id = ? AND start_date >= ? AND status NOT IN ?",
			studentID, now.Add(-scheduledLessonsTolerance), models.TerminalLessonStatuses).
		Count(&count).Error
	return count, err
}

// ActivateNextTariff starts the validity window of the student's next tariff
// with remaining hours. Windows of sequential tariffs only begin counting once
// the previous tariff is exhausted, not at purchase time.
func ActivateNextTariff(tx *gorm.DB, studentID uuid.UUID, now time.Time) error {
	var tariffs []models.PurchasedTariff
	if err := tx.Where("student_id = ?", studentID).Order("created_at asc").Find(&tariffs).Error; err != nil {
		return err
	}

	for i := range tariffs {
		t := &tariffs[i]
		if !t.HasRemainingHours() {
			continue
		}
		if t.ExpiredIn != nil {
			return nil
		}

		expiredIn := now.Add(time.Duration(t.QuantityWeeksActive) * 7 * 24 * time.Hour)
		return tx.Model(t).Update("expired_in", expiredIn).Error
	}

	return nil
}

// ConsumeTariffHour records one completed hour on the tariff and, when that
// exhausts it, cascades activation to the student's next tariff. The increment
// is pushed into the database so concurrent consumers cannot lose an update.
func ConsumeTariffHour(tx *gorm.DB, tariffID uuid.UUID, now time.Time) (*models.PurchasedTariff, error) {
	err := tx.Model(&models.PurchasedTariff{}).
		Where("id = ?", tariffID).
		Update("completed_hours", gorm.Expr("completed_hours + 1")).Error
	if err != nil {
		return nil, err
	}

	var tariff models.PurchasedTariff
	if err := tx.First(&tariff, "id = ?", tariffID).Error; err != nil {
		return nil, err
	}

	if !tariff.HasRemainingHours() {
		if err := ActivateNextTariff(tx, tariff.StudentID, now); err != nil {
			return nil, err
		}
	}

	return &tariff, nil
}
