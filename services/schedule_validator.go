package services

import (
	"errors"
	"time"

	"github.com/annadmitrieva/tutor_admin/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrLessonInPast       = errors.New("cannot schedule a lesson in the past")
	ErrNotOnTheHour       = errors.New("lessons can only start at the top of an hour")
	ErrBeyondAdminHorizon = errors.New("cannot schedule a lesson more than 6 months ahead")
	ErrBeyondHorizon      = errors.New("cannot schedule a lesson more than 2 weeks ahead")

	ErrStudentTimeBusy = errors.New("the student already has a lesson at this time")
	ErrTeacherTimeBusy = errors.New("the teacher already has a lesson at this time")
	ErrBothTimeBusy    = errors.New("the student and the teacher already have a lesson at this time")
)

// ValidateLessonTime enforces the booking-time rules in order: no past
// bookings, hour-aligned slots only, then the role-based horizon. It does no
// I/O so it can be checked against a fixed clock.
func ValidateLessonTime(role string, start, now time.Time) error {
	if start.Before(now) {
		return ErrLessonInPast
	}

	if start.Minute() != 0 || start.Second() != 0 || start.Nanosecond() != 0 {
		return ErrNotOnTheHour
	}

	if role == "admin" {
		if start.After(now.AddDate(0, 6, 0)) {
			return ErrBeyondAdminHorizon
		}
		return nil
	}

	if start.After(now.AddDate(0, 0, 14)) {
		return ErrBeyondHorizon
	}

	return nil
}

// IsLessonTimeBusy rejects a slot already taken by either party. Both sides
// are always checked so the caller can tell who is busy.
func IsLessonTimeBusy(db *gorm.DB, studentID, teacherID uuid.UUID, start time.Time) error {
	var studentCount, teacherCount int64

	err := db.Model(&models.Lesson{}).
		Where("student_id = ? AND start_date = ? AND status NOT IN ?", studentID, start, models.TerminalLessonStatuses).
		Count(&studentCount).Error
	if err != nil {
		return err
	}

	err = db.Model(&models.Lesson{}).
		Where("teacher_id = ? AND start_date = ? AND status NOT IN ?", teacherID, start, models.TerminalLessonStatuses).
		Count(&teacherCount).Error
	if err != nil {
		return err
	}

	switch {
	case studentCount > 0 && teacherCount > 0:
		return ErrBothTimeBusy
	case studentCount > 0:
		return ErrStudentTimeBusy
	case teacherCount > 0:
		return ErrTeacherTimeBusy
	}

	return nil
}
