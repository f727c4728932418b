package jobs

import (
	"log"
	"time"

	"github.com/annadmitrieva/tutor_admin/models"
	"gorm.io/gorm"
)

// CloseExpiredUnconfirmedLessons forces stuck lessons into UN_SUCCESS: ones
// never confirmed within an hour of booking, and ones that started over an
// hour ago without ever receiving an attendance report. Terminal lessons are
// untouched, so re-running the sweep is harmless.
func CloseExpiredUnconfirmedLessons(db *gorm.DB, now time.Time) {
	log.Println("Running job: CloseExpiredUnconfirmedLessons...")

	cutoff := now.Add(-time.Hour)

	res := db.Model(&models.Lesson{}).
		Where("(status = ? AND created_at < ?) OR (status = ? AND start_date < ?)",
			models.LessonNotConfirmed, cutoff, models.LessonStartSoon, cutoff).
		Update("status", models.LessonUnSuccess)
	if res.Error != nil {
		log.Printf("Error closing unconfirmed lessons: %v", res.Error)
		return
	}

	if res.RowsAffected > 0 {
		log.Printf("Marked %d lesson(s) as UN_SUCCESS.", res.RowsAffected)
	}
}
