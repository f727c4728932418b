package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/annadmitrieva/tutor_admin/models"
	"github.com/annadmitrieva/tutor_admin/notifications"
	"github.com/annadmitrieva/tutor_admin/services"
	"gorm.io/gorm"
)

// Remaining hours at which the student is nudged to buy a new tariff.
const lowBalanceThreshold = 4

// MarkLessonHoursConsumed runs at the top of every hour. Each non-terminal
// lesson starting right now consumes one hour from its tariff. Every lesson
// is processed in its own transaction so one bad row cannot stall the sweep.
func MarkLessonHoursConsumed(db *gorm.DB, now time.Time) {
	log.Println("Running job: MarkLessonHoursConsumed...")

	topOfHour := now.Truncate(time.Hour)

	var lessons []models.Lesson
	err := db.Where("start_date = ? AND status NOT IN ?", topOfHour, models.TerminalLessonStatuses).
		Find(&lessons).Error
	if err != nil {
		log.Printf("Error loading lessons starting at %s: %v", topOfHour, err)
		return
	}
	if len(lessons) == 0 {
		return
	}

	consumed := 0
	for _, lesson := range lessons {
		err := db.Transaction(func(tx *gorm.DB) error {
			tariff, err := services.ConsumeTariffHour(tx, lesson.PurchasedTariffID, now)
			if err != nil {
				return err
			}

			if tariff.QuantityHours-tariff.CompletedHours == lowBalanceThreshold {
				notifyLowBalance(tx, tariff)
			}
			return nil
		})
		if err != nil {
			log.Printf("Error consuming hour for lesson %s: %v", lesson.ID, err)
			continue
		}
		consumed++
	}

	log.Printf("Consumed %d lesson hour(s).", consumed)
}

func notifyLowBalance(tx *gorm.DB, tariff *models.PurchasedTariff) {
	var student models.User
	if err := tx.First(&student, "id = ?", tariff.StudentID).Error; err != nil {
		log.Printf("Error loading student %s for low balance notice: %v", tariff.StudentID, err)
		return
	}

	remaining := tariff.QuantityHours - tariff.CompletedHours
	body := fmt.Sprintf(
		"<h1>Time to top up</h1><p>Your tariff %q has only %d hour(s) left. Purchase a new package to keep your schedule.</p>",
		tariff.Title, remaining,
	)
	go notifications.SendEmail(student.FullName, student.Email, "Only a few lesson hours left", body)
}
