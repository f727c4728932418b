package jobs

import (
	"log"
	"time"

	"github.com/annadmitrieva/tutor_admin/models"
	"gorm.io/gorm"
)

// Grace window an unpaid purchase may hold ledger capacity.
const stalePurchaseGrace = time.Hour

// DeleteStalePendingTariffs removes purchases whose payment never completed.
func DeleteStalePendingTariffs(db *gorm.DB, now time.Time) {
	log.Println("Running job: DeleteStalePendingTariffs...")

	res := db.Where("payment_status = ? AND created_at < ?", models.PaymentPending, now.Add(-stalePurchaseGrace)).
		Delete(&models.PurchasedTariff{})
	if res.Error != nil {
		log.Printf("Error deleting stale pending tariffs: %v", res.Error)
		return
	}

	if res.RowsAffected > 0 {
		log.Printf("Deleted %d stale pending tariff(s).", res.RowsAffected)
	}
}
