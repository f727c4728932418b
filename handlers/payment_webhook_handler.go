package handlers

import (
	"log"
	"time"

	"github.com/annadmitrieva/tutor_admin/database"
	"github.com/annadmitrieva/tutor_admin/models"
	"github.com/annadmitrieva/tutor_admin/notifications"
	"github.com/annadmitrieva/tutor_admin/utils"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type PaymentWebhookRequest struct {
	Event  string `json:"event"`
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"object"`
}

// PaymentWebhook activates a purchased tariff once the payment provider
// confirms it. First-time students get a generated password by email; the
// checkout flow itself lives entirely on the provider side.
func PaymentWebhook(c *fiber.Ctx) error {
	var req PaymentWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.Event != "payment.succeeded" {
		return c.SendStatus(fiber.StatusOK)
	}

	var tariff models.PurchasedTariff
	if err := database.DB.First(&tariff, "payment_id = ?", req.Object.ID).Error; err != nil {
		log.Printf("Payment webhook for unknown payment %s, ignoring.", req.Object.ID)
		return c.SendStatus(fiber.StatusOK)
	}

	if tariff.PaymentStatus == models.PaymentSucceeded {
		// provider retried a delivery we already handled
		return c.SendStatus(fiber.StatusOK)
	}

	var student models.User
	var generatedPassword string

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		expiredIn := time.Now().Add(time.Duration(tariff.QuantityWeeksActive) * 7 * 24 * time.Hour)
		err := tx.Model(&tariff).Updates(map[string]interface{}{
			"payment_status": models.PaymentSucceeded,
			"expired_in":     expiredIn,
		}).Error
		if err != nil {
			return err
		}

		if err := tx.First(&student, "id = ?", tariff.StudentID).Error; err != nil {
			return err
		}

		if student.Password == "" {
			password, err := utils.GenerateRandomPassword(12, 15)
			if err != nil {
				return err
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			if err := tx.Model(&student).Update("password", string(hashed)).Error; err != nil {
				return err
			}
			generatedPassword = password
		}
		return nil
	})
	if err != nil {
		log.Printf("🔥 Failed to activate tariff for payment %s: %v", req.Object.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to activate tariff"})
	}

	if generatedPassword != "" {
		go notifications.SendRegistrationEmail(student.FullName, student.Email, generatedPassword)
	} else {
		go notifications.SendPurchaseConfirmationEmail(student.FullName, student.Email, tariff.Title)
	}

	return c.SendStatus(fiber.StatusOK)
}
