package handlers

import (
	"errors"

	"github.com/annadmitrieva/tutor_admin/database"
	"github.com/annadmitrieva/tutor_admin/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseTariffRequest struct {
	FullName  string `json:"full_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	PaymentID string `json:"payment_id" validate:"required"`
}

// PurchaseTariff records a checkout started on the payment provider side: the
// student (created on their first purchase, without a password) and a pending
// snapshot of the catalog tariff keyed by the provider's payment id. The
// purchase only becomes usable once the payment webhook confirms it.
func PurchaseTariff(c *fiber.Ctx) error {
	tariffID, err := uuid.Parse(c.Params("tariffId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tariff id"})
	}

	var req PurchaseTariffRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var tariff models.Tariff
	if err := database.DB.First(&tariff, "id = ?", tariffID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tariff not found"})
	}

	var purchase models.PurchasedTariff
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var student models.User
		err := tx.Where("email = ?", req.Email).First(&student).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			student = models.User{
				FullName: req.FullName,
				Email:    req.Email,
				Role:     "student",
			}
			if err := tx.Create(&student).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		paymentID := req.PaymentID
		purchase = models.PurchasedTariff{
			StudentID:           student.ID,
			Title:               tariff.Title,
			Price:               tariff.Price,
			QuantityHours:       tariff.QuantityHours,
			QuantityWeeksActive: tariff.QuantityWeeksActive,
			PaymentID:           &paymentID,
			PaymentStatus:       models.PaymentPending,
		}
		return tx.Create(&purchase).Error
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(purchase)
}
