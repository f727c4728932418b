package handlers

import (
	"github.com/annadmitrieva/tutor_admin/database"
	"github.com/annadmitrieva/tutor_admin/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TariffRequest struct {
	Title               string  `json:"title" validate:"required"`
	Price               float64 `json:"price" validate:"required,gt=0"`
	QuantityHours       int     `json:"quantity_hours" validate:"required,gt=0"`
	QuantityWeeksActive int     `json:"quantity_weeks_active" validate:"required,gt=0"`
	Benefits            string  `json:"benefits"`
	IsPopular           bool    `json:"is_popular"`
}

func GetTariffs(c *fiber.Ctx) error {
	var tariffs []models.Tariff
	if err := database.DB.Order("price asc").Find(&tariffs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load tariffs"})
	}
	return c.JSON(tariffs)
}

func CreateTariff(c *fiber.Ctx) error {
	var req TariffRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tariff := models.Tariff{
		Title:               req.Title,
		Price:               req.Price,
		QuantityHours:       req.QuantityHours,
		QuantityWeeksActive: req.QuantityWeeksActive,
		Benefits:            req.Benefits,
		IsPopular:           req.IsPopular,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if req.IsPopular {
			if err := demoteOtherPopular(tx, uuid.Nil); err != nil {
				return err
			}
		}
		return tx.Create(&tariff).Error
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(tariff)
}

func UpdateTariff(c *fiber.Ctx) error {
	tariffID, err := uuid.Parse(c.Params("tariffId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tariff id"})
	}

	var req TariffRequest
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

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if req.IsPopular {
			if err := demoteOtherPopular(tx, tariff.ID); err != nil {
				return err
			}
		}
		return tx.Model(&tariff).Updates(map[string]interface{}{
			"title":                 req.Title,
			"price":                 req.Price,
			"quantity_hours":        req.QuantityHours,
			"quantity_weeks_active": req.QuantityWeeksActive,
			"benefits":              req.Benefits,
			"is_popular":            req.IsPopular,
		}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(tariff)
}

func DeleteTariff(c *fiber.Ctx) error {
	tariffID, err := uuid.Parse(c.Params("tariffId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tariff id"})
	}

	res := database.DB.Delete(&models.Tariff{}, "id = ?", tariffID)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete tariff"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tariff not found"})
	}

	return c.JSON(fiber.Map{"message": "Tariff deleted"})
}

func GetStudentTariffs(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var tariffs []models.PurchasedTariff
	err = database.DB.Where("student_id = ?", studentID).Order("created_at asc").Find(&tariffs).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load purchased tariffs"})
	}

	return c.JSON(tariffs)
}

// Only one catalog tariff may be highlighted as popular at a time.
func demoteOtherPopular(tx *gorm.DB, keepID uuid.UUID) error {
	return tx.Model(&models.Tariff{}).
		Where("is_popular = ? AND id <> ?", true, keepID).
		Update("is_popular", false).Error
}
