package routes

import (
	"github.com/annadmitrieva/tutor_admin/handlers"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/payments/webhook", handlers.PaymentWebhook)
}
