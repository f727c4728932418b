package routes

import (
	"github.com/annadmitrieva/tutor_admin/handlers"
	"github.com/annadmitrieva/tutor_admin/middleware"
	"github.com/gofiber/fiber/v2"
)

func TariffRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/tariffs", handlers.GetTariffs)
	// first-time buyers have no account yet, so no auth here
	api.Post("/tariffs/:tariffId/purchase", handlers.PurchaseTariff)

	admin := api.Group("/tariffs", middleware.Protected(), middleware.AdminRequired())
	admin.Post("", handlers.CreateTariff)
	admin.Put("/:tariffId", handlers.UpdateTariff)
	admin.Delete("/:tariffId", handlers.DeleteTariff)

	students := api.Group("/students", middleware.Protected())
	students.Get("/:studentId/tariffs", handlers.GetStudentTariffs)
}
