package routes

import (
	"github.com/annadmitrieva/tutor_admin/handlers"
	"github.com/annadmitrieva/tutor_admin/middleware"
	"github.com/gofiber/fiber/v2"
)

func LessonRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// the meeting provider posts here, no auth on purpose
	api.Post("/lessons/webhook", handlers.MeetingWebhook)

	lessons := api.Group("/lessons", middleware.Protected())
	lessons.Get("/me", handlers.GetMyLessons)
	lessons.Post("/:teacherId/:studentId", handlers.CreateLesson)
	lessons.Patch("/:lessonId/reschedule", handlers.RescheduleLesson)
	lessons.Patch("/:lessonId/confirm", middleware.AdminRequired(), handlers.ConfirmLesson)
	lessons.Delete("/:lessonId", middleware.AdminRequired(), handlers.DeleteLesson)
}
