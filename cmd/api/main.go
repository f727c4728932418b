package main

import (
	"log"
	"time"

	"github.com/annadmitrieva/tutor_admin/database"
	"github.com/annadmitrieva/tutor_admin/handlers"
	"github.com/annadmitrieva/tutor_admin/jobs"
	"github.com/annadmitrieva/tutor_admin/meetings"
	"github.com/annadmitrieva/tutor_admin/notifications"
	"github.com/annadmitrieva/tutor_admin/routes"
	"github.com/annadmitrieva/tutor_admin/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	notifications.InitEmailService()

	meetingClient := meetings.NewClient()
	lessonService := services.NewLessonService(database.DB, meetingClient)
	handlers.InitLessonHandlers(lessonService)

	c := cron.New()
	// lessons start on the hour, give clocks a moment to settle
	c.AddFunc("1 * * * *", func() {
		jobs.MarkLessonHoursConsumed(database.DB, time.Now())
	})
	c.AddFunc("10 * * * *", func() {
		jobs.CloseExpiredUnconfirmedLessons(database.DB, time.Now())
	})
	c.AddFunc("0 */3 * * *", func() {
		jobs.DeleteStalePendingTariffs(database.DB, time.Now())
	})
	go c.Start()
	log.Println("✅ Cron jobs for lesson accounting scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:       false,
		AppName:       "Tutor Admin",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Tutor Admin API",
		})
	})

	routes.AuthRoutes(app)
	routes.LessonRoutes(app)
	routes.TariffRoutes(app)
	routes.PaymentRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	log.Println("✅ Server is running on port 8080")
	err := app.Listen(":8080")
	if err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
