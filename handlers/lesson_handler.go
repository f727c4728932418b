package handlers

import (
	"errors"
	"time"

	"github.com/annadmitrieva/tutor_admin/database"
	"github.com/annadmitrieva/tutor_admin/meetings"
	"github.com/annadmitrieva/tutor_admin/models"
	"github.com/annadmitrieva/tutor_admin/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var lessonService *services.LessonService

// InitLessonHandlers wires the lesson lifecycle service built in main.
func InitLessonHandlers(svc *services.LessonService) {
	lessonService = svc
}

type LessonTimeRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func CreateLesson(c *fiber.Ctx) error {
	_, role := currentUser(c)

	teacherID, err := uuid.Parse(c.Params("teacherId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}
	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var req LessonTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	startDate, _ := time.Parse(time.RFC3339, req.StartDate)

	lesson, err := lessonService.Create(services.CreateLessonParams{
		RequesterRole: role,
		TeacherID:     teacherID,
		StudentID:     studentID,
		StartDate:     startDate,
	})
	if err != nil {
		return lessonErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func RescheduleLesson(c *fiber.Ctx) error {
	_, role := currentUser(c)

	lessonID, err := uuid.Parse(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lesson id"})
	}

	var req LessonTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	newStartDate, _ := time.Parse(time.RFC3339, req.StartDate)

	lesson, err := lessonService.Reschedule(services.RescheduleLessonParams{
		RequesterRole: role,
		LessonID:      lessonID,
		NewStartDate:  newStartDate,
	})
	if err != nil {
		return lessonErrorResponse(c, err)
	}

	return c.JSON(lesson)
}

func ConfirmLesson(c *fiber.Ctx) error {
	lessonID, err := uuid.Parse(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lesson id"})
	}

	lesson, err := lessonService.Confirm(lessonID)
	if err != nil {
		return lessonErrorResponse(c, err)
	}

	return c.JSON(lesson)
}

func DeleteLesson(c *fiber.Ctx) error {
	lessonID, err := uuid.Parse(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lesson id"})
	}

	if err := lessonService.Delete(lessonID); err != nil {
		return lessonErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Lesson deleted"})
}

func GetMyLessons(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	filter := services.LessonListFilter{
		IsUpcoming: c.QueryBool("upcoming"),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("start_date")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("end_date")); err == nil {
		filter.To = &to
	}

	lessons, err := lessonService.GetUserLessons(&user, filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load lessons"})
	}

	return c.JSON(lessons)
}

// lessonErrorResponse distinguishes "your request is invalid" from "the
// remote system is unavailable".
func lessonErrorResponse(c *fiber.Ctx, err error) error {
	var providerErr *meetings.ProviderError
	if errors.As(err, &providerErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Meeting provider is unavailable, please try again later"})
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}
