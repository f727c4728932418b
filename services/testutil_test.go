package services

import (
	"testing"
	"time"

	"github.com/annadmitrieva/tutor_admin/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.User{}, &models.Tariff{}, &models.PurchasedTariff{}, &models.Lesson{})
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	user := models.User{
		FullName: role + " " + uuid.NewString()[:8],
		Email:    uuid.NewString() + "@example.com",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

type testTariffOpts struct {
	QuantityHours  int
	CompletedHours int
	WeeksActive    int
	ExpiredIn      *time.Time
	PaymentStatus  models.PaymentStatus
	CreatedAt      time.Time
}

func createTestTariff(t *testing.T, db *gorm.DB, studentID uuid.UUID, opts testTariffOpts) *models.PurchasedTariff {
	t.Helper()

	if opts.QuantityHours == 0 {
		opts.QuantityHours = 10
	}
	if opts.WeeksActive == 0 {
		opts.WeeksActive = 4
	}
	if opts.PaymentStatus == "" {
		opts.PaymentStatus = models.PaymentSucceeded
	}

	tariff := models.PurchasedTariff{
		StudentID:           studentID,
		Title:               "Standard",
		Price:               200,
		QuantityHours:       opts.QuantityHours,
		CompletedHours:      opts.CompletedHours,
		QuantityWeeksActive: opts.WeeksActive,
		ExpiredIn:           opts.ExpiredIn,
		PaymentStatus:       opts.PaymentStatus,
	}
	if !opts.CreatedAt.IsZero() {
		tariff.CreatedAt = opts.CreatedAt
	}
	require.NoError(t, db.Create(&tariff).Error)
	return &tariff
}

func createTestLesson(t *testing.T, db *gorm.DB, studentID, teacherID, tariffID uuid.UUID, start time.Time, status models.LessonStatus) *models.Lesson {
	t.Helper()

	lesson := models.Lesson{
		StudentID:         studentID,
		TeacherID:         teacherID,
		StartDate:         start,
		Status:            status,
		PurchasedTariffID: tariffID,
	}
	require.NoError(t, db.Create(&lesson).Error)
	return &lesson
}

func timePtr(v time.Time) *time.Time {
	return &v
}
