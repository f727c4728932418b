package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/annadmitrieva/tutor_admin/meetings"
	"github.com/annadmitrieva/tutor_admin/models"
	"github.com/annadmitrieva/tutor_admin/services"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubProvider struct {
	attendance []meetings.Participant
}

func (s *stubProvider) CreateMeeting(topic string, start time.Time) (*meetings.Meeting, error) {
	return &meetings.Meeting{ID: 1, JoinURL: "https://meet.example.com/j/1"}, nil
}

func (s *stubProvider) RescheduleMeeting(meetingID string, start time.Time) (*meetings.Meeting, error) {
	return &meetings.Meeting{}, nil
}

func (s *stubProvider) DeleteMeeting(meetingID string) error { return nil }

func (s *stubProvider) GetAttendance(meetingID string) ([]meetings.Participant, error) {
	return s.attendance, nil
}

func newWebhookApp(t *testing.T) (*fiber.App, *gorm.DB, *stubProvider) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.PurchasedTariff{}, &models.Lesson{}))

	provider := &stubProvider{}
	InitLessonHandlers(services.NewLessonService(db, provider))

	app := fiber.New()
	app.Post("/api/v1/lessons/webhook", MeetingWebhook)
	return app, db, provider
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestMeetingWebhookChallenge(t *testing.T) {
	t.Setenv("ZOOM_CLIENT_SECRET", "webhook-secret")

	app, _, _ := newWebhookApp(t)

	resp := postJSON(t, app, "/api/v1/lessons/webhook", fiber.Map{
		"event":    "endpoint.url_validation",
		"event_ts": 1770000000,
		"payload":  fiber.Map{"plainToken": "qgg8vlvZRS6UYooatFL8Aw"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		PlainToken     string `json:"plainToken"`
		EncryptedToken string `json:"encryptedToken"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	mac := hmac.New(sha256.New, []byte("webhook-secret"))
	mac.Write([]byte("qgg8vlvZRS6UYooatFL8Aw"))

	assert.Equal(t, "qgg8vlvZRS6UYooatFL8Aw", body.PlainToken)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), body.EncryptedToken)
}

func TestMeetingWebhookIgnoresOtherEvents(t *testing.T) {
	app, _, _ := newWebhookApp(t)

	resp := postJSON(t, app, "/api/v1/lessons/webhook", fiber.Map{
		"event":   "meeting.started",
		"payload": fiber.Map{"object": fiber.Map{"id": "123456"}},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMeetingWebhookUnknownMeeting(t *testing.T) {
	app, _, _ := newWebhookApp(t)

	// an ended meeting nobody booked through us is acknowledged, not retried
	resp := postJSON(t, app, "/api/v1/lessons/webhook", fiber.Map{
		"event":   "meeting.ended",
		"payload": fiber.Map{"object": fiber.Map{"id": "999999"}},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMeetingWebhookClassifiesEndedMeeting(t *testing.T) {
	app, db, provider := newWebhookApp(t)

	student := models.User{FullName: "Student", Email: "student@example.com", Role: "student"}
	require.NoError(t, db.Create(&student).Error)
	expiredIn := time.Now().Add(30 * 24 * time.Hour)
	tariff := models.PurchasedTariff{
		StudentID:           student.ID,
		Title:               "Standard",
		Price:               200,
		QuantityHours:       10,
		QuantityWeeksActive: 4,
		ExpiredIn:           &expiredIn,
		PaymentStatus:       models.PaymentSucceeded,
	}
	require.NoError(t, db.Create(&tariff).Error)

	meetingID := "314159"
	lesson := models.Lesson{
		StudentID:         student.ID,
		TeacherID:         student.ID,
		StartDate:         time.Now().Truncate(time.Hour),
		Status:            models.LessonStartSoon,
		PurchasedTariffID: tariff.ID,
		MeetingID:         &meetingID,
	}
	require.NoError(t, db.Create(&lesson).Error)

	provider.attendance = []meetings.Participant{
		{Name: "Teacher", Duration: 55 * 60},
		{Name: "Student", Duration: 52 * 60},
	}

	resp := postJSON(t, app, "/api/v1/lessons/webhook", fiber.Map{
		"event":   "meeting.ended",
		"payload": fiber.Map{"object": fiber.Map{"id": meetingID}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Lesson
	require.NoError(t, db.First(&got, "id = ?", lesson.ID).Error)
	assert.Equal(t, models.LessonAllSuccess, got.Status)

	var charged models.PurchasedTariff
	require.NoError(t, db.First(&charged, "id = ?", tariff.ID).Error)
	assert.Equal(t, 1, charged.CompletedHours)
}
