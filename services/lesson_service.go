package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	config "github.com/annadmitrieva/tutor_admin/configs"
	"github.com/annadmitrieva/tutor_admin/meetings"
	"github.com/annadmitrieva/tutor_admin/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Minimum seconds each party must attend before a lesson counts as held.
const DefaultMinAttendanceSeconds = 50 * 60

var (
	ErrLessonAlreadyFinished = errors.New("the lesson has already finished")
	ErrMeetingNotLinked      = errors.New("no lesson is linked to this meeting")
)

// MeetingProvider is the slice of the video-conferencing API the lesson
// lifecycle needs. *meetings.Client implements it.
type MeetingProvider interface {
	CreateMeeting(topic string, start time.Time) (*meetings.Meeting, error)
	RescheduleMeeting(meetingID string, start time.Time) (*meetings.Meeting, error)
	DeleteMeeting(meetingID string) error
	GetAttendance(meetingID string) ([]meetings.Participant, error)
}

// LessonService owns the lesson state machine. It is the only writer of a
// lesson's meeting fields.
type LessonService struct {
	db                   *gorm.DB
	meetings             MeetingProvider
	now                  func() time.Time
	minAttendanceSeconds int
}

func NewLessonService(db *gorm.DB, provider MeetingProvider) *LessonService {
	minAttendance := DefaultMinAttendanceSeconds
	if v := config.Config("MIN_ATTENDANCE_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			minAttendance = parsed
		}
	}

	return &LessonService{
		db:                   db,
		meetings:             provider,
		now:                  time.Now,
		minAttendanceSeconds: minAttendance,
	}
}

type CreateLessonParams struct {
	RequesterRole string
	TeacherID     uuid.UUID
	StudentID     uuid.UUID
	StartDate     time.Time
}

// Create books a lesson: time rules, double-booking check, tariff selection,
// then a transactional insert. Admin bookings get a meeting right away and
// fail outright if the provider does; teacher bookings wait for an admin
// confirmation before one is provisioned.
func (s *LessonService) Create(p CreateLessonParams) (*models.Lesson, error) {
	now := s.now()

	if err := ValidateLessonTime(p.RequesterRole, p.StartDate, now); err != nil {
		return nil, err
	}
	if err := IsLessonTimeBusy(s.db, p.StudentID, p.TeacherID, p.StartDate); err != nil {
		return nil, err
	}

	tariff, err := SelectActiveTariff(s.db, p.StudentID, p.StartDate, false, now)
	if err != nil {
		return nil, err
	}

	status := models.LessonStartSoon
	if p.RequesterRole == "teacher" {
		status = models.LessonNotConfirmed
	}

	lesson := models.Lesson{
		StudentID:         p.StudentID,
		TeacherID:         p.TeacherID,
		StartDate:         p.StartDate,
		Status:            status,
		PurchasedTariffID: tariff.ID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lesson).Error; err != nil {
			return err
		}
		if p.RequesterRole == "admin" {
			return s.provisionMeeting(tx, &lesson)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &lesson, nil
}

// Confirm moves a lesson to START_SOON, provisioning a meeting only when none
// exists yet.
func (s *LessonService) Confirm(lessonID uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.db.First(&lesson, "id = ?", lessonID).Error; err != nil {
		return nil, err
	}
	if lesson.Status.IsTerminal() {
		return nil, ErrLessonAlreadyFinished
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&lesson).Update("status", models.LessonStartSoon).Error; err != nil {
			return err
		}
		lesson.Status = models.LessonStartSoon

		if lesson.MeetingID == nil {
			return s.provisionMeeting(tx, &lesson)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &lesson, nil
}

type RescheduleLessonParams struct {
	RequesterRole string
	LessonID      uuid.UUID
	NewStartDate  time.Time
}

// Reschedule re-runs the booking checks against the new time. An admin moves
// the remote meeting in place and the lesson keeps its status; a teacher's
// reschedule drops the meeting and sends the lesson back to NOT_CONFIRMED.
// Remote failures are logged and do not block the local change - the lesson
// row is the source of truth.
func (s *LessonService) Reschedule(p RescheduleLessonParams) (*models.Lesson, error) {
	now := s.now()

	var lesson models.Lesson
	if err := s.db.First(&lesson, "id = ?", p.LessonID).Error; err != nil {
		return nil, err
	}
	if lesson.Status.IsTerminal() {
		return nil, ErrLessonAlreadyFinished
	}

	if err := ValidateLessonTime(p.RequesterRole, p.NewStartDate, now); err != nil {
		return nil, err
	}
	if err := IsLessonTimeBusy(s.db, lesson.StudentID, lesson.TeacherID, p.NewStartDate); err != nil {
		return nil, err
	}
	if _, err := SelectActiveTariff(s.db, lesson.StudentID, p.NewStartDate, true, now); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"start_date": p.NewStartDate}

	if p.RequesterRole == "admin" {
		if lesson.MeetingID != nil {
			if _, err := s.meetings.RescheduleMeeting(*lesson.MeetingID, p.NewStartDate); err != nil {
				log.Printf("🔥 Failed to reschedule meeting %s for lesson %s: %v", *lesson.MeetingID, lesson.ID, err)
			}
		}
	} else {
		if lesson.MeetingID != nil {
			if err := s.meetings.DeleteMeeting(*lesson.MeetingID); err != nil {
				log.Printf("🔥 Failed to delete meeting %s for lesson %s: %v", *lesson.MeetingID, lesson.ID, err)
			}
		}
		updates["meeting_id"] = nil
		updates["meeting_link"] = nil
		updates["status"] = models.LessonNotConfirmed
	}

	if err := s.db.Model(&lesson).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := s.db.First(&lesson, "id = ?", lesson.ID).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Delete removes the lesson and its remote meeting. A failed remote delete
// only orphans the meeting, it never keeps the lesson alive.
func (s *LessonService) Delete(lessonID uuid.UUID) error {
	var lesson models.Lesson
	if err := s.db.First(&lesson, "id = ?", lessonID).Error; err != nil {
		return err
	}

	if lesson.MeetingID != nil {
		if err := s.meetings.DeleteMeeting(*lesson.MeetingID); err != nil {
			log.Printf("🔥 Failed to delete meeting %s for lesson %s: %v", *lesson.MeetingID, lesson.ID, err)
		}
	}

	return s.db.Delete(&lesson).Error
}

// CompleteFromAttendance classifies an ended meeting's lesson from the
// recorded attendance and charges the hour to the owning tariff. Replayed
// webhook deliveries find a terminal lesson and do nothing.
func (s *LessonService) CompleteFromAttendance(meetingID string) error {
	var lesson models.Lesson
	if err := s.db.First(&lesson, "meeting_id = ?", meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMeetingNotLinked
		}
		return err
	}
	if lesson.Status.IsTerminal() {
		return nil
	}

	participants, err := s.meetings.GetAttendance(meetingID)
	if err != nil {
		return err
	}

	var totalDuration int
	for _, participant := range participants {
		totalDuration += participant.Duration
	}

	status := models.LessonUnSuccess
	if totalDuration >= (2 * s.minAttendanceSeconds) {
		status = models.LessonAllSuccess
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Lesson{}).
			Where("id = ? AND status NOT IN ?", lesson.ID, models.TerminalLessonStatuses).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// a concurrent delivery already classified this lesson
			return nil
		}

		_, err := ConsumeTariffHour(tx, lesson.PurchasedTariffID, s.now())
		return err
	})
}

type LessonListFilter struct {
	From       *time.Time
	To         *time.Time
	IsUpcoming bool
}

// GetUserLessons lists a user's lessons, on the teacher or student side
// depending on their role. Upcoming means starting at least an hour from now.
func (s *LessonService) GetUserLessons(user *models.User, filter LessonListFilter) ([]models.Lesson, error) {
	query := s.db.Order("start_date asc")

	if user.Role == "teacher" {
		query = query.Where("teacher_id = ?", user.ID)
	} else {
		query = query.Where("student_id = ?", user.ID)
	}

	if filter.From != nil && filter.To != nil {
		query = query.Where("start_date BETWEEN ? AND ?", filter.From, filter.To)
	}
	if filter.IsUpcoming {
		query = query.Where("start_date >= ?", s.now().Add(time.Hour))
	}

	var lessons []models.Lesson
	err := query.Find(&lessons).Error
	return lessons, err
}

func (s *LessonService) provisionMeeting(tx *gorm.DB, lesson *models.Lesson) error {
	var teacher, student models.User
	if err := tx.First(&teacher, "id = ?", lesson.TeacherID).Error; err != nil {
		return err
	}
	if err := tx.First(&student, "id = ?", lesson.StudentID).Error; err != nil {
		return err
	}

	topic := fmt.Sprintf("Lesson: %s and %s", teacher.FullName, student.FullName)
	meeting, err := s.meetings.CreateMeeting(topic, lesson.StartDate)
	if err != nil {
		return err
	}

	meetingID := strconv.FormatInt(meeting.ID, 10)
	lesson.MeetingID = &meetingID
	lesson.MeetingLink = &meeting.JoinURL

	return tx.Model(lesson).Updates(map[string]interface{}{
		"meeting_id":   meetingID,
		"meeting_link": meeting.JoinURL,
	}).Error
}
