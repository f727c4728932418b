package services

import (
	"testing"
	"time"

	"github.com/annadmitrieva/tutor_admin/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectActiveTariffNoPurchases(t *testing.T) {
	db := newTestDB(t)
	student := createTestUser(t, db, "student")

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	_, err := SelectActiveTariff(db, student.ID, now.Add(48*time.Hour), false, now)
	assert.ErrorIs(t, err, ErrNoPurchasedTariffs)
}

func TestSelectActiveTariffEligibility(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	lessonStart := time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC)

	t.Run("exhausted hours", func(t *testing.T) {
		db := newTestDB(t)
		student := createTestUser(t, db, "student")
		createTestTariff(t, db, student.ID, testTariffOpts{
			QuantityHours:  8,
			CompletedHours: 8,
			ExpiredIn:      timePtr(now.Add(30 * 24 * time.Hour)),
		})

		_, err := SelectActiveTariff(db, student.ID, lessonStart, false, now)
		assert.ErrorIs(t, err, ErrHoursOrValidityExhausted)
	})

	t.Run("unpaid tariff never pays for a lesson", func(t *testing.T) {
		db := newTestDB(t)
		student := createTestUser(t, db, "student")
		createTestTariff(t, db, student.ID, testTariffOpts{
			ExpiredIn:     timePtr(now.Add(30 * 24 * time.Hour)),
			PaymentStatus: models.PaymentPending,
		})

		_, err := SelectActiveTariff(db, student.ID, lessonStart, false, now)
		assert.ErrorIs(t, err, ErrHoursOrValidityExhausted)
	})

	t.Run("expired tariff", func(t *testing.T) {
		db := newTestDB(t)
		student := createTestUser(t, db, "student")
		createTestTariff(t, db, student.ID, testTariffOpts{
			ExpiredIn: timePtr(now.Add(-time.Minute)),
		})

		_, err := SelectActiveTariff(db, student.ID, lessonStart, false, now)
		assert.ErrorIs(t, err, ErrHoursOrValidityExhausted)
	})

	t.Run("not yet activated tariff", func(t *testing.T) {
		db := newTestDB(t)
		student := createTestUser(t, db, "student")
		createTestTariff(t, db, student.ID, testTariffOpts{ExpiredIn: nil})

		_, err := SelectActiveTariff(db, student.ID, lessonStart, false, now)
		assert.ErrorIs(t, err, ErrHoursOrValidityExhausted)
	})

	t.Run("validity ends before the lesson", func(t *testing.T) {
		db := newTestDB(t)
		student := createTestUser(t, db, "student")
		createTestTariff(t, db, student.ID, testTariffOpts{
			ExpiredIn: timePtr(lessonStart.Add(-time.Hour)),
		})

		_, err := SelectActiveTariff(db, student.ID, lessonStart, false, now)
		assert.ErrorIs(t, err, ErrTariffExpiresBeforeLesson)
	})

	t.Run("eligible tariff is returned", func(t *testing.T) {
		db := newTestDB(t)
		student := createTestUser(t, db, "student")
		tariff := createTestTariff(t, db, student.ID, testTariffOpts{
			ExpiredIn: timePtr(now.Add(30 * 24 * time.Hour)),
		})

		got, err := SelectActiveTariff(db, student.ID, lessonStart, false, now)
		require.NoError(t, err)
		assert.Equal(t, tariff.ID, got.ID)
	})
}

func TestSelectActiveTariffFirstMatchOrder(t *testing.T) {
	db := newTestDB(t)
	student := createTestUser(t, db, "student")
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	lessonStart := time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC)

	// the older tariff still has one hour left, so it wins over the newer one
	older := createTestTariff(t, db, student.ID, testTariffOpts{
		QuantityHours:  8,
		CompletedHours: 7,
		ExpiredIn:      timePtr(now.Add(30 * 24 * time.Hour)),
		CreatedAt:      now.Add(-48 * time.Hour),
	})
	createTestTariff(t, db, student.ID, testTariffOpts{
		ExpiredIn: timePtr(now.Add(60 * 24 * time.Hour)),
		CreatedAt: now.Add(-time.Hour),
	})

	got, err := SelectActiveTariff(db, student.ID, lessonStart, false, now)
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)
}

func TestSelectActiveTariffReservedHours(t *testing.T) {
	db := newTestDB(t)
	student := createTestUser(t, db, "student")
	teacher := createTestUser(t, db, "teacher")
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	tariff := createTestTariff(t, db, student.ID, testTariffOpts{
		QuantityHours:  3,
		CompletedHours: 1,
		ExpiredIn:      timePtr(now.Add(30 * 24 * time.Hour)),
	})

	// two future bookings reserve the remaining two hours
	createTestLesson(t, db, student.ID, teacher.ID, tariff.ID,
		time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC), models.LessonStartSoon)
	createTestLesson(t, db, student.ID, teacher.ID, tariff.ID,
		time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC), models.LessonNotConfirmed)

	lessonStart := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	_, err := SelectActiveTariff(db, student.ID, lessonStart, false, now)
	assert.ErrorIs(t, err, ErrHoursOrValidityExhausted)

	// moving one of those bookings frees its own reservation
	got, err := SelectActiveTariff(db, student.ID, lessonStart, true, now)
	require.NoError(t, err)
	assert.Equal(t, tariff.ID, got.ID)
}

func TestSelectActiveTariffTerminalLessonsReleaseReservations(t *testing.T) {
	db := newTestDB(t)
	student := createTestUser(t, db, "student")
	teacher := createTestUser(t, db, "teacher")
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	tariff := createTestTariff(t, db, student.ID, testTariffOpts{
		QuantityHours:  2,
		CompletedHours: 1,
		ExpiredIn:      timePtr(now.Add(30 * 24 * time.Hour)),
	})

	// already classified, holds no reservation even though it is in the future
	createTestLesson(t, db, student.ID, teacher.ID, tariff.ID,
		time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC), models.LessonUnSuccess)

	got, err := SelectActiveTariff(db, student.ID, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC), false, now)
	require.NoError(t, err)
	assert.Equal(t, tariff.ID, got.ID)
}

func TestActivateNextTariff(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("starts the window of a dormant tariff", func(t *testing.T) {
		db := newTestDB(t)
		student := createTestUser(t, db, "student")
		tariff := createTestTariff(t, db, student.ID, testTariffOpts{
			WeeksActive: 6,
			ExpiredIn:   nil,
		})

		require.NoError(t, ActivateNextTariff(db, student.ID, now))

		var got models.PurchasedTariff
		require.NoError(t, db.First(&got, "id = ?", tariff.ID).Error)
		require.NotNil(t, got.ExpiredIn)
		assert.WithinDuration(t, now.Add(6*7*24*time.Hour), *got.ExpiredIn, time.Second)
	})

	t.Run("leaves an already running window alone", func(t *testing.T) {
		db := newTestDB(t)
		student := createTestUser(t, db, "student")
		expiredIn := now.Add(10 * 24 * time.Hour)
		tariff := createTestTariff(t, db, student.ID, testTariffOpts{
			ExpiredIn: timePtr(expiredIn),
		})

		require.NoError(t, ActivateNextTariff(db, student.ID, now))

		var got models.PurchasedTariff
		require.NoError(t, db.First(&got, "id = ?", tariff.ID).Error)
		require.NotNil(t, got.ExpiredIn)
		assert.WithinDuration(t, expiredIn, *got.ExpiredIn, time.Second)
	})

	t.Run("skips exhausted tariffs", func(t *testing.T) {
		db := newTestDB(t)
		student := createTestUser(t, db, "student")
		createTestTariff(t, db, student.ID, testTariffOpts{
			QuantityHours:  5,
			CompletedHours: 5,
			ExpiredIn:      timePtr(now.Add(-time.Hour)),
			CreatedAt:      now.Add(-72 * time.Hour),
		})
		next := createTestTariff(t, db, student.ID, testTariffOpts{
			WeeksActive: 4,
			CreatedAt:   now.Add(-time.Hour),
		})

		require.NoError(t, ActivateNextTariff(db, student.ID, now))

		var got models.PurchasedTariff
		require.NoError(t, db.First(&got, "id = ?", next.ID).Error)
		require.NotNil(t, got.ExpiredIn)
		assert.WithinDuration(t, now.Add(4*7*24*time.Hour), *got.ExpiredIn, time.Second)
	})
}

func TestConsumeTariffHour(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("records one hour", func(t *testing.T) {
		db := newTestDB(t)
		student := createTestUser(t, db, "student")
		tariff := createTestTariff(t, db, student.ID, testTariffOpts{
			QuantityHours:  10,
			CompletedHours: 3,
			ExpiredIn:      timePtr(now.Add(30 * 24 * time.Hour)),
		})

		got, err := ConsumeTariffHour(db, tariff.ID, now)
		require.NoError(t, err)
		assert.Equal(t, 4, got.CompletedHours)
	})

	t.Run("exhaustion activates the next tariff", func(t *testing.T) {
		db := newTestDB(t)
		student := createTestUser(t, db, "student")
		current := createTestTariff(t, db, student.ID, testTariffOpts{
			QuantityHours:  5,
			CompletedHours: 4,
			ExpiredIn:      timePtr(now.Add(30 * 24 * time.Hour)),
			CreatedAt:      now.Add(-48 * time.Hour),
		})
		next := createTestTariff(t, db, student.ID, testTariffOpts{
			WeeksActive: 8,
			CreatedAt:   now.Add(-time.Hour),
		})

		got, err := ConsumeTariffHour(db, current.ID, now)
		require.NoError(t, err)
		assert.Equal(t, 5, got.CompletedHours)
		assert.False(t, got.HasRemainingHours())

		var activated models.PurchasedTariff
		require.NoError(t, db.First(&activated, "id = ?", next.ID).Error)
		require.NotNil(t, activated.ExpiredIn)
		assert.WithinDuration(t, now.Add(8*7*24*time.Hour), *activated.ExpiredIn, time.Second)
	})
}
