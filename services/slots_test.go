package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hours(slots []Slot) []int {
	out := make([]int, len(slots))
	for i, s := range slots {
		out[i] = s.Hour
	}
	return out
}

func TestOpenSlotsEmptyDay(t *testing.T) {
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	slots := OpenSlots(day, nil)

	assert.Equal(t, []int{9, 10, 11, 12, 13, 14, 15, 16, 17}, hours(slots))
	assert.Equal(t, "AM", slots[0].Period)
	assert.Equal(t, "AM", slots[2].Period)
	assert.Equal(t, "PM", slots[3].Period)
	assert.True(t, slots[0].Time.Equal(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)))
}

func TestOpenSlotsHalfOpenContainment(t *testing.T) {
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return time.Date(2026, 5, 4, h, m, 0, 0, time.UTC) }

	appointments := []models.Appointment{
		{ScheduledDate: at(9, 0), Duration: 60},   // covers 9 only
		{ScheduledDate: at(11, 30), Duration: 90}, // covers 12
		{ScheduledDate: at(15, 0), Duration: 0},   // default hour covers 15
		{ScheduledDate: at(16, 15), Duration: 30}, // covers no slot start
	}
	slots := OpenSlots(day, appointments)
	assert.Equal(t, []int{10, 11, 13, 14, 16, 17}, hours(slots))
}

func TestOpenSlotsUsesDayLocation(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, nairobi)
	// 07:00 UTC is 10:00 in Nairobi.
	apt := models.Appointment{ScheduledDate: time.Date(2026, 5, 4, 7, 0, 0, 0, time.UTC), Duration: 60}

	slots := OpenSlots(day, []models.Appointment{apt})
	assert.NotContains(t, hours(slots), 10)
	assert.Contains(t, hours(slots), 9)
}

func TestGetAvailableSlots(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "a")
	day := time.Now().UTC().AddDate(0, 0, 3)
	y, m, d := day.Date()
	at := func(h int) time.Time { return time.Date(y, m, d, h, 0, 0, 0, time.UTC) }

	mk := func(h int, status string) {
		a := models.Appointment{
			StudentID: student.ID, TutorID: f.tutor.ID, SubjectID: f.subject.ID,
			ScheduledDate: at(h), Duration: 60, Status: status,
		}
		require.NoError(t, f.db.Create(&a).Error)
	}
	mk(9, models.AppointmentApproved)
	mk(10, models.AppointmentPending)
	mk(11, models.AppointmentCancelled)
	mk(12, models.AppointmentRejected)

	other := models.Appointment{
		StudentID: student.ID, TutorID: f.tutor.ID, SubjectID: f.subject.ID,
		ScheduledDate: at(13).AddDate(0, 0, 1), Duration: 60, Status: models.AppointmentApproved,
	}
	require.NoError(t, f.db.Create(&other).Error)

	slots, err := GetAvailableSlots(f.db, f.tutor.ID, at(0))
	require.NoError(t, err)
	assert.Equal(t, []int{11, 12, 13, 14, 15, 16, 17}, hours(slots))

	_, err = GetAvailableSlots(f.db, student.ID, at(0))
	assert.True(t, isNotFound(err), "got %v", err)

	_, err = GetAvailableSlots(f.db, uuid.New(), at(0))
	assert.True(t, isNotFound(err), "got %v", err)
}

func TestGetAvailableSlotsSeesSessionBookings(t *testing.T) {
	f := newFixture(t)
	day := time.Now().UTC().AddDate(0, 0, 2)
	y, m, d := day.Date()
	session := testutil.CreateSession(t, f.db, f.tutor.ID, f.subject.ID, time.Date(y, m, d, 14, 0, 0, 0, time.UTC), 2)
	_, err := BookSession(f.db, f.student(t, "a"), session.ID)
	require.NoError(t, err)

	slots, err := GetAvailableSlots(f.db, f.tutor.ID, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NotContains(t, hours(slots), 14)
}
