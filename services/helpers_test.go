package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	tutor   models.User
	subject models.Subject
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	tutor := testutil.CreateUser(t, db, "tutor", models.RoleTutor)
	subject := testutil.CreateSubject(t, db, "Calculus", tutor.ID)
	return &fixture{db: db, tutor: tutor, subject: subject}
}

func (f *fixture) tutorPrincipal() Principal {
	return Principal{ID: f.tutor.ID, Role: models.RoleTutor}
}

func (f *fixture) student(t *testing.T, name string) Principal {
	t.Helper()
	u := testutil.CreateUser(t, f.db, name, models.RoleStudent)
	return Principal{ID: u.ID, Role: models.RoleStudent}
}

func (f *fixture) session(t *testing.T, capacity int) models.TutorSession {
	t.Helper()
	return testutil.CreateSession(t, f.db, f.tutor.ID, f.subject.ID, testutil.FutureTime(48*time.Hour), capacity)
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) models.TutorSession {
	t.Helper()
	var s models.TutorSession
	require.NoError(t, f.db.First(&s, "id = ?", id).Error)
	return s
}

func (f *fixture) appointment(t *testing.T, id uuid.UUID) models.Appointment {
	t.Helper()
	var a models.Appointment
	require.NoError(t, f.db.First(&a, "id = ?", id).Error)
	return a
}

// requireConsistent checks the capacity and availability invariants of a
// session against its live bookings.
func (f *fixture) requireConsistent(t *testing.T, id uuid.UUID) models.TutorSession {
	t.Helper()
	s := f.reload(t, id)
	live, err := countActiveBookings(f.db, id)
	require.NoError(t, err)
	require.LessOrEqual(t, live, s.MaxCapacity)
	require.Equal(t, live, s.BookedCount, "cached bookedCount drifted")
	require.Equal(t, s.OpenFor(live), s.IsAvailable, "isAvailable inconsistent")
	return s
}

func withClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}

func ptr[T any](v T) *T { return &v }
