package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartDueSessions(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	past := testutil.CreateSession(t, f.db, f.tutor.ID, f.subject.ID, now.Add(-time.Minute), 3)
	future := f.session(t, 3)

	started, err := StartDueSessions(f.db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), started)

	s := f.requireConsistent(t, past.ID)
	assert.Equal(t, models.SessionOngoing, s.Status)
	assert.False(t, s.IsAvailable)

	s = f.requireConsistent(t, future.ID)
	assert.Equal(t, models.SessionScheduled, s.Status)
	assert.True(t, s.IsAvailable)
}

func TestReconcileScheduledRepairsDrift(t *testing.T) {
	f := newFixture(t)
	clean := f.session(t, 2)
	dirty := f.session(t, 2)

	_, err := BookSession(f.db, f.student(t, "a"), dirty.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.TutorSession{}).Where("id = ?", dirty.ID).
		Updates(map[string]interface{}{"booked_count": 2, "is_available": false}).Error)

	drifted, err := ReconcileScheduled(f.db)
	require.NoError(t, err)
	require.Len(t, drifted, 1)
	assert.Equal(t, dirty.ID, drifted[0])

	s := f.requireConsistent(t, dirty.ID)
	assert.Equal(t, 1, s.BookedCount)
	assert.True(t, s.IsAvailable)
	f.requireConsistent(t, clean.ID)
}

func TestDueReminders(t *testing.T) {
	f := newFixture(t)
	soon := testutil.CreateSession(t, f.db, f.tutor.ID, f.subject.ID, testutil.FutureTime(62*time.Minute), 5)
	later := testutil.CreateSession(t, f.db, f.tutor.ID, f.subject.ID, testutil.FutureTime(3*time.Hour), 5)

	student := f.student(t, "ada")
	apt, err := BookSession(f.db, student, soon.ID)
	require.NoError(t, err)
	_, err = BookSession(f.db, student, later.ID)
	require.NoError(t, err)

	due, err := DueReminders(f.db, time.Now().Add(time.Hour), 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, apt.ID, due[0].ID)
	require.NotNil(t, due[0].Student)
	assert.Equal(t, student.ID, due[0].Student.ID)
}

func TestStartedSessionKeepsItsDate(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	started := testutil.CreateSession(t, f.db, f.tutor.ID, f.subject.ID, now.Add(-time.Minute), 3)
	_, err := StartDueSessions(f.db, now)
	require.NoError(t, err)

	later := now.Add(48 * time.Hour)
	_, err = RescheduleSession(f.db, f.tutorPrincipal(), started.ID, &later)
	assert.True(t, isState(err), "got %v", err)

	_, err = UpdateSession(f.db, f.tutorPrincipal(), started.ID, SessionPatch{SessionDate: &later})
	assert.True(t, isState(err), "got %v", err)

	s := f.requireConsistent(t, started.ID)
	assert.Equal(t, models.SessionOngoing, s.Status)
	assert.WithinDuration(t, now.Add(-time.Minute), s.SessionDate, time.Second)
}
