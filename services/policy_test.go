package services

import (
	"testing"

	"github.com/anjiri1684/study_hub/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCapabilityChecks(t *testing.T) {
	tutor := Principal{ID: uuid.New(), Role: models.RoleTutor}
	otherTutor := Principal{ID: uuid.New(), Role: models.RoleTutor}
	student := Principal{ID: uuid.New(), Role: models.RoleStudent}
	admin := Principal{ID: uuid.New(), Role: models.RoleAdmin}

	session := &models.TutorSession{TutorID: tutor.ID}
	apt := &models.Appointment{TutorID: tutor.ID, StudentID: student.ID}

	assert.True(t, CanManageSession(tutor, session))
	assert.False(t, CanManageSession(otherTutor, session))
	assert.False(t, CanManageSession(admin, session))
	// A student id that happens to match never manages a session.
	assert.False(t, CanManageSession(Principal{ID: tutor.ID, Role: models.RoleStudent}, session))

	assert.True(t, CanCancelBooking(student, apt))
	assert.False(t, CanCancelBooking(tutor, apt))

	assert.True(t, CanRemoveFromSession(tutor, apt))
	assert.False(t, CanRemoveFromSession(otherTutor, apt))

	assert.True(t, CanViewAppointment(student, apt))
	assert.True(t, CanViewAppointment(tutor, apt))
	assert.True(t, CanViewAppointment(admin, apt))
	assert.False(t, CanViewAppointment(otherTutor, apt))

	assert.True(t, CanDecideAppointment(tutor, apt))
	assert.False(t, CanDecideAppointment(student, apt))

	assert.True(t, CanCancelAppointment(student, apt))
	assert.True(t, CanCancelAppointment(tutor, apt))
	assert.False(t, CanCancelAppointment(admin, apt))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "Session not found", notFound("Session").Error())
	assert.Equal(t, "Session is full", (&CapacityFullError{MaxCapacity: 2, BookedCount: 2}).Error())
	assert.Equal(t, "You already booked this session", (&DuplicateBookingError{}).Error())
	assert.Equal(t, "Cannot reduce capacity below 3 (current bookings)", (&CapacityError{BookedCount: 3}).Error())
}
