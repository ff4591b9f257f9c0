package services

import (
	"time"

	"github.com/anjiri1684/study_hub/metrics"
	"github.com/anjiri1684/study_hub/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var timeNow = time.Now

// BookSession reserves a place in a session for the student. The session row
// stays locked from the capacity check until the counter is written, so two
// concurrent bookings can never both take the last place.
func BookSession(db *gorm.DB, p Principal, sessionID uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment

	err := db.Transaction(func(tx *gorm.DB) error {
		var session models.TutorSession
		if err := lockSession(tx, sessionID, &session); err != nil {
			return err
		}
		if session.Status != models.SessionScheduled {
			return badState("Session is not available")
		}

		var existing int64
		err := tx.Model(&models.Appointment{}).
			Where("tutor_session_id = ? AND student_id = ? AND status = ?", session.ID, p.ID, models.AppointmentBooked).
			Count(&existing).Error
		if err != nil {
			return errors.Wrap(err, "check existing booking")
		}
		if existing > 0 {
			return &DuplicateBookingError{}
		}

		count, err := countActiveBookings(tx, session.ID)
		if err != nil {
			return err
		}
		if count >= session.MaxCapacity {
			return &CapacityFullError{MaxCapacity: session.MaxCapacity, BookedCount: count}
		}

		appointment = models.Appointment{
			StudentID:      p.ID,
			TutorID:        session.TutorID,
			SubjectID:      session.SubjectID,
			TopicID:        session.TopicID,
			TutorSessionID: &session.ID,
			ScheduledDate:  session.SessionDate,
			Duration:       session.Duration,
			MeetingLink:    session.MeetingLink,
			Status:         models.AppointmentBooked,
		}
		if err := tx.Omit(clause.Associations).Create(&appointment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &DuplicateBookingError{}
			}
			return errors.Wrap(err, "create appointment")
		}

		booked := count + 1
		res := tx.Model(&models.TutorSession{}).
			Where("id = ? AND status = ?", session.ID, models.SessionScheduled).
			Updates(map[string]interface{}{
				"booked_count": booked,
				"is_available": booked < session.MaxCapacity,
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "update session capacity")
		}
		if res.RowsAffected == 0 {
			return badState("Session is not available")
		}
		return nil
	})

	metrics.BookingAttempts.WithLabelValues(bookingOutcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func bookingOutcome(err error) string {
	var full *CapacityFullError
	var dup *DuplicateBookingError
	var state *StateError
	switch {
	case err == nil:
		return metrics.OutcomeBooked
	case errors.As(err, &full):
		return metrics.OutcomeFull
	case errors.As(err, &dup):
		return metrics.OutcomeDuplicate
	case errors.As(err, &state):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}

// CancelBooking lets a student withdraw from a session that has not started.
func CancelBooking(db *gorm.DB, p Principal, appointmentID uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := db.First(&appointment, "id = ?", appointmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Appointment")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load appointment")
	}
	if !CanCancelBooking(p, &appointment) {
		return nil, forbidden("Not authorized to cancel this booking")
	}
	if timeNow().After(appointment.ScheduledDate) {
		return nil, badState("Cannot cancel past sessions")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return cancelLinkedAppointment(tx, &appointment, func(a *models.Appointment) error {
			if a.Status != models.AppointmentBooked {
				return badState("Only booked sessions can be cancelled")
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingCancellations.WithLabelValues(models.RoleStudent).Inc()
	return &appointment, nil
}

// cancelLinkedAppointment locks the linked session (when there is one) before
// re-reading the appointment, then cancels it and re-syncs the session. check
// runs against the freshly locked appointment.
func cancelLinkedAppointment(tx *gorm.DB, appointment *models.Appointment, check func(*models.Appointment) error) error {
	var session models.TutorSession
	hasSession := false
	if appointment.TutorSessionID != nil {
		err := lockSession(tx, *appointment.TutorSessionID, &session)
		var nf *NotFoundError
		switch {
		case err == nil:
			hasSession = true
		case errors.As(err, &nf):
		default:
			return err
		}
	}

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(appointment, "id = ?", appointment.ID).Error; err != nil {
		return errors.Wrap(err, "reload appointment")
	}
	if err := check(appointment); err != nil {
		return err
	}

	appointment.Status = models.AppointmentCancelled
	if err := tx.Model(appointment).Update("status", models.AppointmentCancelled).Error; err != nil {
		return errors.Wrap(err, "cancel appointment")
	}

	if hasSession {
		return syncSessionCapacity(tx, &session)
	}
	return nil
}

// ListStudentBookings returns the student's active session bookings, soonest first.
func ListStudentBookings(db *gorm.DB, studentID uuid.UUID) ([]models.Appointment, error) {
	var bookings []models.Appointment
	err := db.
		Preload("Tutor").
		Preload("Subject").
		Preload("Topic").
		Preload("TutorSession").
		Where("student_id = ? AND status = ? AND tutor_session_id IS NOT NULL", studentID, models.AppointmentBooked).
		Order("scheduled_date asc").
		Find(&bookings).Error
	return bookings, errors.Wrap(err, "list bookings")
}
