package services

import (
	"time"

	"github.com/anjiri1684/study_hub/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppointmentRequest struct {
	TutorID       uuid.UUID
	SubjectID     uuid.UUID
	TopicID       *uuid.UUID
	ScheduledDate time.Time
	Duration      int
	Description   string
}

// RequestAppointment records a student's ad-hoc request; the tutor decides later.
func RequestAppointment(db *gorm.DB, p Principal, in AppointmentRequest) (*models.Appointment, error) {
	if in.TutorID == uuid.Nil || in.SubjectID == uuid.Nil || in.ScheduledDate.IsZero() {
		return nil, invalid("Tutor, subject and scheduled date are required")
	}
	if in.Duration < 0 {
		return nil, invalid("Duration must be positive")
	}
	if in.Duration == 0 {
		in.Duration = models.DefaultSessionDuration
	}

	var nf *NotFoundError
	if err := requireTutor(db, in.TutorID); err != nil {
		if errors.As(err, &nf) {
			return nil, invalid("Invalid tutor selected")
		}
		return nil, err
	}
	if err := checkSubjectAndTopic(db, in.SubjectID, in.TopicID); err != nil {
		return nil, err
	}

	appointment := models.Appointment{
		StudentID:     p.ID,
		TutorID:       in.TutorID,
		SubjectID:     in.SubjectID,
		TopicID:       in.TopicID,
		ScheduledDate: in.ScheduledDate.UTC(),
		Duration:      in.Duration,
		Description:   in.Description,
		Status:        models.AppointmentPending,
	}
	if err := db.Omit(clause.Associations).Create(&appointment).Error; err != nil {
		return nil, errors.Wrap(err, "create appointment")
	}
	return &appointment, nil
}

func listAppointments(db *gorm.DB, column string, userID uuid.UUID) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := db.
		Preload("Student").
		Preload("Tutor").
		Preload("Subject").
		Preload("Topic").
		Where(column+" = ?", userID).
		Order("scheduled_date asc").
		Find(&appointments).Error
	return appointments, errors.Wrap(err, "list appointments")
}

func ListStudentAppointments(db *gorm.DB, studentID uuid.UUID) ([]models.Appointment, error) {
	return listAppointments(db, "student_id", studentID)
}

func ListTutorAppointments(db *gorm.DB, tutorID uuid.UUID) ([]models.Appointment, error) {
	return listAppointments(db, "tutor_id", tutorID)
}

func GetAppointment(db *gorm.DB, p Principal, id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := db.
		Preload("Student").
		Preload("Tutor").
		Preload("Subject").
		Preload("Topic").
		Preload("TutorSession").
		First(&appointment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Appointment")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load appointment")
	}
	if !CanViewAppointment(p, &appointment) {
		return nil, forbidden("Not authorized to view this appointment")
	}
	return &appointment, nil
}

func ApproveAppointment(db *gorm.DB, p Principal, id uuid.UUID, meetingLink *string) (*models.Appointment, error) {
	return decideAppointment(db, p, id, models.AppointmentApproved, func(updates map[string]interface{}) {
		if meetingLink != nil {
			updates["meeting_link"] = *meetingLink
		}
	})
}

func RejectAppointment(db *gorm.DB, p Principal, id uuid.UUID, notes string) (*models.Appointment, error) {
	return decideAppointment(db, p, id, models.AppointmentRejected, func(updates map[string]interface{}) {
		updates["notes"] = notes
	})
}

func CompleteAppointment(db *gorm.DB, p Principal, id uuid.UUID) (*models.Appointment, error) {
	return decideAppointment(db, p, id, models.AppointmentCompleted, nil)
}

// decideAppointment applies a tutor-side transition. A session booking leaves
// the booked state here, so its session is locked first and re-synced after.
func decideAppointment(db *gorm.DB, p Principal, id uuid.UUID, to string, extra func(map[string]interface{})) (*models.Appointment, error) {
	var appointment models.Appointment
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&appointment, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Appointment")
		}
		if err != nil {
			return errors.Wrap(err, "load appointment")
		}

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
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&appointment, "id = ?", id).Error; err != nil {
			return errors.Wrap(err, "reload appointment")
		}
		if !CanDecideAppointment(p, &appointment) {
			return forbidden("Only the assigned tutor can update this appointment")
		}
		if !models.CanTransitionAppointment(appointment.Status, to) {
			return badState("Cannot mark a %s appointment as %s", appointment.Status, to)
		}

		updates := map[string]interface{}{"status": to}
		if extra != nil {
			extra(updates)
		}
		if err := tx.Model(&appointment).Updates(updates).Error; err != nil {
			return errors.Wrap(err, "update appointment")
		}
		if hasSession {
			if err := syncSessionCapacity(tx, &session); err != nil {
				return err
			}
		}
		return tx.Preload("Student").Preload("Subject").First(&appointment, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// CancelAppointment is available to either participant. When the appointment
// is a session booking the session's capacity is re-synced.
func CancelAppointment(db *gorm.DB, p Principal, id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := db.First(&appointment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Appointment")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load appointment")
	}
	if !CanCancelAppointment(p, &appointment) {
		return nil, forbidden("Unauthorized to cancel this appointment")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return cancelLinkedAppointment(tx, &appointment, func(a *models.Appointment) error {
			if !models.CanTransitionAppointment(a.Status, models.AppointmentCancelled) {
				return badState("Cannot cancel a %s appointment", a.Status)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}
