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

type CreateSessionInput struct {
	SubjectID   uuid.UUID
	TopicID     *uuid.UUID
	SessionDate time.Time
	Duration    int
	MaxCapacity int
	MeetingLink *string
	Description *string
}

// SessionPatch holds the fields a tutor may edit; nil means unchanged.
type SessionPatch struct {
	SessionDate *time.Time
	Duration    *int
	MaxCapacity *int
	MeetingLink *string
	Description *string
	Status      *string
}

// CascadeResult is a session after a cancel or complete together with the
// appointments the cascade moved.
type CascadeResult struct {
	Session  models.TutorSession
	Affected []models.Appointment
}

type RescheduleResult struct {
	Session  models.TutorSession
	OldDate  time.Time
	NewDate  time.Time
	Affected []models.Appointment
}

type SessionRoster struct {
	Session     models.TutorSession  `json:"session"`
	Bookings    []models.Appointment `json:"bookings"`
	BookedCount int                  `json:"bookedCount"`
}

func validCapacity(n int) bool {
	return n >= models.MinSessionCapacity && n <= models.MaxSessionCapacity
}

func CreateSession(db *gorm.DB, p Principal, in CreateSessionInput) (*models.TutorSession, error) {
	if in.SubjectID == uuid.Nil || in.SessionDate.IsZero() || in.MaxCapacity == 0 {
		return nil, invalid("Subject, session date and max capacity are required")
	}
	if !validCapacity(in.MaxCapacity) {
		return nil, invalid("Max capacity must be between %d and %d", models.MinSessionCapacity, models.MaxSessionCapacity)
	}
	if in.Duration < 0 {
		return nil, invalid("Duration must be positive")
	}
	if in.Duration == 0 {
		in.Duration = models.DefaultSessionDuration
	}

	if err := checkSubjectAndTopic(db, in.SubjectID, in.TopicID); err != nil {
		return nil, err
	}

	session := models.TutorSession{
		TutorID:     p.ID,
		SubjectID:   in.SubjectID,
		TopicID:     in.TopicID,
		SessionDate: in.SessionDate.UTC(),
		Duration:    in.Duration,
		MaxCapacity: in.MaxCapacity,
		MeetingLink: in.MeetingLink,
		Description: in.Description,
		Status:      models.SessionScheduled,
		IsAvailable: true,
	}
	if err := db.Omit(clause.Associations).Create(&session).Error; err != nil {
		return nil, errors.Wrap(err, "create session")
	}
	return &session, nil
}

func checkSubjectAndTopic(db *gorm.DB, subjectID uuid.UUID, topicID *uuid.UUID) error {
	var subject models.Subject
	err := db.First(&subject, "id = ?", subjectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Subject")
	}
	if err != nil {
		return errors.Wrap(err, "load subject")
	}
	if topicID == nil {
		return nil
	}

	var topic models.Topic
	err = db.First(&topic, "id = ?", *topicID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Topic")
	}
	if err != nil {
		return errors.Wrap(err, "load topic")
	}
	if topic.SubjectID != subjectID {
		return invalid("Topic does not belong to the selected subject")
	}
	return nil
}

// loadOwnedSession locks the session and checks that p may manage it.
func loadOwnedSession(tx *gorm.DB, p Principal, id uuid.UUID, session *models.TutorSession) error {
	if err := lockSession(tx, id, session); err != nil {
		return err
	}
	if !CanManageSession(p, session) {
		return forbidden("Not authorized to manage this session")
	}
	return nil
}

// UpdateSession applies a tutor's partial edit. Capacity may never drop below
// the live booking count; a date change is mirrored onto linked appointments
// and a status change runs the same cascade as CancelSession/CompleteSession.
func UpdateSession(db *gorm.DB, p Principal, id uuid.UUID, patch SessionPatch) (*models.TutorSession, error) {
	var session models.TutorSession

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := loadOwnedSession(tx, p, id, &session); err != nil {
			return err
		}
		count, err := countActiveBookings(tx, session.ID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.MaxCapacity != nil {
			if !validCapacity(*patch.MaxCapacity) {
				return invalid("Max capacity must be between %d and %d", models.MinSessionCapacity, models.MaxSessionCapacity)
			}
			if *patch.MaxCapacity < count {
				return &CapacityError{BookedCount: count}
			}
			updates["max_capacity"] = *patch.MaxCapacity
		}
		if patch.Duration != nil {
			if *patch.Duration <= 0 {
				return invalid("Duration must be positive")
			}
			updates["duration"] = *patch.Duration
		}
		if patch.MeetingLink != nil {
			updates["meeting_link"] = *patch.MeetingLink
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.SessionDate != nil {
			if !session.Reschedulable() {
				return badState("Cannot change the date of a %s session", session.Status)
			}
			updates["session_date"] = patch.SessionDate.UTC()
		}

		cascadeTo := ""
		if patch.Status != nil && *patch.Status != session.Status {
			if !models.ValidSessionStatus(*patch.Status) {
				return invalid("Invalid status %q", *patch.Status)
			}
			if !models.CanTransitionSession(session.Status, *patch.Status) {
				return badState("Cannot change a %s session to %s", session.Status, *patch.Status)
			}
			updates["status"] = *patch.Status
			if *patch.Status == models.SessionCancelled || *patch.Status == models.SessionCompleted {
				cascadeTo = *patch.Status
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.TutorSession{}).Where("id = ?", session.ID).Updates(updates).Error; err != nil {
				return errors.Wrap(err, "update session")
			}
		}
		if patch.SessionDate != nil {
			if err := propagateSessionDate(tx, session.ID, patch.SessionDate.UTC()); err != nil {
				return err
			}
		}
		if cascadeTo != "" {
			if _, err := cascadeBookings(tx, session.ID, cascadeTo); err != nil {
				return err
			}
		}

		if err := tx.First(&session, "id = ?", session.ID).Error; err != nil {
			return errors.Wrap(err, "reload session")
		}
		return syncSessionCapacity(tx, &session)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func propagateSessionDate(tx *gorm.DB, sessionID uuid.UUID, at time.Time) error {
	err := tx.Model(&models.Appointment{}).
		Where("tutor_session_id = ?", sessionID).
		Update("scheduled_date", at).Error
	return errors.Wrap(err, "propagate session date")
}

// cascadeBookings moves every booked appointment of the session to status in
// one statement and returns the appointments it moved.
func cascadeBookings(tx *gorm.DB, sessionID uuid.UUID, status string) ([]models.Appointment, error) {
	var affected []models.Appointment
	err := tx.Preload("Student").
		Where("tutor_session_id = ? AND status = ?", sessionID, models.AppointmentBooked).
		Find(&affected).Error
	if err != nil {
		return nil, errors.Wrap(err, "load bookings")
	}

	err = tx.Model(&models.Appointment{}).
		Where("tutor_session_id = ? AND status = ?", sessionID, models.AppointmentBooked).
		Update("status", status).Error
	if err != nil {
		return nil, errors.Wrap(err, "cascade bookings")
	}
	for i := range affected {
		affected[i].Status = status
	}

	metrics.SessionCascades.WithLabelValues(status).Add(float64(len(affected)))
	return affected, nil
}

func RescheduleSession(db *gorm.DB, p Principal, id uuid.UUID, newDate *time.Time) (*RescheduleResult, error) {
	if newDate == nil || newDate.IsZero() {
		return nil, invalid("New date is required")
	}
	at := newDate.UTC()

	result := &RescheduleResult{NewDate: at}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := loadOwnedSession(tx, p, id, &result.Session); err != nil {
			return err
		}
		if !result.Session.Reschedulable() {
			return badState("Cannot reschedule a %s session", result.Session.Status)
		}
		result.OldDate = result.Session.SessionDate

		if err := tx.Model(&result.Session).Update("session_date", at).Error; err != nil {
			return errors.Wrap(err, "reschedule session")
		}
		result.Session.SessionDate = at
		if err := propagateSessionDate(tx, result.Session.ID, at); err != nil {
			return err
		}
		err := tx.Preload("Student").
			Where("tutor_session_id = ? AND status = ?", result.Session.ID, models.AppointmentBooked).
			Find(&result.Affected).Error
		return errors.Wrap(err, "load bookings")
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func CancelSession(db *gorm.DB, p Principal, id uuid.UUID) (*CascadeResult, error) {
	return finishSession(db, p, id, models.SessionCancelled)
}

func CompleteSession(db *gorm.DB, p Principal, id uuid.UUID) (*CascadeResult, error) {
	return finishSession(db, p, id, models.SessionCompleted)
}

// finishSession moves the session to a terminal status and its booked
// appointments with it, all in one transaction.
func finishSession(db *gorm.DB, p Principal, id uuid.UUID, status string) (*CascadeResult, error) {
	result := &CascadeResult{}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := loadOwnedSession(tx, p, id, &result.Session); err != nil {
			return err
		}
		if !models.CanTransitionSession(result.Session.Status, status) {
			return badState("Cannot mark a %s session as %s", result.Session.Status, status)
		}

		affected, err := cascadeBookings(tx, result.Session.ID, status)
		if err != nil {
			return err
		}
		result.Affected = affected

		result.Session.Status = status
		if err := tx.Model(&models.TutorSession{}).Where("id = ?", result.Session.ID).Update("status", status).Error; err != nil {
			return errors.Wrap(err, "update session status")
		}
		return syncSessionCapacity(tx, &result.Session)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveStudent cancels one booking on behalf of the tutor and reopens the place.
func RemoveStudent(db *gorm.DB, p Principal, sessionID, appointmentID uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := db.Transaction(func(tx *gorm.DB) error {
		var session models.TutorSession
		if err := lockSession(tx, sessionID, &session); err != nil {
			return err
		}

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&appointment, "id = ? AND tutor_session_id = ?", appointmentID, sessionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Appointment")
		}
		if err != nil {
			return errors.Wrap(err, "load appointment")
		}
		if !CanRemoveFromSession(p, &appointment) {
			return forbidden("Not authorized to remove this student")
		}
		if appointment.Status != models.AppointmentBooked {
			return badState("Only booked students can be removed")
		}

		appointment.Status = models.AppointmentCancelled
		if err := tx.Model(&appointment).Update("status", models.AppointmentCancelled).Error; err != nil {
			return errors.Wrap(err, "cancel appointment")
		}
		return syncSessionCapacity(tx, &session)
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingCancellations.WithLabelValues(models.RoleTutor).Inc()
	return &appointment, nil
}

func ListTutorSessions(db *gorm.DB, tutorID uuid.UUID) ([]models.TutorSession, error) {
	var sessions []models.TutorSession
	err := db.
		Preload("Subject").
		Preload("Topic").
		Where("tutor_id = ?", tutorID).
		Order("session_date asc").
		Find(&sessions).Error
	return sessions, errors.Wrap(err, "list tutor sessions")
}

// GetSessionRoster returns the owner's view of a session with its booked students.
func GetSessionRoster(db *gorm.DB, p Principal, id uuid.UUID) (*SessionRoster, error) {
	var session models.TutorSession
	err := db.Preload("Subject").Preload("Topic").First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Session")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}
	if !CanManageSession(p, &session) {
		return nil, forbidden("Not authorized to view this session")
	}

	roster := &SessionRoster{Session: session}
	err = db.Preload("Student").
		Where("tutor_session_id = ? AND status = ?", id, models.AppointmentBooked).
		Order("created_at asc").
		Find(&roster.Bookings).Error
	if err != nil {
		return nil, errors.Wrap(err, "load roster")
	}
	roster.BookedCount = len(roster.Bookings)
	roster.Session.BookedCount = roster.BookedCount
	return roster, nil
}
