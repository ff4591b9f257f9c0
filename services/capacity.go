package services

import (
	"github.com/anjiri1684/study_hub/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockSession loads the session row with SELECT ... FOR UPDATE.
func lockSession(tx *gorm.DB, id uuid.UUID, session *models.TutorSession) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Session")
	}
	return errors.Wrap(err, "load session")
}

func countActiveBookings(tx *gorm.DB, sessionID uuid.UUID) (int, error) {
	var count int64
	err := tx.Model(&models.Appointment{}).
		Where("tutor_session_id = ? AND status = ?", sessionID, models.AppointmentBooked).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "count bookings")
	}
	return int(count), nil
}

// syncSessionCapacity recomputes bookedCount from the live booking count and
// derives isAvailable from it. Every path that changes bookings ends here.
func syncSessionCapacity(tx *gorm.DB, session *models.TutorSession) error {
	count, err := countActiveBookings(tx, session.ID)
	if err != nil {
		return err
	}
	session.BookedCount = count
	session.IsAvailable = session.OpenFor(count)

	err = tx.Model(&models.TutorSession{}).Where("id = ?", session.ID).Updates(map[string]interface{}{
		"booked_count": session.BookedCount,
		"is_available": session.IsAvailable,
	}).Error
	return errors.Wrap(err, "sync session capacity")
}

// ReconcileSession re-derives the cached capacity fields of one session.
// It reports whether the stored values had drifted.
func ReconcileSession(db *gorm.DB, id uuid.UUID) (bool, error) {
	drifted := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var session models.TutorSession
		if err := lockSession(tx, id, &session); err != nil {
			return err
		}
		before := session
		if err := syncSessionCapacity(tx, &session); err != nil {
			return err
		}
		drifted = before.BookedCount != session.BookedCount || before.IsAvailable != session.IsAvailable
		return nil
	})
	return drifted, err
}
