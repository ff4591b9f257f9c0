package services

import (
	"time"

	"github.com/anjiri1684/study_hub/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// StartDueSessions moves scheduled sessions whose start time has passed to
// ongoing, which also closes them for booking.
func StartDueSessions(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Model(&models.TutorSession{}).
		Where("status = ? AND session_date <= ?", models.SessionScheduled, now.UTC()).
		Updates(map[string]interface{}{
			"status":       models.SessionOngoing,
			"is_available": false,
		})
	return res.RowsAffected, errors.Wrap(res.Error, "start due sessions")
}

// ReconcileScheduled re-syncs every scheduled session and returns the ids
// whose cached counters had drifted.
func ReconcileScheduled(db *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Model(&models.TutorSession{}).
		Where("status = ?", models.SessionScheduled).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "list scheduled sessions")
	}

	var drifted []uuid.UUID
	for _, id := range ids {
		changed, err := ReconcileSession(db, id)
		if err != nil {
			return drifted, err
		}
		if changed {
			drifted = append(drifted, id)
		}
	}
	return drifted, nil
}

// DueReminders lists booked and approved appointments starting in [from, from+window).
func DueReminders(db *gorm.DB, from time.Time, window time.Duration) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := db.Preload("Student").Preload("Tutor").Preload("Subject").
		Where("status IN ? AND scheduled_date >= ? AND scheduled_date < ?",
			[]string{models.AppointmentBooked, models.AppointmentApproved}, from.UTC(), from.Add(window).UTC()).
		Order("scheduled_date asc").
		Find(&appointments).Error
	return appointments, errors.Wrap(err, "load due reminders")
}
