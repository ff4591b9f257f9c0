package services

import (
	"time"

	"github.com/anjiri1684/study_hub/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type SessionFilter struct {
	SubjectID *uuid.UUID
	TopicID   *uuid.UUID
	// From is the earliest sessionDate; zero means now.
	From time.Time
}

// SessionView is a session with capacity fields derived from the live
// booking count. It never writes back to the stored row.
type SessionView struct {
	models.TutorSession
	AvailableSlots int  `json:"availableSlots"`
	IsFull         bool `json:"isFull"`
}

func newSessionView(s models.TutorSession, live int) SessionView {
	s.BookedCount = live
	slots := s.MaxCapacity - live
	if slots < 0 {
		slots = 0
	}
	return SessionView{TutorSession: s, AvailableSlots: slots, IsFull: live >= s.MaxCapacity}
}

func ListAvailableSessions(db *gorm.DB, f SessionFilter) ([]SessionView, error) {
	from := f.From
	if from.IsZero() {
		from = timeNow()
	}

	q := db.Preload("Tutor").Preload("Subject").Preload("Topic").
		Where("is_available = ? AND status = ? AND session_date >= ?", true, models.SessionScheduled, from.UTC())
	if f.SubjectID != nil {
		q = q.Where("subject_id = ?", *f.SubjectID)
	}
	if f.TopicID != nil {
		q = q.Where("topic_id = ?", *f.TopicID)
	}

	var sessions []models.TutorSession
	if err := q.Order("session_date asc").Find(&sessions).Error; err != nil {
		return nil, errors.Wrap(err, "list available sessions")
	}

	ids := make([]uuid.UUID, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	counts, err := liveBookingCounts(db, ids)
	if err != nil {
		return nil, err
	}

	views := make([]SessionView, len(sessions))
	for i, s := range sessions {
		views[i] = newSessionView(s, counts[s.ID])
	}
	return views, nil
}

func liveBookingCounts(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		TutorSessionID uuid.UUID
		Count          int
	}
	err := db.Model(&models.Appointment{}).
		Select("tutor_session_id, count(*) as count").
		Where("tutor_session_id IN ? AND status = ?", ids, models.AppointmentBooked).
		Group("tutor_session_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "count bookings")
	}
	for _, r := range rows {
		counts[r.TutorSessionID] = r.Count
	}
	return counts, nil
}

func GetSessionDetails(db *gorm.DB, id uuid.UUID) (*SessionView, error) {
	var session models.TutorSession
	err := db.Preload("Tutor").Preload("Subject").Preload("Topic").First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Session")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}

	live, err := countActiveBookings(db, session.ID)
	if err != nil {
		return nil, err
	}
	view := newSessionView(session, live)
	return &view, nil
}
