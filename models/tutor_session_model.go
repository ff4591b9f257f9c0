package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionScheduled = "scheduled"
	SessionOngoing   = "ongoing"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

const (
	DefaultSessionDuration = 60
	DefaultSessionCapacity = 10
	MinSessionCapacity     = 1
	MaxSessionCapacity     = 100
)

var sessionTransitions = map[string][]string{
	SessionScheduled: {SessionOngoing, SessionCompleted, SessionCancelled},
	SessionOngoing:   {SessionCompleted, SessionCancelled},
}

// TutorSession is a tutor-offered slot that several students can book.
// BookedCount caches the number of booked appointments; the appointments
// table is authoritative.
type TutorSession struct {
	Base
	TutorID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"tutorId"`
	SubjectID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"subjectId"`
	TopicID     *uuid.UUID `gorm:"type:uuid;index" json:"topicId,omitempty"`
	SessionDate time.Time  `gorm:"not null;index" json:"sessionDate"`
	Duration    int        `gorm:"not null" json:"duration"`
	MaxCapacity int        `gorm:"not null" json:"maxCapacity"`
	BookedCount int        `gorm:"not null" json:"bookedCount"`
	MeetingLink *string    `gorm:"size:512" json:"meetingLink,omitempty"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	Status      string     `gorm:"size:20;not null;index" json:"status"`
	IsAvailable bool       `gorm:"not null;index" json:"isAvailable"`

	Tutor   *User    `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Topic   *Topic   `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
}

func ValidSessionStatus(status string) bool {
	switch status {
	case SessionScheduled, SessionOngoing, SessionCompleted, SessionCancelled:
		return true
	}
	return false
}

func CanTransitionSession(from, to string) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Reschedulable reports whether the session date may still move. Once a
// session has started or finished its date is fixed.
func (s *TutorSession) Reschedulable() bool {
	return s.Status == SessionScheduled
}

// OpenFor reports whether the session accepts bookings with the given live count.
func (s *TutorSession) OpenFor(bookedCount int) bool {
	return s.Status == SessionScheduled && bookedCount < s.MaxCapacity
}
