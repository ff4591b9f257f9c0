package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentPending   = "pending"
	AppointmentBooked    = "booked"
	AppointmentApproved  = "approved"
	AppointmentRejected  = "rejected"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

var appointmentTransitions = map[string][]string{
	AppointmentPending:  {AppointmentApproved, AppointmentRejected, AppointmentCancelled},
	AppointmentApproved: {AppointmentCompleted, AppointmentCancelled},
	AppointmentBooked:   {AppointmentCancelled, AppointmentCompleted},
}

// Appointment is either a booking of a TutorSession or an ad-hoc request
// to a tutor. Only one booked appointment may exist per (session, student).
type Appointment struct {
	Base
	StudentID      uuid.UUID  `gorm:"type:uuid;not null;index;index:idx_active_booking,unique,where:status = 'booked'" json:"studentId"`
	TutorID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"tutorId"`
	SubjectID      uuid.UUID  `gorm:"type:uuid;not null" json:"subjectId"`
	TopicID        *uuid.UUID `gorm:"type:uuid" json:"topicId,omitempty"`
	TutorSessionID *uuid.UUID `gorm:"type:uuid;index;index:idx_active_booking,unique,where:status = 'booked'" json:"tutorSessionId,omitempty"`
	ScheduledDate  time.Time  `gorm:"not null;index" json:"scheduledDate"`
	Duration       int        `gorm:"not null" json:"duration"`
	MeetingLink    *string    `gorm:"size:512" json:"meetingLink,omitempty"`
	Status         string     `gorm:"size:20;not null;index" json:"status"`
	Description    string     `gorm:"type:text" json:"description"`
	Notes          string     `gorm:"type:text" json:"notes"`

	Student      *User         `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Tutor        *User         `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`
	Subject      *Subject      `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Topic        *Topic        `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	TutorSession *TutorSession `gorm:"foreignKey:TutorSessionID" json:"tutorSession,omitempty"`
}

func CanTransitionAppointment(from, to string) bool {
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// EndsAt is the exclusive end of the appointment interval.
func (a *Appointment) EndsAt() time.Time {
	d := a.Duration
	if d <= 0 {
		d = DefaultSessionDuration
	}
	return a.ScheduledDate.Add(time.Duration(d) * time.Minute)
}
