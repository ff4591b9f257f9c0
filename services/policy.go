package services

import (
	"github.com/anjiri1684/study_hub/models"
	"github.com/google/uuid"
)

// Principal is the authenticated caller.
type Principal struct {
	ID   uuid.UUID
	Role string
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

func CanManageSession(p Principal, s *models.TutorSession) bool {
	return p.Role == models.RoleTutor && s.TutorID == p.ID
}

func CanCancelBooking(p Principal, a *models.Appointment) bool {
	return a.StudentID == p.ID
}

// CanRemoveFromSession requires the tutor named on the appointment itself.
func CanRemoveFromSession(p Principal, a *models.Appointment) bool {
	return p.Role == models.RoleTutor && a.TutorID == p.ID
}

func CanViewAppointment(p Principal, a *models.Appointment) bool {
	return p.IsAdmin() || a.StudentID == p.ID || a.TutorID == p.ID
}

func CanDecideAppointment(p Principal, a *models.Appointment) bool {
	return p.Role == models.RoleTutor && a.TutorID == p.ID
}

func CanCancelAppointment(p Principal, a *models.Appointment) bool {
	return a.StudentID == p.ID || a.TutorID == p.ID
}
