package handlers

import (
	"time"

	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/notifications"
	"github.com/anjiri1684/study_hub/services"
	"github.com/anjiri1684/study_hub/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Subject     string    `json:"subject"`
	Topic       string    `json:"topic"`
	SessionDate time.Time `json:"sessionDate"`
	Duration    int       `json:"duration" validate:"gte=0"`
	MaxCapacity int       `json:"maxCapacity"`
	MeetingLink *string   `json:"meetingLink" validate:"omitempty,url"`
	Description *string   `json:"description"`
}

type UpdateSessionRequest struct {
	SessionDate *time.Time `json:"sessionDate"`
	Duration    *int       `json:"duration"`
	MaxCapacity *int       `json:"maxCapacity"`
	MeetingLink *string    `json:"meetingLink" validate:"omitempty,url"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
}

type BookSessionRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
}

func subjectNameByID(id uuid.UUID) string {
	var subject models.Subject
	if err := database.DB.Select("name").First(&subject, "id = ?", id).Error; err != nil {
		return subjectName(nil)
	}
	return subject.Name
}

func GetAvailableSessions(c *fiber.Ctx) error {
	var filter services.SessionFilter
	var err error
	if filter.SubjectID, err = optionalID(c.Query("subject"), "subject"); err != nil {
		return respondError(c, err)
	}
	if filter.TopicID, err = optionalID(c.Query("topic"), "topic"); err != nil {
		return respondError(c, err)
	}
	if raw := c.Query("date"); raw != "" {
		if filter.From, err = parseDay(raw); err != nil {
			return respondError(c, err)
		}
	}

	sessions, err := services.ListAvailableSessions(database.DB, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessions)
}

func GetSessionDetails(c *fiber.Ctx) error {
	id, err := paramID(c, "sessionId", "session")
	if err != nil {
		return respondError(c, err)
	}
	session, err := services.GetSessionDetails(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func BookSession(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	var req BookSessionRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(req) != nil {
		return respondError(c, &services.ValidationError{Message: "Session ID is required"})
	}

	appointment, err := services.BookSession(database.DB, p, uuid.MustParse(req.SessionID))
	if err != nil {
		return respondError(c, err)
	}

	subject, body := notifications.BookingConfirmed(subjectNameByID(appointment.SubjectID), appointment.ScheduledDate)
	announce([]uuid.UUID{appointment.StudentID}, websocket.Event{
		Type:          websocket.EventSessionBooked,
		SessionID:     appointment.TutorSessionID.String(),
		AppointmentID: appointment.ID.String(),
		Message:       "Session booked successfully",
	}, subject, body)
	websocket.Notify(websocket.Event{
		Type:          websocket.EventSessionBooked,
		SessionID:     appointment.TutorSessionID.String(),
		AppointmentID: appointment.ID.String(),
		Message:       "A student booked your session",
	}, appointment.TutorID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Session booked successfully",
		"appointment": appointment,
	})
}

func GetStudentSessions(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	bookings, err := services.ListStudentBookings(database.DB, p.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bookings)
}

func CancelBooking(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "appointmentId", "appointment")
	if err != nil {
		return respondError(c, err)
	}
	appointment, err := services.CancelBooking(database.DB, p, id)
	if err != nil {
		return respondError(c, err)
	}

	event := websocket.Event{
		Type:          websocket.EventBookingCancelled,
		AppointmentID: appointment.ID.String(),
		Message:       "A student cancelled their booking",
	}
	if appointment.TutorSessionID != nil {
		event.SessionID = appointment.TutorSessionID.String()
	}
	websocket.Notify(event, appointment.TutorID)

	return c.JSON(fiber.Map{"message": "Booking cancelled successfully", "appointment": appointment})
}

func CreateSession(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreateSessionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	in := services.CreateSessionInput{
		SessionDate: req.SessionDate,
		Duration:    req.Duration,
		MaxCapacity: req.MaxCapacity,
		MeetingLink: req.MeetingLink,
		Description: req.Description,
	}
	if req.Subject != "" {
		id, err := uuid.Parse(req.Subject)
		if err != nil {
			return respondError(c, &services.ValidationError{Message: "Invalid subject ID"})
		}
		in.SubjectID = id
	}
	if in.TopicID, err = optionalID(req.Topic, "topic"); err != nil {
		return respondError(c, err)
	}

	session, err := services.CreateSession(database.DB, p, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Session created successfully", "session": session})
}

func GetTutorSessions(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	sessions, err := services.ListTutorSessions(database.DB, p.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessions)
}

func GetSessionWithStudents(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "sessionId", "session")
	if err != nil {
		return respondError(c, err)
	}
	roster, err := services.GetSessionRoster(database.DB, p, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(roster)
}

func UpdateSession(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "sessionId", "session")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateSessionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	session, err := services.UpdateSession(database.DB, p, id, services.SessionPatch{
		SessionDate: req.SessionDate,
		Duration:    req.Duration,
		MaxCapacity: req.MaxCapacity,
		MeetingLink: req.MeetingLink,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Session updated successfully", "session": session})
}

func RescheduleSession(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "sessionId", "session")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		NewDate *time.Time `json:"newDate"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, &services.ValidationError{Message: "New date is required"})
	}

	result, err := services.RescheduleSession(database.DB, p, id, req.NewDate)
	if err != nil {
		return respondError(c, err)
	}

	subject, body := notifications.SessionRescheduled(subjectNameByID(result.Session.SubjectID), result.OldDate, result.NewDate)
	announce(studentIDs(result.Affected), websocket.Event{
		Type:      websocket.EventSessionRescheduled,
		SessionID: result.Session.ID.String(),
		Message:   "Your session was rescheduled",
	}, subject, body)

	return c.JSON(fiber.Map{
		"message": "Session rescheduled successfully",
		"session": result.Session,
		"oldDate": result.OldDate,
		"newDate": result.NewDate,
	})
}

func CompleteSession(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "sessionId", "session")
	if err != nil {
		return respondError(c, err)
	}
	result, err := services.CompleteSession(database.DB, p, id)
	if err != nil {
		return respondError(c, err)
	}

	websocket.Notify(websocket.Event{
		Type:      websocket.EventSessionCompleted,
		SessionID: result.Session.ID.String(),
		Message:   "Session marked as completed",
	}, studentIDs(result.Affected)...)

	return c.JSON(fiber.Map{"message": "Session marked as completed", "session": result.Session})
}

func CancelSession(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "sessionId", "session")
	if err != nil {
		return respondError(c, err)
	}
	result, err := services.CancelSession(database.DB, p, id)
	if err != nil {
		return respondError(c, err)
	}

	subject, body := notifications.SessionCancelled(subjectNameByID(result.Session.SubjectID), result.Session.SessionDate)
	announce(studentIDs(result.Affected), websocket.Event{
		Type:      websocket.EventSessionCancelled,
		SessionID: result.Session.ID.String(),
		Message:   "Your session was cancelled by the tutor",
	}, subject, body)

	return c.JSON(fiber.Map{
		"message":           "Session cancelled successfully",
		"session":           result.Session,
		"cancelledBookings": len(result.Affected),
	})
}

func RemoveStudentFromSession(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	sessionID, err := paramID(c, "sessionId", "session")
	if err != nil {
		return respondError(c, err)
	}
	appointmentID, err := paramID(c, "appointmentId", "appointment")
	if err != nil {
		return respondError(c, err)
	}

	appointment, err := services.RemoveStudent(database.DB, p, sessionID, appointmentID)
	if err != nil {
		return respondError(c, err)
	}

	subject, body := notifications.RemovedFromSession(subjectNameByID(appointment.SubjectID), appointment.ScheduledDate)
	announce([]uuid.UUID{appointment.StudentID}, websocket.Event{
		Type:          websocket.EventRemovedFromSession,
		SessionID:     sessionID.String(),
		AppointmentID: appointment.ID.String(),
		Message:       "You were removed from the session",
	}, subject, body)

	return c.JSON(fiber.Map{"message": "Student removed from session", "appointment": appointment})
}
