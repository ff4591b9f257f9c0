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

type AppointmentRequest struct {
	Tutor         string    `json:"tutor" validate:"required,uuid"`
	Subject       string    `json:"subject" validate:"required,uuid"`
	Topic         string    `json:"topic" validate:"omitempty,uuid"`
	ScheduledDate time.Time `json:"scheduledDate" validate:"required"`
	Duration      int       `json:"duration" validate:"gte=0"`
	Description   string    `json:"description"`
}

func CreateAppointment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	var req AppointmentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	topicID, err := optionalID(req.Topic, "topic")
	if err != nil {
		return respondError(c, err)
	}

	appointment, err := services.RequestAppointment(database.DB, p, services.AppointmentRequest{
		TutorID:       uuid.MustParse(req.Tutor),
		SubjectID:     uuid.MustParse(req.Subject),
		TopicID:       topicID,
		ScheduledDate: req.ScheduledDate,
		Duration:      req.Duration,
		Description:   req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}

	websocket.Notify(websocket.Event{
		Type:          websocket.EventAppointmentUpdated,
		AppointmentID: appointment.ID.String(),
		Message:       "New appointment request",
	}, appointment.TutorID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Appointment request created successfully",
		"appointment": appointment,
	})
}

func GetStudentAppointments(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	appointments, err := services.ListStudentAppointments(database.DB, p.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(appointments)
}

func GetTutorAppointments(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	appointments, err := services.ListTutorAppointments(database.DB, p.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(appointments)
}

func GetAppointmentByID(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "appointment")
	if err != nil {
		return respondError(c, err)
	}
	appointment, err := services.GetAppointment(database.DB, p, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(appointment)
}

// GetAvailableSlots lists a tutor's free hours on ?date=YYYY-MM-DD.
func GetAvailableSlots(c *fiber.Ctx) error {
	tutorID, err := paramID(c, "tutorId", "tutor")
	if err != nil {
		return respondError(c, err)
	}
	raw := c.Query("date")
	if raw == "" {
		return respondError(c, &services.ValidationError{Message: "Date is required"})
	}
	day, err := parseDay(raw)
	if err != nil {
		return respondError(c, err)
	}

	slots, err := services.GetAvailableSlots(database.DB, tutorID, day)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(slots)
}

// notifyDecision tells the student what the tutor decided.
func notifyDecision(a *models.Appointment) {
	link := ""
	if a.MeetingLink != nil {
		link = *a.MeetingLink
	}
	subject, body := notifications.AppointmentDecision(a.Status, a.ScheduledDate, link)
	announce([]uuid.UUID{a.StudentID}, websocket.Event{
		Type:          websocket.EventAppointmentUpdated,
		AppointmentID: a.ID.String(),
		Message:       "Appointment " + a.Status,
	}, subject, body)
}

func ApproveAppointment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "appointment")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		MeetingLink *string `json:"meetingLink" validate:"omitempty,url"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
	}

	appointment, err := services.ApproveAppointment(database.DB, p, id, req.MeetingLink)
	if err != nil {
		return respondError(c, err)
	}
	notifyDecision(appointment)
	return c.JSON(fiber.Map{"message": "Appointment approved successfully", "appointment": appointment})
}

func RejectAppointment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "appointment")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
	}

	appointment, err := services.RejectAppointment(database.DB, p, id, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	notifyDecision(appointment)
	return c.JSON(fiber.Map{"message": "Appointment rejected", "appointment": appointment})
}

func CompleteAppointment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "appointment")
	if err != nil {
		return respondError(c, err)
	}
	appointment, err := services.CompleteAppointment(database.DB, p, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Appointment marked as completed", "appointment": appointment})
}

func CancelAppointment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "appointment")
	if err != nil {
		return respondError(c, err)
	}
	appointment, err := services.CancelAppointment(database.DB, p, id)
	if err != nil {
		return respondError(c, err)
	}

	other := appointment.TutorID
	if p.ID == appointment.TutorID {
		other = appointment.StudentID
	}
	websocket.Notify(websocket.Event{
		Type:          websocket.EventAppointmentUpdated,
		AppointmentID: appointment.ID.String(),
		Message:       "Appointment cancelled",
	}, other)

	return c.JSON(fiber.Map{"message": "Appointment cancelled", "appointment": appointment})
}
