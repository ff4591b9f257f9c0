package routes

import (
	"github.com/anjiri1684/study_hub/handlers"
	"github.com/anjiri1684/study_hub/middleware"
	"github.com/anjiri1684/study_hub/models"
	"github.com/gofiber/fiber/v2"
)

// AppointmentRoutes mounts the group session booking engine and the ad-hoc
// appointment requests. Static paths are registered before parameterised ones.
func AppointmentRoutes(app *fiber.App) {
	appointments := app.Group("/api/appointments", middleware.Protected())
	student := middleware.RoleRequired(models.RoleStudent)
	tutor := middleware.RoleRequired(models.RoleTutor)

	// Students
	appointments.Get("/sessions/available", handlers.GetAvailableSessions)
	appointments.Get("/sessions/:sessionId", handlers.GetSessionDetails)
	appointments.Post("/book", student, handlers.BookSession)
	appointments.Get("/my/bookings", student, handlers.GetStudentSessions)
	appointments.Patch("/bookings/:appointmentId/cancel", student, handlers.CancelBooking)

	// Tutors
	appointments.Post("/sessions/create", tutor, handlers.CreateSession)
	appointments.Get("/tutor/sessions", tutor, handlers.GetTutorSessions)
	appointments.Get("/tutor/sessions/:sessionId", tutor, handlers.GetSessionWithStudents)
	appointments.Patch("/tutor/sessions/:sessionId", tutor, handlers.UpdateSession)
	appointments.Patch("/tutor/sessions/:sessionId/reschedule", tutor, handlers.RescheduleSession)
	appointments.Patch("/tutor/sessions/:sessionId/complete", tutor, handlers.CompleteSession)
	appointments.Patch("/tutor/sessions/:sessionId/cancel", tutor, handlers.CancelSession)
	appointments.Patch("/tutor/sessions/:sessionId/remove/:appointmentId", tutor, handlers.RemoveStudentFromSession)

	// Ad-hoc requests
	appointments.Post("", student, handlers.CreateAppointment)
	appointments.Get("/my/appointments", student, handlers.GetStudentAppointments)
	appointments.Get("/tutor/appointments", tutor, handlers.GetTutorAppointments)
	appointments.Get("/tutor/:tutorId/available-slots", handlers.GetAvailableSlots)
	appointments.Get("/:id", handlers.GetAppointmentByID)
	appointments.Patch("/:id/approve", tutor, handlers.ApproveAppointment)
	appointments.Patch("/:id/reject", tutor, handlers.RejectAppointment)
	appointments.Patch("/:id/complete", tutor, handlers.CompleteAppointment)
	appointments.Patch("/:id/cancel", middleware.RoleRequired(models.RoleStudent, models.RoleTutor), handlers.CancelAppointment)
}
