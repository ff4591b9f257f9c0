package routes

import "github.com/gofiber/fiber/v2"

// Register mounts every route group on app.
func Register(app *fiber.App) {
	PublicRoutes(app)
	AuthRoutes(app)
	UserRoutes(app)
	UploadRoutes(app)
	SubjectRoutes(app)
	MaterialRoutes(app)
	PlanRoutes(app)
	QuestionRoutes(app)
	MCQRoutes(app)
	AppointmentRoutes(app)
	AdminRoutes(app)
	RealtimeRoutes(app)
}
