package routes

import (
	"github.com/anjiri1684/study_hub/handlers"
	"github.com/anjiri1684/study_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	admin := app.Group("/api/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/dashboard-analytics", handlers.GetDashboardAnalytics)
	admin.Get("/appointments", handlers.AdminGetAllAppointments)
	admin.Post("/sessions/:sessionId/reconcile", handlers.ReconcileSessionCapacity)
}
