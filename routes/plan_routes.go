package routes

import (
	"github.com/anjiri1684/study_hub/handlers"
	"github.com/anjiri1684/study_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func PlanRoutes(app *fiber.App) {
	plans := app.Group("/api/plans", middleware.Protected())

	plans.Post("", handlers.CreatePlan)
	plans.Get("", handlers.GetStudentPlans)
	plans.Get("/range", handlers.GetPlansByDateRange)
	plans.Get("/progress/summary", handlers.GetLearningProgress)
	plans.Put("/:id", handlers.UpdatePlan)
	plans.Patch("/:id/complete", handlers.CompletePlan)
	plans.Delete("/:id", handlers.DeletePlan)
}
