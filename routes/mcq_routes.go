package routes

import (
	"github.com/anjiri1684/study_hub/handlers"
	"github.com/anjiri1684/study_hub/middleware"
	"github.com/anjiri1684/study_hub/models"
	"github.com/gofiber/fiber/v2"
)

func MCQRoutes(app *fiber.App) {
	mcq := app.Group("/api/mcq", middleware.Protected())
	editors := middleware.RoleRequired(models.RoleTutor, models.RoleAdmin)

	mcq.Get("/attempts/my", handlers.GetUserMCQAttempts)
	mcq.Get("/score/summary", handlers.GetQuizScore)
	mcq.Get("/subject/:subjectId", handlers.GetMCQsBySubject)
	mcq.Get("/topic/:topicId", handlers.GetMCQsByTopic)

	mcq.Post("", editors, handlers.CreateMCQ)
	mcq.Get("/:id", handlers.GetMCQByID)
	mcq.Put("/:id", editors, handlers.UpdateMCQ)
	mcq.Delete("/:id", editors, handlers.DeleteMCQ)
	mcq.Post("/:mcqId/submit", handlers.SubmitMCQAnswer)
}
