package routes

import (
	"github.com/anjiri1684/study_hub/handlers"
	"github.com/anjiri1684/study_hub/middleware"
	"github.com/anjiri1684/study_hub/models"
	"github.com/gofiber/fiber/v2"
)

func SubjectRoutes(app *fiber.App) {
	subjects := app.Group("/api/subjects", middleware.Protected())
	editors := middleware.RoleRequired(models.RoleTutor, models.RoleAdmin)

	subjects.Post("/topics/create", editors, handlers.CreateTopic)
	subjects.Put("/topics/:id", editors, handlers.UpdateTopic)
	subjects.Delete("/topics/:id", editors, handlers.DeleteTopic)

	subjects.Post("", editors, handlers.CreateSubject)
	subjects.Get("", handlers.GetAllSubjects)
	subjects.Get("/:subjectId/topics", handlers.GetTopicsBySubject)
	subjects.Get("/:id", handlers.GetSubjectByID)
	subjects.Put("/:id", editors, handlers.UpdateSubject)
	subjects.Delete("/:id", editors, handlers.DeleteSubject)
}
