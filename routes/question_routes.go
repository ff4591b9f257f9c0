package routes

import (
	"github.com/anjiri1684/study_hub/handlers"
	"github.com/anjiri1684/study_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func QuestionRoutes(app *fiber.App) {
	questions := app.Group("/api/questions", middleware.Protected())

	questions.Put("/answers/:id", handlers.UpdateAnswer)
	questions.Delete("/answers/:id", handlers.DeleteAnswer)
	questions.Patch("/answers/:id/helpful", handlers.MarkAnswerHelpful)
	questions.Patch("/answers/:id/accept", handlers.MarkAnswerAccepted)

	questions.Post("", handlers.CreateQuestion)
	questions.Get("", handlers.GetAllQuestions)
	questions.Get("/:id", handlers.GetQuestionByID)
	questions.Put("/:id", handlers.UpdateQuestion)
	questions.Delete("/:id", handlers.DeleteQuestion)
	questions.Post("/:questionId/answers", handlers.CreateAnswer)
}
