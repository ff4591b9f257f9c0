package routes

import (
	"github.com/anjiri1684/study_hub/handlers"
	"github.com/anjiri1684/study_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func UserRoutes(app *fiber.App) {
	users := app.Group("/api/users", middleware.Protected())

	users.Put("/profile/update", handlers.UpdateProfile)
	users.Get("/all/users", middleware.AdminRequired(), handlers.GetAllUsers)
	users.Get("/tutors/all", handlers.GetAllTutors)
	users.Delete("/account/deactivate", handlers.DeactivateAccount)
	users.Put("/:id/status", middleware.AdminRequired(), handlers.UpdateUserStatus)
	users.Get("/:id", handlers.GetUserProfile)
}

func UploadRoutes(app *fiber.App) {
	uploads := app.Group("/api/uploads", middleware.Protected())
	uploads.Get("/signature", handlers.GenerateUploadSignature)
}
