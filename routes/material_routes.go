package routes

import (
	"github.com/anjiri1684/study_hub/handlers"
	"github.com/anjiri1684/study_hub/middleware"
	"github.com/anjiri1684/study_hub/models"
	"github.com/gofiber/fiber/v2"
)

func MaterialRoutes(app *fiber.App) {
	materials := app.Group("/api/materials", middleware.Protected())
	editors := middleware.RoleRequired(models.RoleTutor, models.RoleAdmin)

	materials.Post("/upload", editors, handlers.UploadMaterial)
	materials.Get("", handlers.GetAllMaterials)
	materials.Get("/subject/:subjectId", handlers.GetMaterialsBySubject)
	materials.Get("/topic/:topicId", handlers.GetMaterialsByTopic)
	materials.Get("/:id/download", handlers.DownloadMaterial)
	materials.Get("/:id", handlers.GetMaterialByID)
	materials.Put("/:id", editors, handlers.UpdateMaterial)
	materials.Delete("/:id", editors, handlers.DeleteMaterial)
}
