package routes

import (
	"time"

	"github.com/anjiri1684/study_hub/handlers"
	"github.com/anjiri1684/study_hub/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func AuthRoutes(app *fiber.App) {
	auth := app.Group("/api/auth")

	throttle := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many attempts, try again later"})
		},
	})
	auth.Post("/register", throttle, handlers.RegisterUser)
	auth.Post("/login", throttle, handlers.LoginUser)
	auth.Get("/current", middleware.Protected(), handlers.GetCurrentUser)
}
