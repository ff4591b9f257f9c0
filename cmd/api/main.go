package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/study_hub/configs"
	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/handlers"
	"github.com/anjiri1684/study_hub/jobs"
	"github.com/anjiri1684/study_hub/logging"
	"github.com/anjiri1684/study_hub/notifications"
	"github.com/anjiri1684/study_hub/routes"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := database.ConnectDB(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(database.DB); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	if err := database.SeedAdmin(database.DB, cfg); err != nil {
		log.Error().Err(err).Msg("admin seed failed")
	}
	notifications.InitEmailService(cfg)
	handlers.InitFileStore(cfg)

	c := cron.New()
	schedule := map[string]func(){
		"*/5 * * * *":  jobs.SendSessionReminders,
		"* * * * *":    jobs.StartDueSessions,
		"*/15 * * * *": jobs.ReconcileCapacity,
	}
	for spec, job := range schedule {
		if _, err := c.AddFunc(spec, job); err != nil {
			log.Fatal().Err(err).Str("spec", spec).Msg("failed to schedule job")
		}
	}
	c.Start()
	log.Info().Int("jobs", len(schedule)).Msg("cron jobs scheduled")

	app := fiber.New(fiber.Config{
		AppName:      "Study Hub",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    60 << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Int("status", code).Msg("unhandled error")
			return c.Status(code).JSON(fiber.Map{"message": err.Error()})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   cfg.TimeZone,
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Register(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		<-c.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}
