package database

import (
	"time"

	config "github.com/anjiri1684/study_hub/configs"
	"github.com/anjiri1684/study_hub/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// GormConfig is shared by the Postgres connection and the test databases.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func ConnectDB(dsn string) error {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	DB = db
	log.Info().Msg("database connected")
	return nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "migrate database")
	}
	log.Info().Msg("database migration successful")
	return nil
}

// SeedAdmin creates the configured admin account once.
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return errors.Wrap(err, "check for admin user")
	}
	if count > 0 {
		log.Debug().Str("email", cfg.AdminEmail).Msg("admin user already exists")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	admin := models.User{
		Name:     cfg.AdminFullName,
		Email:    cfg.AdminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return errors.Wrap(err, "seed admin user")
	}

	log.Info().Str("email", admin.Email).Msg("admin user seeded")
	return nil
}
