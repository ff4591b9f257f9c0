package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        string        `koanf:"port"`
	DatabaseURL string        `koanf:"database_url"`
	JWTSecret   string        `koanf:"jwt_secret"`
	TokenTTL    time.Duration `koanf:"token_ttl"`
	TimeZone    string        `koanf:"time_zone"`
	CORSOrigins string        `koanf:"cors_origins"`

	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`
	AdminFullName string `koanf:"admin_full_name"`

	BrevoAPIKey     string `koanf:"brevo_api_key"`
	EmailSender     string `koanf:"email_sender"`
	EmailSenderName string `koanf:"email_sender_name"`

	CloudinaryURL string `koanf:"cloudinary_url"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	ReminderLeadTime time.Duration `koanf:"reminder_lead_time"`
}

// App is the process-wide configuration. It holds defaults until Load runs.
var App = defaultConfig()

func defaultConfig() *Config {
	return &Config{
		Port:             "8080",
		TokenTTL:         72 * time.Hour,
		TimeZone:         "Africa/Nairobi",
		CORSOrigins:      "*",
		AdminFullName:    "Platform Admin",
		EmailSenderName:  "Study Hub",
		LogLevel:         "info",
		LogFormat:        "console",
		ReminderLeadTime: time.Hour,
	}
}

// Load reads .env (if present), then layers environment variables over the
// defaults and stores the result in App.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Msg(".env file not found, reading from system environment variables")
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "load config defaults")
	}
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	App = cfg
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return errors.Wrapf(err, "invalid TIME_ZONE %q", c.TimeZone)
	}
	return nil
}

// Location resolves TimeZone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
