package config

import (
	"log"
	"os"

	"github.com/HapoSeiz/AlertShip/pkg/logger"
	"github.com/HapoSeiz/AlertShip/pkg/notification"
	"github.com/HapoSeiz/AlertShip/pkg/util"
)

type Config struct {
	Addr              string `env:"ADDR"`
	Mode              string `env:"MODE"`
	BaseURL           string `env:"BASE_URL"`
	DBDriver          string `env:"DB_DRIVER"`
	DSN               string `env:"DSN"`
	APIPrefix         string `env:"API_PREFIX"`
	AuthPrefix        string `env:"AUTH_PREFIX"`
	SessionSecret     string `env:"SESSION_SECRET"`
	SessionExpireDays int    `env:"SESSION_EXPIRE_DAYS"`

	// Places / geocoding provider. An empty key degrades the location
	// routes to an explicit 503, never a silent failure.
	GoogleMapsAPIKey string `env:"GOOGLE_MAPS_API_KEY"`
	GoogleClientID   string `env:"GOOGLE_CLIENT_ID"`

	DefaultLocale string `env:"DEFAULT_LOCALE"`
	LocalesPath   string `env:"LOCALES_PATH"`

	CacheType     string `env:"CACHE_TYPE"` // local | redis
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	PlacesRate     string `env:"PLACES_RATE"` // ulule/limiter format, e.g. "30-M"
	MetricsEnabled bool   `env:"METRICS_ENABLED"`

	// BackupSchedule is a cron expression; empty disables backups.
	BackupSchedule string `env:"BACKUP_SCHEDULE"`
	BackupPath     string `env:"BACKUP_PATH"`

	Log  logger.LogConfig
	Mail notification.MailConfig
}

var GlobalConfig *Config

func Load() error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	GlobalConfig = &Config{
		Addr:              util.GetEnvDefault("ADDR", ":8080"),
		Mode:              util.GetEnvDefault("MODE", "debug"),
		BaseURL:           util.GetEnvDefault("BASE_URL", "http://localhost:8080"),
		DBDriver:          util.GetEnv("DB_DRIVER"),
		DSN:               util.GetEnv("DSN"),
		APIPrefix:         util.GetEnvDefault("API_PREFIX", "/api"),
		AuthPrefix:        util.GetEnvDefault("AUTH_PREFIX", "/auth"),
		SessionSecret:     util.GetEnvDefault("SESSION_SECRET", "alertship-dev-secret"),
		SessionExpireDays: int(util.GetIntEnv("SESSION_EXPIRE_DAYS")),
		GoogleMapsAPIKey:  util.GetEnv("GOOGLE_MAPS_API_KEY"),
		GoogleClientID:    util.GetEnv("GOOGLE_CLIENT_ID"),
		DefaultLocale:     util.GetEnvDefault("DEFAULT_LOCALE", "en"),
		LocalesPath:       util.GetEnvDefault("LOCALES_PATH", "locales"),
		CacheType:         util.GetEnvDefault("CACHE_TYPE", "local"),
		RedisAddr:         util.GetEnv("REDIS_ADDR"),
		RedisPassword:     util.GetEnv("REDIS_PASSWORD"),
		RedisDB:           int(util.GetIntEnv("REDIS_DB")),
		PlacesRate:        util.GetEnvDefault("PLACES_RATE", "30-M"),
		MetricsEnabled:    util.GetBoolEnv("METRICS_ENABLED"),
		BackupSchedule:    util.GetEnv("BACKUP_SCHEDULE"),
		BackupPath:        util.GetEnvDefault("BACKUP_PATH", "backups"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Mail: notification.MailConfig{
			Host:     util.GetEnv("MAIL_HOST"),
			Port:     util.GetIntEnv("MAIL_PORT"),
			Username: util.GetEnv("MAIL_USERNAME"),
			Password: util.GetEnv("MAIL_PASSWORD"),
			From:     util.GetEnv("MAIL_FROM"),
		},
	}
	return nil
}
