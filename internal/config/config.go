// Package config reads the service settings from the environment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the typed view of the service settings.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DBDriver    string
	DatabaseDSN string
	JWTSecret   string
	TokenTTL    time.Duration
	RedisAddr   string
	RedisDB     int
	RabbitMQURL string
	AdminKey    string
}

const defaultTokenTTL = 24 * time.Hour

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "astromatch.db")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("TOKEN_TTL", defaultTokenTTL.String())
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("ADMIN_KEY", "")
}

// Load reads the configuration from v, which is expected to have defaults
// and environment binding in place. Use New for the usual setup.
func Load(v *viper.Viper) Config {
	ttl, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil || ttl <= 0 {
		ttl = defaultTokenTTL
	}
	port := v.GetString("APP_PORT")
	if port != "" && !strings.Contains(port, ":") {
		port = ":" + port
	}
	return Config{
		Port:        port,
		Env:         v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		TokenTTL:    ttl,
		RedisAddr:   v.GetString("REDIS_ADDR"),
		RedisDB:     v.GetInt("REDIS_DB"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		AdminKey:    v.GetString("ADMIN_KEY"),
	}
}

// New builds a viper instance bound to the environment and loads it.
func New() Config {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return Load(v)
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "dev" || c.Env == "development"
}
