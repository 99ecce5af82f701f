package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"chat-server/internal/store"
)

// Config is the full environment surface of the service.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8083"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"chat_user"`
	DBPassword string `envconfig:"DB_PASSWORD" default:""`
	DBName     string `envconfig:"DB_NAME" default:"chat_server"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"insecure-dev-secret"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	AMQPURL      string `envconfig:"AMQP_URL" default:""`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"chat.audit"`
}

// Load reads a .env file when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// StoreConfig maps the DB settings onto the store's connection surface.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Database: c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}
