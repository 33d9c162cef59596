package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all runtime settings, resolved from the environment once at
// startup and injected everywhere else.
type Config struct {
	Env  string
	Port string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
	JWTTTL    time.Duration

	ResendAPIKey string
	EmailFrom    string

	ChatbotBaseURL string
	ChatbotAPIKey  string

	AllowOrigins []string
}

// New reads configuration from the environment. MONGO_URI and JWT_SECRET are
// required; everything else has a usable default.
func New() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("PORT", "8080")
	v.SetDefault("MONGO_DATABASE", "placement_portal")
	v.SetDefault("JWT_TTL_MINUTES", 24*60)
	v.SetDefault("EMAIL_FROM", "noreply@placementportal.local")
	v.SetDefault("ALLOW_ORIGINS", "http://localhost:5173")

	cfg := &Config{
		Env:            v.GetString("APP_ENV"),
		Port:           v.GetString("PORT"),
		MongoURI:       v.GetString("MONGO_URI"),
		MongoDatabase:  v.GetString("MONGO_DATABASE"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTTTL:         time.Duration(v.GetInt("JWT_TTL_MINUTES")) * time.Minute,
		ResendAPIKey:   v.GetString("RESEND_API_KEY"),
		EmailFrom:      v.GetString("EMAIL_FROM"),
		ChatbotBaseURL: v.GetString("CHATBOT_BASE_URL"),
		ChatbotAPIKey:  v.GetString("CHATBOT_API_KEY"),
		AllowOrigins:   strings.Split(v.GetString("ALLOW_ORIGINS"), ","),
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGO_URI not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	return cfg, nil
}

// IsDevelopment reports whether the portal runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env != EnvProduction
}
