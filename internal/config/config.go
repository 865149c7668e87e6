package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	OAuth    OAuthConfig
	SMTP     SMTPConfig
	Cleanup  CleanupConfig
}

type AppConfig struct {
	Name               string
	Version            string
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type OAuthConfig struct {
	Enabled      bool
	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string
	LogoutURL    string
	RedirectURI  string
	ClientID     string
	ClientSecret string
	Scope        string
	Audience     string
	Issuer       string
	// How long a verified userinfo response is reused before the provider
	// is asked again.
	UserInfoCacheTTL time.Duration
	// How long a pending login (state -> PKCE verifier) stays valid.
	LoginStateTTL time.Duration
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type CleanupConfig struct {
	// Cron spec for the expired-clipboard sweeper.
	Schedule string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "Clipboard API"),
			Version:            getEnv("APP_VERSION", "1.0.1"),
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		OAuth: OAuthConfig{
			Enabled:          getEnvAsBool("OAUTH2_ENABLED", false),
			AuthorizeURL:     getEnv("OAUTH2_AUTHORIZE_URL", ""),
			TokenURL:         getEnv("OAUTH2_TOKEN_URL", ""),
			UserInfoURL:      getEnv("OAUTH2_USERINFO_URL", ""),
			LogoutURL:        getEnv("OAUTH2_LOGOUT_URL", ""),
			RedirectURI:      getEnv("OAUTH2_REDIRECT_URI", ""),
			ClientID:         getEnv("OAUTH2_CLIENT_ID", ""),
			ClientSecret:     getEnv("OAUTH2_CLIENT_SECRET", ""),
			Scope:            getEnv("OAUTH2_SCOPE", "openid profile email"),
			Audience:         getEnv("OAUTH2_AUDIENCE", ""),
			Issuer:           getEnv("OAUTH2_ISSUER", ""),
			UserInfoCacheTTL: getEnvAsDuration("OAUTH2_USERINFO_CACHE_TTL", 5*time.Minute),
			LoginStateTTL:    getEnvAsDuration("OAUTH2_LOGIN_STATE_TTL", 10*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Clipboard"),
		},
		Cleanup: CleanupConfig{
			Schedule: getEnv("CLEANUP_SCHEDULE", "@every 5m"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
