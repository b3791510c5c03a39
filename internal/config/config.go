package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig carries everything the server needs from the environment.
type AppConfig struct {
	Port         string
	DatabasePath string
	// UseMemoryStore switches persistence to the in-memory store, for local
	// development and tests.
	UseMemoryStore bool
	LogLevel       string

	JWTSecret         string
	AccessTokenExpiry time.Duration

	CORSAllowedOrigins []string

	// InsightsCacheTTL bounds how stale a cached analytics response may be.
	InsightsCacheTTL time.Duration

	MailgunDomain        string
	MailgunPrivateAPIKey string
	SenderEmail          string
	SenderName           string

	// DigestRunToken guards the digest trigger endpoint; empty disables it.
	DigestRunToken string
}

var Cfg *AppConfig

// LoadConfig reads .env (if present) and the process environment into Cfg.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: no .env file found, relying on OS environment variables and defaults.")
	}

	jwtSecret := getEnv("JWT_SECRET", "insecure-development-jwt-secret-minimum-32-bytes")
	if jwtSecret == "insecure-development-jwt-secret-minimum-32-bytes" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET for production.")
	}

	Cfg = &AppConfig{
		Port:           getEnv("PORT", "8080"),
		DatabasePath:   getEnv("DATABASE_PATH", "./fincast.db"),
		UseMemoryStore: getEnvAsBool("USE_MEMORY_STORE", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		JWTSecret:         jwtSecret,
		AccessTokenExpiry: getEnvAsDuration("ACCESS_TOKEN_EXPIRY", time.Hour),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		InsightsCacheTTL: getEnvAsDuration("INSIGHTS_CACHE_TTL", 5*time.Minute),

		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),
		SenderEmail:          getEnv("SENDER_EMAIL", "digest@fincast.local"),
		SenderName:           getEnv("SENDER_NAME", "Fincast"),

		DigestRunToken: getEnv("DIGEST_RUN_TOKEN", ""),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, MemoryStore=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.UseMemoryStore)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback)
	return fallback
}

func splitAndTrim(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
