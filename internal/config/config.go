package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentStaging     = "staging"
	EnvironmentProduction  = "production"
)

type Config struct {
	// Database
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DatabaseURL string

	// Redis
	EnableRedis bool
	RedisURL    string

	// Server
	Port        string
	Environment string
	LogLevel    string

	// CORS
	CORSOrigins []string

	// Rate Limiting
	RateLimitRequests int
	RateLimitWindow   int
	RateLimitBurst    int

	// Features
	EnableMetrics bool

	// TreeCheckInterval is the number of minutes between page tree
	// validations while serving. Zero disables the check.
	TreeCheckInterval int

	// Languages
	PrimaryLanguage   string
	SecondaryLanguage string

	// Media
	UploadDir   string
	FixturesDir string
}

func New() *Config {
	c := &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "codista"),
		DBPassword: getEnv("DB_PASSWORD", "codista"),
		DBName:     getEnv("DB_NAME", "codista"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis
		EnableRedis: getEnvAsBool("ENABLE_REDIS", false),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),

		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: strings.ToLower(getEnv("ENVIRONMENT", EnvironmentDevelopment)),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// CORS
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		// Rate Limiting
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 0),

		// Features
		EnableMetrics:     getEnvAsBool("ENABLE_METRICS", true),
		TreeCheckInterval: getEnvAsInt("TREE_CHECK_INTERVAL", 30),

		// Languages
		PrimaryLanguage:   strings.ToLower(getEnv("PRIMARY_LANGUAGE", "de")),
		SecondaryLanguage: strings.ToLower(getEnv("SECONDARY_LANGUAGE", "en")),

		// Media
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
		FixturesDir: getEnv("FIXTURES_DIR", "./fixtures"),
	}

	c.DatabaseURL = c.DSN(c.DBName)

	return c
}

// DSN builds a connection string for the configured server pointing at the
// given database. Maintenance operations connect to "postgres" this way.
func (c *Config) DSN(database string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, database, c.DBSSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvironmentDevelopment
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}
