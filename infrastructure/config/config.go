package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion        string
	DynamoDBEndpoint string // local endpoint override, empty in AWS
	DynamoDBTable    string

	// Email configuration
	EmailProvider    string // "ses" or "noop"
	EmailFromAddress string
	EmailFromName    string

	// Logging
	LogLevel string

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables. Outside
// production a .env file is read first when present.
func LoadConfig() (*Config, error) {
	if getEnv("ENVIRONMENT", "development") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		DynamoDBTable:    getEnv("DYNAMODB_TABLE", "community"),

		EmailProvider:    getEnv("EMAIL_PROVIDER", "noop"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@example.com"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", ""),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required")
	}
	if c.IsProduction() {
		if c.EmailProvider == "ses" && c.EmailFromAddress == "" {
			return fmt.Errorf("EMAIL_FROM_ADDRESS is required when EMAIL_PROVIDER is ses")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}
