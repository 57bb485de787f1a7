package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the environment-backed defaults for the server and migrate
// commands. Flags can still override each value.
type Config struct {
	HTTPPort  int
	DBHost    string
	DBPort    int
	DBUser    string
	DBPass    string
	DBName    string
	RedisAddr string
}

// Load reads .env if present and falls back to documented defaults.
func Load() *Config {
	godotenv.Load()

	return &Config{
		HTTPPort:  getEnvIntOrDefault("HTTP_PORT", 8081),
		DBHost:    getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:    getEnvIntOrDefault("DB_PORT", 5432),
		DBUser:    getEnvOrDefault("DB_USER", "admin"),
		DBPass:    getEnvOrDefault("DB_PASS", "securepassword"),
		DBName:    getEnvOrDefault("DB_NAME", "casalink"),
		RedisAddr: getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
	}
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
