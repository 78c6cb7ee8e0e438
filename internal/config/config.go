// Package config loads configuration from environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Client holds configuration for the lumix playback client.
type Client struct {
	APIBase     string        // base URL of the lumixd API
	UserID      string        // current user id, empty means unauthenticated
	LogFile     string        // debug log path, empty disables logging
	HTTPTimeout time.Duration // per-request timeout for API calls
}

// Server holds configuration for the lumixd daemon.
type Server struct {
	Port         string
	DBPath       string // SQLite database for favorite records
	SubtitlesDir string // per-movie subtitle text files
	LogLevel     string
	RateLimit    int // requests per minute per IP
}

// LoadClient reads client configuration from the environment.
func LoadClient() *Client {
	return &Client{
		APIBase:     getEnv("LUMIX_API", "http://localhost:8080"),
		UserID:      getEnv("LUMIX_USER", ""),
		LogFile:     getEnv("LUMIX_LOG_FILE", ""),
		HTTPTimeout: getDuration("LUMIX_HTTP_TIMEOUT", 10*time.Second),
	}
}

// LoadServer reads daemon configuration from the environment.
func LoadServer() *Server {
	cwd, _ := os.Getwd()

	return &Server{
		Port:         getEnv("LUMIXD_PORT", "8080"),
		DBPath:       getEnv("LUMIXD_DB", filepath.Join(cwd, "data", "lumix.db")),
		SubtitlesDir: getEnv("LUMIXD_SUBTITLES_DIR", filepath.Join(cwd, "data", "subtitles")),
		LogLevel:     getEnv("LUMIX_LOG_LEVEL", "info"),
		RateLimit:    getInt("LUMIXD_RATE_LIMIT", 600),
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
