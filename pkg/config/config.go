package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/joho/godotenv"
)

// DefaultThreshold is the similarity threshold used when none is configured
const DefaultThreshold = 0.9

// DefaultCommonPrefixes are email local-parts too generic to identify a person
var DefaultCommonPrefixes = []string{"me", "github", "mail", "hi", "hello", "info", "contact"}

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Match    MatchConfig
	GitHub   GitHubConfig
	Clone    CloneConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
	APIToken     string // Empty disables token checks
}

type DatabaseConfig struct {
	Path string
}

type MatchConfig struct {
	Threshold      float64
	Workers        int
	JobWorkers     int
	CommonPrefixes []string
}

type GitHubConfig struct {
	Token     string
	RateLimit int
}

type CloneConfig struct {
	BasePath string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
			APIToken:     getEnv("API_TOKEN", ""),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./devmatch.db"),
		},
		Match: MatchConfig{
			Threshold:      getEnvAsFloat("MATCH_THRESHOLD", DefaultThreshold),
			Workers:        getEnvAsInt("MATCH_WORKERS", runtime.NumCPU()),
			JobWorkers:     getEnvAsInt("MATCH_JOB_WORKERS", 1),
			CommonPrefixes: getEnvAsList("MATCH_COMMON_PREFIXES", DefaultCommonPrefixes),
		},
		GitHub: GitHubConfig{
			Token:     getEnv("GITHUB_TOKEN", ""),
			RateLimit: getEnvAsInt("GITHUB_RATE_LIMIT", 10),
		},
		Clone: CloneConfig{
			BasePath: getEnv("CLONE_BASE_PATH", "./clones"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	AppConfig = cfg
	return nil
}

// Validate rejects settings the matcher cannot run with
func (c *Config) Validate() error {
	if err := models.ValidateThreshold(c.Match.Threshold); err != nil {
		return fmt.Errorf("invalid MATCH_THRESHOLD: %w", err)
	}
	if c.Match.Workers < 1 {
		return fmt.Errorf("invalid MATCH_WORKERS: must be at least 1, got %d", c.Match.Workers)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as float or returns a default value.
// A value that does not parse is kept as NaN so Validate reports it.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return floatValue
}

// getEnvAsList splits a comma separated environment variable
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
