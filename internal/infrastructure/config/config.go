// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreMongo    = "mongo"
	StoreFirebase = "firebase"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Store
	StoreDriver     string
	TripsCollection string

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Firebase
	FirebaseDatabaseURL     string
	FirebaseAdminJSON       string
	FirebaseCredentialsFile string

	// PostgreSQL (optional airport table)
	PostgresURI string

	// Flight provider
	AviationEdgeKey       string
	AviationEdgeBaseURL   string
	ProviderTimeout       time.Duration
	ProviderRatePerMinute int

	// Worker
	PollInterval      time.Duration
	CronSpec          string
	RegionUTCOffset   float64
	ETABuffer         time.Duration
	RefreshWindow     time.Duration
	RefreshCadence    time.Duration
	WorkerConcurrency int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		TripsCollection: getEnv("TRIPS_COLLECTION", "schedules"),

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "dispatch"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		FirebaseDatabaseURL:     strings.TrimRight(getEnv("FIREBASE_DATABASE_URL", ""), "/"),
		FirebaseAdminJSON:       getEnv("FIREBASE_ADMIN_JSON", ""),
		FirebaseCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		PostgresURI: getEnv("POSTGRES_URI", ""),

		AviationEdgeKey:       getEnv("AVIATIONEDGE_KEY", ""),
		AviationEdgeBaseURL:   strings.TrimRight(getEnv("AVIATIONEDGE_BASE_URL", "https://aviation-edge.com/v2/public"), "/"),
		ProviderTimeout:       time.Duration(getEnvAsInt("PROVIDER_TIMEOUT", 10)) * time.Second,
		ProviderRatePerMinute: getEnvAsInt("PROVIDER_RATE_PER_MINUTE", 60),

		PollInterval:      time.Duration(getEnvAsInt("ETA_POLL_INTERVAL", 60)) * time.Second,
		CronSpec:          getEnv("ETA_CRON", ""),
		RegionUTCOffset:   getEnvAsFloat("REGION_UTC_OFFSET_HOURS", 8),
		ETABuffer:         time.Duration(getEnvAsInt("ETA_BUFFER_MINUTES", 5)) * time.Minute,
		RefreshWindow:     time.Duration(getEnvAsInt("REFRESH_WINDOW_MINUTES", 60)) * time.Minute,
		RefreshCadence:    time.Duration(getEnvAsInt("REFRESH_CADENCE_MINUTES", 15)) * time.Minute,
		WorkerConcurrency: getEnvAsInt("WORKER_CONCURRENCY", 4),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required values and ranges
func (c *Config) Validate() error {
	var errs []error

	if c.AviationEdgeKey == "" {
		errs = append(errs, errors.New("AVIATIONEDGE_KEY must be set"))
	}

	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_DSN must be set"))
		}
	case StoreFirebase:
		if c.FirebaseDatabaseURL == "" {
			errs = append(errs, errors.New("FIREBASE_DATABASE_URL must be set"))
		}
		if c.FirebaseAdminJSON == "" && c.FirebaseCredentialsFile == "" {
			errs = append(errs, errors.New("FIREBASE_ADMIN_JSON or GOOGLE_APPLICATION_CREDENTIALS must be set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("ETA_POLL_INTERVAL must be positive"))
	}
	if c.RefreshCadence <= 0 || c.RefreshCadence > time.Hour {
		errs = append(errs, errors.New("REFRESH_CADENCE_MINUTES must be between 1 and 60"))
	}
	if c.WorkerConcurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be at least 1"))
	}
	if c.ProviderRatePerMinute < 1 {
		errs = append(errs, errors.New("PROVIDER_RATE_PER_MINUTE must be at least 1"))
	}

	return errors.Join(errs...)
}

// FirebaseCredentials returns the service account JSON from the inline value or the file
func (c *Config) FirebaseCredentials() ([]byte, error) {
	if c.FirebaseAdminJSON != "" {
		return []byte(c.FirebaseAdminJSON), nil
	}
	data, err := os.ReadFile(c.FirebaseCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read firebase credentials: %w", err)
	}
	return data, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
