package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Store     StoreConfig
	Artifacts ArtifactConfig
	Pipeline  PipelineConfig
	Convert   ConvertConfig
	LLM       LLMConfig
	Intake    IntakeConfig
}

// StoreConfig selects and tunes the job repository backend.
type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver          string
	SQLitePath      string
	PostgresDSN     string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ArtifactConfig holds artifact store locations and retention policy.
type ArtifactConfig struct {
	RootDir   string
	Retention time.Duration
	SweepSpec string // cron spec for the retention sweeper
}

// PipelineConfig tunes the async worker pool.
type PipelineConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// ConvertConfig names the external conversion binaries the normalizer shells out to.
type ConvertConfig struct {
	Pdftotext string
	Antiword  string
	Catdoc    string
}

// LLMConfig holds reconciler defaults. The per-job credential always comes from
// the caller; APIKey here is only a fallback for operator-run batch jobs.
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// IntakeConfig configures the optional directory watcher.
type IntakeConfig struct {
	Dirs       []string
	TemplateID string
}

// LoadConfig loads configuration from the environment, reading .env first if present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Store: StoreConfig{
			Driver:          getEnv("STORE_DRIVER", "sqlite"),
			SQLitePath:      getEnv("SQLITE_PATH", "./data/jobs.db"),
			PostgresDSN:     getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Artifacts: ArtifactConfig{
			RootDir:   getEnv("ARTIFACT_DIR", "./data/artifacts"),
			Retention: getEnvAsDuration("JOB_RETENTION", time.Hour),
			SweepSpec: getEnv("SWEEP_SPEC", "@every 10m"),
		},
		Pipeline: PipelineConfig{
			Workers:        getEnvAsInt("PIPELINE_WORKERS", 4),
			QueueSize:      getEnvAsInt("PIPELINE_QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PIPELINE_TIMEOUT", 5*time.Minute),
		},
		Convert: ConvertConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Antiword:  getEnv("ANTIWORD_BIN", "antiword"),
			Catdoc:    getEnv("CATDOC_BIN", "catdoc"),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("LLM_API_KEY", ""),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
		},
		Intake: IntakeConfig{
			Dirs:       splitNonEmpty(getEnv("INTAKE_DIRS", "")),
			TemplateID: getEnv("INTAKE_TEMPLATE", "ezest-updated"),
		},
	}
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return NewAppError("CONFIG_ERROR", "SQLITE_PATH is required", ErrInvalidInput)
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required for postgres driver", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "STORE_DRIVER must be sqlite or postgres", ErrInvalidInput)
	}
	if c.Artifacts.RootDir == "" {
		return NewAppError("CONFIG_ERROR", "ARTIFACT_DIR is required", ErrInvalidInput)
	}
	if c.Pipeline.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitNonEmpty(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
