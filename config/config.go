package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Import batch policies.
const (
	PolicyBestEffort = "best_effort"
	PolicyAtomic     = "atomic"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	DatasetKey   string `env:"DATASET_KEY" envDefault:"x_analytics_dataset"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"analytics"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"analytics123"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"analytics_db"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	ImportPolicy    string `env:"IMPORT_POLICY" envDefault:"best_effort"`
	TopPostsLimit   int    `env:"TOP_POSTS_LIMIT" envDefault:"10"`
	SummaryTopPosts int    `env:"SUMMARY_TOP_POSTS" envDefault:"5"`
	DefaultWindow   string `env:"DEFAULT_WINDOW" envDefault:"30d"`
	MaxRetries      int    `env:"MAX_RETRIES" envDefault:"3"`

	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	XAPIBaseURL  string `env:"X_API_BASE_URL" envDefault:"http://localhost:3000"`
	XAccessToken string `env:"X_ACCESS_TOKEN"`
	XUserID      string `env:"X_USER_ID"`

	ExportDir string `env:"EXPORT_DIR" envDefault:"./output"`
}

// Load reads the .env file (if any) and returns a populated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline does not understand.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.ImportPolicy {
	case PolicyBestEffort, PolicyAtomic:
	default:
		return fmt.Errorf("config: unknown IMPORT_POLICY %q", c.ImportPolicy)
	}
	switch c.DefaultWindow {
	case "7d", "30d", "90d", "all":
	default:
		return fmt.Errorf("config: unknown DEFAULT_WINDOW %q", c.DefaultWindow)
	}
	if c.TopPostsLimit <= 0 || c.SummaryTopPosts <= 0 {
		return fmt.Errorf("config: top post limits must be positive")
	}
	return nil
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}
