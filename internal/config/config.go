package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	BackendMemory    = "memory"
	BackendRedis     = "redis"
	BackendFirestore = "firestore"
)

type Config struct {
	Environment string `toml:"-"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// document store
	Backend            string `toml:"backend"`
	RedisHost          string `toml:"redis_host"`
	RedisPort          string `toml:"redis_port"`
	FirestoreProjectID string `toml:"firestore_project_id"`

	// ai analysis
	AIModel             string `toml:"ai_model"`
	AICacheSizeMB       int    `toml:"ai_cache_size_mb"`
	AIRequestsPerMinute int    `toml:"ai_requests_per_minute"`

	// metrics
	MetricsEnabled bool   `toml:"metrics_enabled"`
	MetricsHost    string `toml:"metrics_host"`
	MetricsPort    string `toml:"metrics_port"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Secrets never live in the TOML file, they come from the environment
// (or an optional .env file next to the binary).
type Secrets struct {
	RedisPassword         string
	GeminiAPIKey          string
	SentryDSN             string
	GoogleCredentialsFile string
	HoneycombEnabled      bool
}

// Load reads the TOML config and picks the table for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] config in %s", env, path)
	}

	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.RedisHost == "" {
		c.RedisHost = "localhost"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.AIModel == "" {
		c.AIModel = "gemini-2.0-flash"
	}
	if c.AICacheSizeMB <= 0 {
		c.AICacheSizeMB = 8
	}
	if c.AIRequestsPerMinute <= 0 {
		c.AIRequestsPerMinute = 5
	}
	if c.MetricsHost == "" {
		c.MetricsHost = "localhost"
	}
	if c.MetricsPort == "" {
		c.MetricsPort = "9091"
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	case BackendFirestore:
		if c.FirestoreProjectID == "" {
			return errors.New("firestore backend needs firestore_project_id")
		}
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	return nil
}

// LoadSecrets loads envFile into the environment if it exists (already set
// variables win), then reads the secrets.
func LoadSecrets(envFile string) (*Secrets, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	return &Secrets{
		RedisPassword:         os.Getenv("GYMTRACKER_REDIS_PASS"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		SentryDSN:             os.Getenv("SENTRY_DSN"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		HoneycombEnabled:      os.Getenv("HONEYCOMB_ENABLED") == "true",
	}, nil
}
