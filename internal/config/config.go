package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the PaperDigest server.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Interpreter InterpreterConfig
	Search      SearchConfig
	Worker      WorkerConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// InterpreterConfig configures the DeepSeek-compatible interpretation
// service. APIKey is optional: when absent the client degrades to a fixed
// placeholder instead of calling out.
type InterpreterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// SearchConfig configures the Springer literature index. APIKey is optional:
// when absent searches return no recommendations.
type SearchConfig struct {
	APIKey   string
	BaseURL  string
	PageSize int
	Timeout  time.Duration
	// Wait bounds how long a job blocks on search results before
	// proceeding with an empty recommendation list.
	Wait time.Duration
}

type WorkerConfig struct {
	Concurrency int
	MaxRetries  int
	RetryDelay  time.Duration
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("PAPERDIGEST_PORT", 8080),
			Env:  envString("PAPERDIGEST_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Interpreter: InterpreterConfig{
			APIKey:  os.Getenv("DEEPSEEK_API_KEY"),
			BaseURL: envString("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
			Model:   envString("DEEPSEEK_MODEL", "deepseek-chat"),
			Timeout: envDurationSecs("DEEPSEEK_TIMEOUT_SECS", 60*time.Second),
		},
		Search: SearchConfig{
			APIKey:   os.Getenv("SPRINGER_API_KEY"),
			BaseURL:  envString("SPRINGER_BASE_URL", "https://api.springernature.com/meta/v2"),
			PageSize: envInt("SPRINGER_PAGE_SIZE", 3),
			Timeout:  envDurationSecs("SPRINGER_TIMEOUT_SECS", 15*time.Second),
			Wait:     envDurationSecs("SEARCH_WAIT_SECS", 10*time.Second),
		},
		Worker: WorkerConfig{
			Concurrency: envInt("WORKER_CONCURRENCY", 4),
			MaxRetries:  envInt("WORKER_MAX_RETRIES", 3),
			RetryDelay:  envDurationSecs("WORKER_RETRY_DELAY_SECS", 30*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !strings.HasPrefix(c.Interpreter.BaseURL, "http://") && !strings.HasPrefix(c.Interpreter.BaseURL, "https://") {
		return fmt.Errorf("DEEPSEEK_BASE_URL must start with http:// or https://, got %q", c.Interpreter.BaseURL)
	}
	if !strings.HasPrefix(c.Search.BaseURL, "http://") && !strings.HasPrefix(c.Search.BaseURL, "https://") {
		return fmt.Errorf("SPRINGER_BASE_URL must start with http:// or https://, got %q", c.Search.BaseURL)
	}

	if c.Search.PageSize < 1 || c.Search.PageSize > 5 {
		return fmt.Errorf("SPRINGER_PAGE_SIZE must be between 1 and 5, got %d", c.Search.PageSize)
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1, got %d", c.Worker.Concurrency)
	}
	if c.Worker.MaxRetries < 0 {
		return fmt.Errorf("WORKER_MAX_RETRIES must not be negative, got %d", c.Worker.MaxRetries)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
