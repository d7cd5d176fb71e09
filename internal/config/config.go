package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port         string        `env:"PORT"          envDefault:"5002"`
	Env          string        `env:"ENV"           envDefault:"development"`
	LogLevel     string        `env:"LOG_LEVEL"     envDefault:"info"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10m"`
	CORSOrigin   string        `env:"CORS_ORIGIN"   envDefault:"*"`

	// Only enable behind a proxy that overwrites X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// Models
	ModelsDir         string `env:"MODELS_DIR"          envDefault:"./models"`
	BARTModelPath     string `env:"BART_MODEL_PATH"`
	T5ModelPath       string `env:"T5_MODEL_PATH"`
	BARTModelRepo     string `env:"BART_MODEL_REPO"     envDefault:"facebook/bart-large-cnn"`
	T5ModelRepo       string `env:"T5_MODEL_REPO"       envDefault:"t5-base"`
	ModelAutoDownload bool   `env:"MODEL_AUTO_DOWNLOAD" envDefault:"false"`

	// Inference
	SummarizerConcurrency int  `env:"SUMMARIZER_CONCURRENCY" envDefault:"1"`
	SummarizerSampling    bool `env:"SUMMARIZER_SAMPLING"    envDefault:"false"`

	// Comparison
	CompareIterations int `env:"COMPARE_ITERATIONS" envDefault:"5"`
	CompareRateLimit  int `env:"COMPARE_RATE_LIMIT" envDefault:"10"`

	// Database (optional, enables category history)
	DatabaseURL          string `env:"DATABASE_URL"`
	HistoryRetentionDays int    `env:"HISTORY_RETENTION_DAYS" envDefault:"90"`

	// Redis (optional, enables the summary cache)
	RedisURL        string        `env:"REDIS_URL"`
	SummaryCacheTTL time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"1h"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.BARTModelPath == "" {
		cfg.BARTModelPath = filepath.Join(cfg.ModelsDir, "bart-large-cnn")
	}
	if cfg.T5ModelPath == "" {
		cfg.T5ModelPath = filepath.Join(cfg.ModelsDir, "t5-base")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.SummarizerConcurrency < 1 {
		return fmt.Errorf("SUMMARIZER_CONCURRENCY must be at least 1, got %d", c.SummarizerConcurrency)
	}
	if c.CompareIterations < 1 {
		return fmt.Errorf("COMPARE_ITERATIONS must be at least 1, got %d", c.CompareIterations)
	}
	if c.CompareRateLimit < 1 {
		return fmt.Errorf("COMPARE_RATE_LIMIT must be at least 1, got %d", c.CompareRateLimit)
	}
	if c.HistoryRetentionDays < 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS must not be negative, got %d", c.HistoryRetentionDays)
	}
	return nil
}
