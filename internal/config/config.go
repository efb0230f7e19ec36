// Package config loads summarization tuning from dms_config.json in the
// Doc directory, with environment overrides. The loaded struct is passed
// explicitly through the call chain; nothing reads configuration from
// package-level state.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ldmathes/dms/internal/fsutil"
)

// FileName is the config file looked up inside the Doc directory.
const FileName = "dms_config.json"

type Config struct {
	// Persisted in dms_config.json.
	OllamaModel     string  `json:"ollama_model"`
	OllamaHost      string  `json:"ollama_host"`
	SummaryMaxWords int     `json:"summary_max_words"`
	Temperature     float64 `json:"temperature"`

	// Tuning not exposed in the config file.
	GenerateTimeout  time.Duration `json:"-"`
	FirstCallTimeout time.Duration `json:"-"`
	ProbeTimeout     time.Duration `json:"-"`
	ConvertTimeout   time.Duration `json:"-"`
	MaxAttempts      int           `json:"-"`
	RetryDelay       time.Duration `json:"-"`
	MaxPayloadBytes  int           `json:"-"`
}

// Load reads dms_config.json from docDir if present, applies defaults for
// absent fields, then environment overrides. A missing config file is not
// an error; a malformed one is.
func Load(docDir string) (Config, error) {
	cfg := Config{
		OllamaModel:     "phi4:14b",
		OllamaHost:      "http://localhost:11434",
		SummaryMaxWords: 50,
		Temperature:     0.3,

		GenerateTimeout:  120 * time.Second,
		FirstCallTimeout: 300 * time.Second,
		ProbeTimeout:     5 * time.Second,
		ConvertTimeout:   60 * time.Second,
		MaxAttempts:      3,
		RetryDelay:       2 * time.Second,
		MaxPayloadBytes:  2000,
	}

	path := filepath.Join(docDir, FileName)
	if err := fsutil.ReadJSON(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	}

	cfg.OllamaModel = envOr("DMS_OLLAMA_MODEL", cfg.OllamaModel)
	cfg.OllamaHost = envOr("DMS_OLLAMA_HOST", cfg.OllamaHost)
	cfg.SummaryMaxWords = envInt("DMS_SUMMARY_MAX_WORDS", cfg.SummaryMaxWords)
	cfg.Temperature = envFloat("DMS_TEMPERATURE", cfg.Temperature)
	cfg.GenerateTimeout = envDuration("DMS_GENERATE_TIMEOUT", cfg.GenerateTimeout)
	cfg.FirstCallTimeout = envDuration("DMS_FIRST_CALL_TIMEOUT", cfg.FirstCallTimeout)
	cfg.ConvertTimeout = envDuration("DMS_CONVERT_TIMEOUT", cfg.ConvertTimeout)

	return cfg, nil
}

func (c Config) Validate() error {
	if c.OllamaHost == "" {
		return fmt.Errorf("ollama_host is required")
	}
	if c.OllamaModel == "" {
		return fmt.Errorf("ollama_model is required")
	}
	if c.SummaryMaxWords <= 0 {
		return fmt.Errorf("summary_max_words must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("retry attempts must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
