// Package config loads debt-coach configuration from an optional TOML
// file with environment-variable overrides for deploy-time secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Redis   RedisConfig   `toml:"redis"`
	LLM     LLMConfig     `toml:"llm"`
	Worker  WorkerConfig  `toml:"worker"`
}

type ServerConfig struct {
	Addr             string `toml:"addr"`
	ReadTimeoutSecs  int    `toml:"read_timeout_secs"`
	WriteTimeoutSecs int    `toml:"write_timeout_secs"`
	RateLimit        int    `toml:"rate_limit"`
	RateWindowSecs   int    `toml:"rate_window_secs"`
}

type StorageConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

type RedisConfig struct {
	// Enabled switches both the comparison cache and the job queue from
	// in-memory implementations to Redis.
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type LLMConfig struct {
	// Mode is "mock", "openai" or "gemini".
	Mode        string `toml:"mode"`
	OpenAIKey   string `toml:"openai_api_key"`
	GeminiKey   string `toml:"gemini_api_key"`
	Model       string `toml:"model"`
	MaxTokens   int    `toml:"max_tokens"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

type WorkerConfig struct {
	PoolSize  int `toml:"pool_size"`
	QueueSize int `toml:"queue_size"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:             ":8080",
			ReadTimeoutSecs:  15,
			WriteTimeoutSecs: 15,
			RateLimit:        30,
			RateWindowSecs:   60,
		},
		Storage: StorageConfig{Driver: "memory"},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		LLM: LLMConfig{
			Mode:        "mock",
			MaxTokens:   200,
			TimeoutSecs: 30,
		},
		Worker: WorkerConfig{PoolSize: 2, QueueSize: 128},
	}
}

// Load reads the config file if path is non-empty (or exists), then applies
// environment overrides. A missing default file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DEBTCOACH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DEBTCOACH_DB"); v != "" {
		cfg.Storage.Driver = "sqlite"
		cfg.Storage.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LLM_MODE"); v != "" {
		cfg.LLM.Mode = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.GeminiKey = v
	}
}

// GeneratorTimeout is the per-call deadline for the external generator.
func (c LLMConfig) GeneratorTimeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

// NewLogger builds the process logger.
func NewLogger(debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}
