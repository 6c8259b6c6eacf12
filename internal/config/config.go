package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"promptswitcher/internal/llm"
)

// Config is read from the process environment, after an optional .env file.
type Config struct {
	Port     string `env:"PORT"      envDefault:"8000"`
	Env      string `env:"ENV"`
	LogLevel string `env:"LOG_LEVEL"`

	OpenAIAPIKey          string `env:"OPENAI_API_KEY,required,notEmpty"`
	OpenAIBaseURL         string `env:"OPENAI_BASE_URL"          envDefault:"https://api.openai.com"`
	OpenAIModel           string `env:"OPENAI_MODEL"             envDefault:"gpt-5-mini"`
	OpenAIReasoningEffort string `env:"OPENAI_REASONING_EFFORT"  envDefault:"low"`
	OpenAIMaxOutputTokens int    `env:"OPENAI_MAX_OUTPUT_TOKENS" envDefault:"800"`

	LLMBackend    string        `env:"LLM_BACKEND"     envDefault:"http"`
	LLMTimeout    time.Duration `env:"LLM_TIMEOUT"     envDefault:"60s"`
	LLMMaxRetries int           `env:"LLM_MAX_RETRIES" envDefault:"0"`

	CacheTTL           time.Duration `env:"CACHE_TTL"            envDefault:"5m"`
	CacheSweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"0s"`
	CacheVersion       string        `env:"CACHE_VERSION"        envDefault:"v1"`

	DedupeInFlight bool `env:"DEDUPE_INFLIGHT" envDefault:"false"`
	StrictResult   bool `env:"STRICT_RESULT"   envDefault:"false"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"90s"`
	MaxBodyBytes   int64         `env:"MAX_BODY_BYTES"  envDefault:"65536"`
}

// Load reads .env files (missing ones are fine) and parses the environment.
// Variables already set in the environment win over .env values.
func Load(dotenvFiles ...string) (Config, error) {
	if err := loadDotenv(dotenvFiles...); err != nil {
		return Config{}, err
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks values the env tags cannot express.
func (c Config) Validate() error {
	switch c.LLMBackend {
	case "http", "openai":
	default:
		return fmt.Errorf("LLM_BACKEND must be \"http\" or \"openai\", got %q", c.LLMBackend)
	}
	switch c.OpenAIReasoningEffort {
	case llm.EffortMinimal, llm.EffortLow, llm.EffortMedium, llm.EffortHigh:
	default:
		return fmt.Errorf("OPENAI_REASONING_EFFORT must be one of minimal, low, medium, high, got %q", c.OpenAIReasoningEffort)
	}
	if c.OpenAIMaxOutputTokens <= 0 {
		return errors.New("OPENAI_MAX_OUTPUT_TOKENS must be positive")
	}
	if c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	if c.LLMMaxRetries < 0 {
		return errors.New("LLM_MAX_RETRIES must not be negative")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be positive")
	}
	return nil
}
