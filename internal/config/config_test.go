package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	require.Equal(t, "8000", cfg.Port)
	require.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	require.Equal(t, "https://api.openai.com", cfg.OpenAIBaseURL)
	require.Equal(t, "gpt-5-mini", cfg.OpenAIModel)
	require.Equal(t, "low", cfg.OpenAIReasoningEffort)
	require.Equal(t, 800, cfg.OpenAIMaxOutputTokens)
	require.Equal(t, "http", cfg.LLMBackend)
	require.Equal(t, 0, cfg.LLMMaxRetries)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.Zero(t, cfg.CacheSweepInterval)
	require.False(t, cfg.DedupeInFlight)
	require.False(t, cfg.StrictResult)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoadDotenv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")
	t.Setenv("CACHE_TTL", "30s")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OPENAI_API_KEY=sk-from-file\nCACHE_TTL=10m\nSTRICT_RESULT=true\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("STRICT_RESULT")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "sk-from-file", cfg.OpenAIAPIKey)
	require.True(t, cfg.StrictResult)
	// the real environment wins over the file
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestValidate(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_BACKEND", "grpc")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorContains(t, err, "LLM_BACKEND")
}

func TestValidateReasoningEffort(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	t.Setenv("OPENAI_REASONING_EFFORT", "lo")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorContains(t, err, "OPENAI_REASONING_EFFORT")

	t.Setenv("OPENAI_REASONING_EFFORT", "high")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "high", cfg.OpenAIReasoningEffort)
}
