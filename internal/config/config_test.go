package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "db", "tutor.db"))
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))
	for _, key := range []string{"LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY", "LLM_MODEL", "LLM_TIMEOUT", "INVIDIOUS_HOSTS", "SUMMARY_CONCURRENCY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemma2-9b-it", cfg.LLMModel)
	assert.Equal(t, 3000, cfg.LLMMaxTokens)
	assert.Equal(t, 2*time.Minute, cfg.LLMTimeout)
	assert.Equal(t, 4, cfg.SummaryWorkers)
	assert.Equal(t, []string{"en"}, cfg.TranscriptLangs)
	assert.Equal(t, DefaultInvidiousHosts, cfg.InvidiousHosts)
	assert.DirExists(t, filepath.Join(dir, "uploads"))
	assert.DirExists(t, filepath.Join(dir, "db"))
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "tutor.db"))
	t.Setenv("UPLOAD_DIR", dir)
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("INVIDIOUS_HOSTS", " https://a.example , ,https://b.example")
	t.Setenv("SUMMARY_CONCURRENCY", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "groq-key", cfg.LLMKey)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.InvidiousHosts)
	assert.Equal(t, 1, cfg.SummaryWorkers)
}

func TestLoadWithoutMirrors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "tutor.db"))
	t.Setenv("UPLOAD_DIR", dir)
	t.Setenv("INVIDIOUS_HOSTS", "None")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.InvidiousHosts)
}
