package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "test1", cfg.Assistant.DefaultUserID)
	assert.Equal(t, "2345678901", cfg.Assistant.AccountMappings["savings"])
	assert.Contains(t, cfg.Assistant.BankingDomains, "mortgage")
	assert.Equal(t, int64(4096), cfg.Model.MaxTokens)
	assert.Equal(t, 30, cfg.Server.TurnTimeoutSecs)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
assistant:
  default_user_id: someone
server:
  turn_timeout_seconds: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "someone", cfg.Assistant.DefaultUserID)
	assert.Equal(t, 5, cfg.Server.TurnTimeoutSecs)
	// Untouched keys keep their defaults.
	assert.Equal(t, "1234567890", cfg.Assistant.AccountMappings["chequing"])
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
