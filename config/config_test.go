package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "@every 1h", cfg.Processor.Schedule)
	assert.Equal(t, 4, cfg.Processor.Workers)
}

func TestLoadFile_FileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.yaml")
	content := []byte(`
database:
  driver: sqlite
  url: "file::memory:?cache=shared"
processor:
  schedule: "0 3 * * *"
  workers: 8
  lock_ttl: 30s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("PROCESSOR_WORKERS", "2")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "0 3 * * *", cfg.Processor.Schedule)
	assert.Equal(t, 30*time.Second, cfg.Processor.LockTTL)
	assert.Equal(t, 2, cfg.Processor.Workers, "environment overrides the file")
	assert.Equal(t, 8080, cfg.Server.Port, "unset keys keep their defaults")
}

func TestLoadFile_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"DATABASE_DRIVER": "mysql"}},
		{name: "zero workers", env: map[string]string{"PROCESSOR_WORKERS": "0"}},
		{name: "negative retries", env: map[string]string{"PROCESSOR_MAX_RETRIES": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFile("")
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
