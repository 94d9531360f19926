package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "crudfs.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	// The default was persisted for next time.
	_, err = os.Stat(path)
	assert.NoError(t, err)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crudfs.yaml")
	content := "store_address: store.example.com:4040\nlog_level: DEBUG\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "store.example.com:4040", cfg.StoreAddress)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	// Unset fields keep their defaults.
	assert.Equal(t, Default().ClientID, cfg.ClientID)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crudfs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store_address: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
