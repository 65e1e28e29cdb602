package govalid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	assert.Equal(t, 256, cfg.Constraints.Cache.Size)
}

func TestLoadEngineConfig(t *testing.T) {
	t.Run("valid file overrides the default", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "govalid.yaml")
		require.NoError(t, writeFile(path, "constraints:\n  cache:\n    size: 512\n"))

		cfg, err := LoadEngineConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 512, cfg.Constraints.Cache.Size)
	})

	t.Run("missing file is a startup failure", func(t *testing.T) {
		_, err := LoadEngineConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml is a startup failure", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, writeFile(path, "constraints: [this is not a mapping"))

		_, err := LoadEngineConfig(path)
		assert.Error(t, err)
	})

	t.Run("non-positive cache size is a startup failure", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "zero.yaml")
		require.NoError(t, writeFile(path, "constraints:\n  cache:\n    size: 0\n"))

		_, err := LoadEngineConfig(path)
		assert.Error(t, err)
	})
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
