package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/schemecore/internal/config"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, &config.Config{}, cfg)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	require.Equal(t, &config.Config{}, cfg)
}

func TestLoadDecodesHCL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scheme.hcl")
	body := `
heap_capacity = 4096
env_capacity  = 512
log_level     = "debug"
preload       = ["a.scm", "b.scm"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 4096, cfg.HeapCapacity)
	require.Equal(t, 512, cfg.EnvCapacity)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, []string{"a.scm", "b.scm"}, cfg.Preload)
}

func TestLoadMalformedFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte("this is not valid hcl {{{"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}
