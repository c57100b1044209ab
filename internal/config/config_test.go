package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-lang/arbor/internal/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1, cfg.Workers)
	assert.False(t, cfg.Debug)
	assert.Len(t, cfg.Defaulting, 2)
}

func TestZeroValueNormalizes(t *testing.T) {
	cfg := &CheckerConfig{}
	cfg.Normalize()
	assert.Equal(t, 1, cfg.Workers)
	assert.NotEmpty(t, cfg.Defaulting, "a zero-value config must still default Num/Fractional")
}

func TestNormalizePreservesExplicitWorkers(t *testing.T) {
	cfg := &CheckerConfig{Workers: 8}
	cfg.Normalize()
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checker.yaml")
	contents := `
workers: 4
debug: true
defaulting:
  - class: Num
    type: Float
cache:
  enabled: true
  directory: .cache
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, ".cache", cfg.Cache.Directory)
	require.Len(t, cfg.Defaulting, 1)
	assert.Equal(t, "Num", cfg.Defaulting[0].Class)
	assert.Equal(t, "Float", cfg.Defaulting[0].Type)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestToDefaultingConfig(t *testing.T) {
	cfg := Default()
	dcfg := cfg.ToDefaultingConfig()
	require.True(t, dcfg.Enabled)
	assert.Equal(t, types.TInt, dcfg.Defaults["Num"])
	assert.Equal(t, types.TFloat, dcfg.Defaults["Fractional"])
}

func TestToDefaultingConfig_EmptyDisables(t *testing.T) {
	cfg := &CheckerConfig{Defaulting: []DefaultingEntry{{Class: "Num", Type: "NotARealType"}}}
	dcfg := cfg.ToDefaultingConfig()
	assert.False(t, dcfg.Enabled, "an unresolvable defaulting table must leave defaulting disabled")
}
