package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/inference"
)

func TestLoad_NoFilePresent_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_YAML_OverridesSubsetOfFields(t *testing.T) {
	dir := t.TempDir()
	yaml := "languages:\n  - go\nmaxConcurrency: 8\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codegraph.yml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, cfg.Languages)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	// unset fields fall back to defaults
	assert.Equal(t, DefaultConfig().MaxPathLength, cfg.MaxPathLength)
	assert.Equal(t, DefaultConfig().StoreKind, cfg.StoreKind)
}

func TestLoad_TOMLFallback_WhenNoYAMLPresent(t *testing.T) {
	dir := t.TempDir()
	tomlSrc := "store_kind = \"kuzu\"\nmax_inheritance_depth = 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codegraph.toml"), []byte(tomlSrc), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, StoreKindKuzu, cfg.StoreKind)
	assert.Equal(t, 3, cfg.MaxInheritanceDepth)
}

func TestLoad_YAMLTakesPrecedenceOverTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codegraph.yml"), []byte("storeKind: memory\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codegraph.toml"), []byte("store_kind = \"kuzu\"\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, StoreKindMemory, cfg.StoreKind)
}

func TestDefaultConfig_UsesEagerCachePolicy(t *testing.T) {
	assert.Equal(t, inference.PolicyEager, DefaultConfig().CachePolicy)
}
