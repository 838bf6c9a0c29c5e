package routingconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/llmrouter/router/internal/classifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, threshold, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, classifier.DefaultConfig(), cfg)
	assert.Equal(t, 1, threshold)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, classifier.DefaultConfig(), cfg)
}

func TestLoad_OverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("medium_cutoff: 2.5\nagentic_tool_call_threshold: 3\n"), 0o644))

	cfg, threshold, err := Load(path)
	require.NoError(t, err)

	def := classifier.DefaultConfig()
	assert.Equal(t, 2.5, cfg.MediumCutoff)
	assert.Equal(t, def.ComplexCutoff, cfg.ComplexCutoff)
	assert.Equal(t, 3, threshold)
}
