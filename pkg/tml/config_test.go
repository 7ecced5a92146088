package tml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.WrapLabels)
	assert.NotNil(t, cfg.GraphAttrs)
	assert.Empty(t, cfg.DefaultIncludeDirs)
}

func TestLoadConfigFileOverlaysDefaults(t *testing.T) {
	cfg := DefaultConfig()
	yamlDoc := `
no_numbers: true
css_file: custom.css
graph_attrs:
  rankdir: LR
`
	errs := LoadConfigFile(cfg, strings.NewReader(yamlDoc))
	require.Empty(t, errs)

	assert.True(t, cfg.NoNumbers)
	assert.Equal(t, "custom.css", cfg.CSSFile)
	assert.Equal(t, "LR", cfg.GraphAttrs["rankdir"])
	// a bool the overlay didn't set should keep its prior default.
	assert.True(t, cfg.WrapLabels)
}

func TestLoadConfigFileEmptyDocumentIsNoop(t *testing.T) {
	cfg := DefaultConfig()
	errs := LoadConfigFile(cfg, strings.NewReader(""))
	require.Empty(t, errs)
	assert.True(t, cfg.WrapLabels)
}

func TestLoadConfigFileMalformedYAMLReportsError(t *testing.T) {
	cfg := DefaultConfig()
	errs := LoadConfigFile(cfg, strings.NewReader("not: valid: yaml: at: all: :"))
	require.NotEmpty(t, errs)
}

func TestLoadConfigPathMissingFileIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	errs := LoadConfigPath(cfg, "/nonexistent/path/to/config.yaml")
	assert.Empty(t, errs)
}

func TestLoadConfigPathEmptyPathIsNoop(t *testing.T) {
	cfg := DefaultConfig()
	errs := LoadConfigPath(cfg, "")
	assert.Empty(t, errs)
}

func TestMergeConfigMergesMapsKeyByKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NodeAttrs["shape"] = "box"

	overlay := &CompilerConfig{NodeAttrs: map[string]string{"color": "blue"}}
	mergeConfig(cfg, overlay)

	assert.Equal(t, "box", cfg.NodeAttrs["shape"])
	assert.Equal(t, "blue", cfg.NodeAttrs["color"])
}
