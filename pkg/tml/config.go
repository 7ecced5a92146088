package tml

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// CompilerConfig carries the ambient knobs spec.md §6 exposes as CLI flags,
// with defaults overridable from an optional YAML file — the same
// in-process-defaults-then-override shape as the teacher's
// ThreatmodelSpecConfig, loaded with gopkg.in/yaml.v3 instead of HCL (see
// DESIGN.md; grounded on codenerd's internal/config.Config).
type CompilerConfig struct {
	DefaultIncludeDirs []string          `yaml:"default_include_dirs"`
	WrapLabels         bool              `yaml:"wrap_labels"`
	CombineEdges       bool              `yaml:"combine_edges"`
	NoNumbers          bool              `yaml:"no_numbers"`
	NoCSS              bool              `yaml:"no_css"`
	NoAnchors          bool              `yaml:"no_anchors"`
	CSSFile            string            `yaml:"css_file"`
	GraphAttrs         map[string]string `yaml:"graph_attrs"`
	ClusterAttrs       map[string]string `yaml:"cluster_attrs"`
	NodeAttrs          map[string]string `yaml:"node_attrs"`
	EdgeAttrs          map[string]string `yaml:"edge_attrs"`
	Seed               string            `yaml:"seed"`
}

// DefaultConfig returns the compiler's built-in defaults, matching the
// teacher's zero-config behavior when no config file is present.
func DefaultConfig() *CompilerConfig {
	return &CompilerConfig{
		WrapLabels:   true,
		GraphAttrs:   map[string]string{},
		ClusterAttrs: map[string]string{},
		NodeAttrs:    map[string]string{},
		EdgeAttrs:    map[string]string{},
	}
}

// LoadConfigFile overlays a YAML document read from r onto cfg. A malformed
// document warns and leaves cfg unchanged rather than aborting (§7's "no
// failure is fatal" posture extended to config loading).
func LoadConfigFile(cfg *CompilerConfig, r io.Reader) []error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return []error{fmt.Errorf("config: %w", err)}
	}
	if len(raw) == 0 {
		return nil
	}

	var overlay CompilerConfig
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return []error{fmt.Errorf("config: %w", err)}
	}

	mergeConfig(cfg, &overlay)
	return nil
}

func mergeConfig(cfg, overlay *CompilerConfig) {
	if len(overlay.DefaultIncludeDirs) > 0 {
		cfg.DefaultIncludeDirs = overlay.DefaultIncludeDirs
	}
	cfg.WrapLabels = overlay.WrapLabels || cfg.WrapLabels
	cfg.CombineEdges = overlay.CombineEdges || cfg.CombineEdges
	cfg.NoNumbers = overlay.NoNumbers || cfg.NoNumbers
	cfg.NoCSS = overlay.NoCSS || cfg.NoCSS
	cfg.NoAnchors = overlay.NoAnchors || cfg.NoAnchors
	if overlay.CSSFile != "" {
		cfg.CSSFile = overlay.CSSFile
	}
	if overlay.Seed != "" {
		cfg.Seed = overlay.Seed
	}
	for k, v := range overlay.GraphAttrs {
		cfg.GraphAttrs[k] = v
	}
	for k, v := range overlay.ClusterAttrs {
		cfg.ClusterAttrs[k] = v
	}
	for k, v := range overlay.NodeAttrs {
		cfg.NodeAttrs[k] = v
	}
	for k, v := range overlay.EdgeAttrs {
		cfg.EdgeAttrs[k] = v
	}
}

// LoadConfigPath is a convenience wrapper around LoadConfigFile for a path
// on disk; a missing file is not an error, matching the teacher's
// "config is optional" posture.
func LoadConfigPath(cfg *CompilerConfig, path string) []error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return []error{fmt.Errorf("config: %w", err)}
	}
	defer f.Close()
	return LoadConfigFile(cfg, f)
}
