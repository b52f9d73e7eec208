package main

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/commercetxt/commercetxt/internal/limits"
)

// fileConfig overrides the parser's resource ceilings and the
// validator's trusted review domains, loaded from --config.
// Zero-valued fields fall back to the compiled-in defaults.
type fileConfig struct {
	Limits struct {
		MaxLineLength        int   `yaml:"max_line_length"`
		MaxSections          int   `yaml:"max_sections"`
		MaxEntriesPerSection int   `yaml:"max_entries_per_section"`
		MaxTotalBytes        int64 `yaml:"max_total_bytes"`
	} `yaml:"limits"`

	TrustedReviewDomains []string `yaml:"trusted_review_domains"`
}

// loadConfig reads a YAML config file, if path is non-empty, applying
// its values on top of limits.Default().
func loadConfig(path string) (limits.Limits, []string, error) {
	lim := limits.Default()
	if path == "" {
		return lim, nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return lim, nil, fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return lim, nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Limits.MaxLineLength > 0 {
		lim.MaxLineLength = cfg.Limits.MaxLineLength
	}
	if cfg.Limits.MaxSections > 0 {
		lim.MaxSections = cfg.Limits.MaxSections
	}
	if cfg.Limits.MaxEntriesPerSection > 0 {
		lim.MaxEntriesPerSection = cfg.Limits.MaxEntriesPerSection
	}
	if cfg.Limits.MaxTotalBytes > 0 {
		lim.MaxTotalBytes = cfg.Limits.MaxTotalBytes
	}

	return lim, cfg.TrustedReviewDomains, nil
}
