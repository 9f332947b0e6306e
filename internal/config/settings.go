// Package config holds the settings of a mapping run.
package config

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Settings holds all run configuration
type Settings struct {
	// Input / output
	BOMFile    string `yaml:"bom"`
	OutputFile string `yaml:"output"`
	Format     string `yaml:"format"` // "json", "xml" or "" (by extension)

	// Local source pass
	SourceDir      string   `yaml:"source_dir"`
	SourcePatterns []string `yaml:"source_patterns"`
	AllComponents  bool     `yaml:"all_components"` // ignore MapResult eligibility

	// Logging
	Verbose   bool   `yaml:"verbose"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "console" or "json"
}

// DefaultSettings returns default configuration
func DefaultSettings() *Settings {
	return &Settings{
		BOMFile:        "-",
		OutputFile:     "-",
		Format:         "",
		SourceDir:      "", // Empty = local source pass is a no-op
		SourcePatterns: []string{},
		LogLevel:       "warn",
		LogFormat:      "console",
	}
}

// LoadFile merges the YAML file at path over s. Keys missing from the
// file keep their current value.
func (s *Settings) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("invalid config %q: %w", path, err)
	}
	return nil
}

// ApplyEnv applies SBOM_SRCMAP_* environment variable overrides.
func (s *Settings) ApplyEnv() {
	if v := os.Getenv("SBOM_SRCMAP_SOURCE_DIR"); v != "" {
		s.SourceDir = v
	}

	if v := os.Getenv("SBOM_SRCMAP_SOURCE_PATTERNS"); v != "" {
		s.SourcePatterns = splitList(v)
	}

	if v := os.Getenv("SBOM_SRCMAP_FORMAT"); v != "" {
		s.Format = v
	}

	if v := os.Getenv("SBOM_SRCMAP_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}

	if v := os.Getenv("SBOM_SRCMAP_LOG_FORMAT"); v != "" {
		s.LogFormat = v
	}

	if v := os.Getenv("SBOM_SRCMAP_VERBOSE"); v != "" {
		s.Verbose = strings.ToLower(v) == "true"
	}
}

// EffectiveLogLevel returns the level to log at; verbose forces debug.
func (s *Settings) EffectiveLogLevel() string {
	if s.Verbose {
		return "debug"
	}
	return s.LogLevel
}

// splitList splits on whitespace and the OS path list separator. Commas
// are left alone since they appear inside glob brace expressions.
func splitList(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == os.PathListSeparator || unicode.IsSpace(r)
	})
}
