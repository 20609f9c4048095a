// Package config loads repository settings from reqstore.yaml at the
// repository root. Every field has a default; a missing config file is not
// an error.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reqstore/internal/record"
)

// Filename is the config file looked up under the repository root.
const Filename = "reqstore.yaml"

// Config holds the repository layout settings.
type Config struct {
	// DataDir holds the canonical collections, relative to the root.
	DataDir string `yaml:"data_dir"`
	// ReportsDir holds the derived graph and index, relative to the root.
	ReportsDir string `yaml:"reports_dir"`
	// JournalPath is the mutation journal database, relative to the root.
	JournalPath string `yaml:"journal_path"`
}

// Default returns the standard repository layout.
func Default() Config {
	return Config{
		DataDir:     "data",
		ReportsDir:  "reports",
		JournalPath: filepath.Join("reports", "journal.db"),
	}
}

// Load reads reqstore.yaml under root, falling back to defaults for absent
// fields. A missing file yields the defaults; a malformed one is SCHEMA.
func Load(root string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(filepath.Join(root, Filename))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, record.WrapError(record.CodeIO, err, "read %s", Filename)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, record.WrapError(record.CodeSchema, err, "parse %s", Filename)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = Default().DataDir
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = Default().ReportsDir
	}
	if cfg.JournalPath == "" {
		cfg.JournalPath = Default().JournalPath
	}
	return cfg, nil
}

// Resolve joins a config-relative path onto the repository root.
func (c Config) Resolve(root, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(root, rel)
}
