// Package config loads sculkc's run settings from an optional YAML file,
// with CLI flags always taking precedence over whatever the file sets.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultEntry is the function name _sculkmain calls into if no entry
// function is configured.
const DefaultEntry = "main"

// Config is everything the generator and its CLI wrapper need beyond the
// AST/signature bundle itself.
type Config struct {
	Namespace string `yaml:"namespace"`
	OutputDir string `yaml:"output_dir"`
	Entry     string `yaml:"entry"`
}

// Load reads a YAML config file at path. A missing file is not an error;
// it returns a zero Config, since every field can equally well arrive via
// CLI flags.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "config: reading %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parsing %s", path)
	}
	return cfg, nil
}

// Overlay returns a copy of c with any non-empty field of override
// replacing c's own, the shape CLI flags use to win over a config file.
func (c Config) Overlay(override Config) Config {
	merged := c
	if override.Namespace != "" {
		merged.Namespace = override.Namespace
	}
	if override.OutputDir != "" {
		merged.OutputDir = override.OutputDir
	}
	if override.Entry != "" {
		merged.Entry = override.Entry
	}
	return merged
}

// Validate reports whether c has everything Generate needs to run,
// filling in DefaultEntry if Entry was left blank.
func (c Config) Validate() (Config, error) {
	if c.Namespace == "" {
		return c, errors.New("config: namespace is required")
	}
	if c.OutputDir == "" {
		return c, errors.New("config: output_dir is required")
	}
	if c.Entry == "" {
		c.Entry = DefaultEntry
	}
	return c, nil
}
