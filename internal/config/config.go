package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level amicheck CLI configuration.
// It is loaded from ~/.config/amicheck/config.yaml. Command-line flags take
// precedence over every value here.
type Config struct {
	AWS    AWSConfig    `yaml:"aws"    json:"aws"`
	Report ReportConfig `yaml:"report" json:"report"`
}

// AWSConfig holds AWS-specific defaults used when flags are not provided.
type AWSConfig struct {
	// DefaultRegion is used when no region flag or profile region is set.
	DefaultRegion string `yaml:"default_region" json:"default_region"`

	// DefaultProfile is used when no --profile flag is provided.
	DefaultProfile string `yaml:"default_profile" json:"default_profile"`
}

// ReportConfig names the default S3 destination for exported reports.
type ReportConfig struct {
	Bucket string `yaml:"bucket" json:"bucket"`
	Prefix string `yaml:"prefix" json:"prefix"`
}

// FileLoader reads Config from a YAML file. A missing file is not an error;
// Load then returns an empty Config.
type FileLoader struct {
	path string
}

// NewFileLoader returns a FileLoader for path. An empty path selects
// DefaultPath.
func NewFileLoader(path string) *FileLoader {
	if path == "" {
		path = DefaultPath()
	}
	return &FileLoader{path: path}
}

// DefaultPath returns ~/.config/amicheck/config.yaml, honouring
// XDG_CONFIG_HOME through os.UserConfigDir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".config", "amicheck", "config.yaml")
	}
	return filepath.Join(dir, "amicheck", "config.yaml")
}

// ConfigPath returns the file Load reads.
func (l *FileLoader) ConfigPath() string { return l.path }

// Load reads and parses the configuration file.
func (l *FileLoader) Load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", l.path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", l.path, err)
	}
	return &cfg, nil
}

// Or returns flag when set, otherwise fallback.
func Or(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
