package policy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPolicyFile is looked up in the working directory when no --policy
// flag is given.
const DefaultPolicyFile = "amicheck.yaml"

// LoadPolicy reads and parses the policy file at path. Only version 1 is
// supported. Maps are never nil on success.
func LoadPolicy(path string) (*PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg PolicyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}
	if cfg.Version != 1 {
		return nil, errors.New("unsupported policy version")
	}
	if cfg.Rules == nil {
		cfg.Rules = make(map[string]RuleConfig)
	}
	return &cfg, nil
}

// LoadOptional loads path when it exists and returns (nil, nil) when it does
// not. Any other read or parse error is returned.
func LoadOptional(path string) (*PolicyConfig, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return LoadPolicy(path)
}
