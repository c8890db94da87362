// Package config loads the runner settings from loki.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"loki/pkg/interpreter"
)

// FileName is the config file looked up in the working directory.
const FileName = "loki.yaml"

type Config struct {
	StackSize int  `yaml:"stack_size"`
	MaxSteps  int  `yaml:"max_steps"` // 0 = unlimited
	Trace     bool `yaml:"trace"`
	Profile   bool `yaml:"profile"`
	NoColor   bool `yaml:"no_color"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{StackSize: interpreter.DefaultStackSize}
}

// Load reads path on top of Default. Unknown keys are rejected and an empty
// file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// LoadDefault reads FileName from dir if it exists, otherwise returns Default.
func LoadDefault(dir string) (Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	if c.StackSize < 1 {
		errs = append(errs, fmt.Errorf("config: stack_size must be positive, got %d", c.StackSize))
	}
	if c.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("config: max_steps must not be negative, got %d", c.MaxSteps))
	}
	return errors.Join(errs...)
}
