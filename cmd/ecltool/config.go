package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the defaults file (~/.config/eclio/ecltool.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Compression used by convert and esmry when --compress is not given.
	Compression string `yaml:"compression"`

	// Default tolerances of compare.
	AbsTolerance *float64 `yaml:"abs_tolerance"`
	RelTolerance *float64 `yaml:"rel_tolerance"`

	// BaseRun makes summary follow restart chains.
	BaseRun *bool `yaml:"base_run"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "eclio", "ecltool.yaml")
}

// LoadConfig reads the defaults file. A missing file yields a zero Config
// unless the path was given explicitly.
func LoadConfig(path string, explicit bool) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}
