// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"path/filepath"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// IgnoreEnv skips NUGETSTEP_* overrides. Set it when the loaded config is
	// edited and saved back, so environment values are not persisted.
	IgnoreEnv bool
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, path, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	cfg.path = path
	return cfg, nil
}

// FilePath returns the config file the options point at: the explicit file
// when set, otherwise config.cue in the config directory. The file may not exist.
func (o LoadOptions) FilePath() (string, error) {
	if o.ConfigFilePath != "" {
		return o.ConfigFilePath, nil
	}
	dir, err := configDirWithOverride(o.ConfigDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}
