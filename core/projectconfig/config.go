package projectconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/davidahmann/ctxmap/core/retention"
)

const DefaultPath = ".ctxmap/config.yaml"

// DisableEnvVar forces sampling off regardless of configured values. Any
// non-empty value disables.
const DisableEnvVar = "CTXMAP_DISABLE_SAMPLING"

type Config struct {
	Sampling SamplingDefaults `yaml:"sampling"`
}

type SamplingDefaults struct {
	Enabled    *bool  `yaml:"enabled"`
	MaxSamples int    `yaml:"max_samples"`
	Version    string `yaml:"version"`
}

// Settings is the resolved sampling configuration after defaults and the
// environment override are applied.
type Settings struct {
	Enabled    bool
	MaxSamples int
	Version    string
}

func Load(path string, allowMissing bool) (Config, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return Config{}, fmt.Errorf("project config path is required")
	}

	// #nosec G304 -- project config path is explicit local user input.
	content, err := os.ReadFile(trimmedPath)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read project config: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return Config{}, nil
	}

	var configuration Config
	if err := yaml.Unmarshal(content, &configuration); err != nil {
		return Config{}, fmt.Errorf("parse project config: %w", err)
	}
	configuration.normalize()
	return configuration, nil
}

func (configuration *Config) normalize() {
	configuration.Sampling.Version = strings.TrimSpace(configuration.Sampling.Version)
	if configuration.Sampling.MaxSamples < 0 {
		configuration.Sampling.MaxSamples = 0
	}
}

// Resolve applies defaults (enabled, retention of 5) and the environment
// kill switch. lookupEnv is os.LookupEnv outside tests.
func (configuration Config) Resolve(lookupEnv func(string) (string, bool)) Settings {
	settings := Settings{
		Enabled:    true,
		MaxSamples: retention.DefaultMaxSamples,
		Version:    configuration.Sampling.Version,
	}
	if configuration.Sampling.Enabled != nil {
		settings.Enabled = *configuration.Sampling.Enabled
	}
	if configuration.Sampling.MaxSamples > 0 {
		settings.MaxSamples = configuration.Sampling.MaxSamples
	}
	if lookupEnv != nil {
		if value, present := lookupEnv(DisableEnvVar); present && strings.TrimSpace(value) != "" {
			settings.Enabled = false
		}
	}
	return settings
}
