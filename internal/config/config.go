// Package config loads the exporter settings from an optional .env file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "SCIWHEEL_"
	// EnvFileVar overrides the dotenv file location
	EnvFileVar = envPrefix + "ENV_FILE"

	defaultEnvFile = ".env"
	// DefaultBaseURL is the root of the Sciwheel external API
	DefaultBaseURL = "https://sciwheel.com/extapi/work"
)

// ErrMissingToken is returned when no bearer token is configured
var ErrMissingToken = errors.New("set SCIWHEEL_TOKEN in your environment or .env file")

// Config holds the exporter settings
type Config struct {
	Token     string `koanf:"token"`
	BaseURL   string `koanf:"base_url"`
	Debug     bool   `koanf:"debug"`
	LogLevel  string `koanf:"log_level"`
	OutputDir string `koanf:"output_dir"`
}

func defaults() map[string]any {
	return map[string]any{
		"token":      "",
		"base_url":   DefaultBaseURL,
		"debug":      false,
		"log_level":  "info",
		"output_dir": ".",
	}
}

// Load reads the dotenv file, if present, into the environment and then
// builds a Config from SCIWHEEL_ variables. Variables already set in the
// environment win over the dotenv file.
func Load() (*Config, error) {
	envFile := os.Getenv(EnvFileVar)
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	k := koanf.New(".")
	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the token is set and the base URL is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q: scheme and host are required", c.BaseURL)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return nil
}
