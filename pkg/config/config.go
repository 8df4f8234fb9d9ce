// Package config loads the process configuration from defaults, an
// optional YAML file, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can use values like "45s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds everything the process needs at startup.
type Config struct {
	// ListenAddr is the HTTP control API's bind address.
	ListenAddr string `yaml:"listen_addr"`

	// EntryURL is the Telegram Web entry point the phone flow opens.
	EntryURL string `yaml:"entry_url"`

	// Headless controls whether the browser runs without a window.
	Headless bool `yaml:"headless"`

	// DataDir receives failure diagnostics and the localStorage artifact.
	DataDir string `yaml:"data_dir"`

	// StorePath is the SQLite accounts database. Empty disables the store.
	StorePath string `yaml:"store_path"`

	// WebDir holds the static pages served at / and /home1. Empty
	// disables static serving.
	WebDir string `yaml:"web_dir"`

	// StepTimeout bounds the slow automation waits.
	StepTimeout Duration `yaml:"step_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:  ":8765",
		EntryURL:    "https://web.telegram.org/a/",
		Headless:    true,
		DataDir:     ".",
		StorePath:   "accounts.db",
		WebDir:      "web",
		StepTimeout: Duration(30 * time.Second),
	}
}

// Load builds the configuration. path may be empty to skip the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv applies environment overrides. PORT keeps the original
// deployment contract.
func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.ListenAddr = ":" + port
	}
	if url := os.Getenv("TELEGATE_ENTRY_URL"); url != "" {
		c.EntryURL = url
	}
	if path := os.Getenv("TELEGATE_STORE_PATH"); path != "" {
		c.StorePath = path
	}
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.EntryURL == "" {
		return fmt.Errorf("entry_url must not be empty")
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("step_timeout must be positive, got %s", c.StepTimeout.Std())
	}
	return nil
}
