// Package config loads gtranslate settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults
//  2. the YAML file ($XDG_CONFIG_HOME/gtranslate/config.yaml by default)
//  3. GTRANSLATE_* environment variables
//
// Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/gtranslate/translate"
	"github.com/minios-linux/gtranslate/validation"
)

const (
	dirName   = "gtranslate"
	fileName  = "config.yaml"
	envPrefix = "GTRANSLATE_"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config holds every user-tunable setting.
type Config struct {
	// ServiceURL is the translation service root.
	ServiceURL string `yaml:"service_url" validate:"required,url"`
	// SpeechURL is the text-to-speech endpoint.
	SpeechURL string `yaml:"speech_url" validate:"required,url"`
	// HostLanguage is sent as hl with translate requests.
	HostLanguage string `yaml:"host_language" validate:"required"`
	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent" validate:"required"`
	// Proxy is an explicit proxy URL (default: HTTP_PROXY/HTTPS_PROXY).
	Proxy string `yaml:"proxy,omitempty" validate:"omitempty,url"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	// Retries is how many times a failed request is repeated (0 = never).
	Retries int `yaml:"retries" validate:"gte=0,lte=10"`

	// Player is the audio player command (empty = auto-detect).
	Player string `yaml:"player,omitempty"`
	// PlayerArgs are passed to Player before the audio file path.
	PlayerArgs []string `yaml:"player_args,omitempty"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	// LogFile, when set, receives logs instead of stderr (rotated).
	LogFile string `yaml:"log_file,omitempty"`
	// LogMaxSizeMB is the rotation size for LogFile.
	LogMaxSizeMB int `yaml:"log_max_size_mb,omitempty" validate:"gte=0"`
	// LogMaxBackups is how many rotated files to keep.
	LogMaxBackups int `yaml:"log_max_backups,omitempty" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServiceURL:    translate.DefaultServiceURL,
		SpeechURL:     translate.DefaultSpeechURL,
		HostLanguage:  translate.DefaultHostLanguage,
		UserAgent:     translate.DefaultUserAgent,
		Timeout:       30 * time.Second,
		LogLevel:      "warn",
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// Dir returns the configuration directory.
// Respects $XDG_CONFIG_HOME (falls back to ~/.config).
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, dirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", dirName), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load builds the configuration from defaults, the file at path (DefaultPath
// when empty) and the environment. A missing file is not an error unless
// path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path (DefaultPath when empty) with 0600
// permissions.
func Save(path string, cfg Config) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Environment
// ---------------------------------------------------------------------------

func getenv(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"SERVICE_URL":   &cfg.ServiceURL,
		"SPEECH_URL":    &cfg.SpeechURL,
		"HOST_LANGUAGE": &cfg.HostLanguage,
		"USER_AGENT":    &cfg.UserAgent,
		"PROXY":         &cfg.Proxy,
		"PLAYER":        &cfg.Player,
		"LOG_LEVEL":     &cfg.LogLevel,
		"LOG_FILE":      &cfg.LogFile,
	}
	for key, dst := range strs {
		if v, ok := getenv(key); ok {
			*dst = v
		}
	}

	if v, ok := getenv("PLAYER_ARGS"); ok {
		cfg.PlayerArgs = strings.Fields(v)
	}
	if v, ok := getenv("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", envPrefix, err)
		}
		cfg.Timeout = d
	}
	if v, ok := getenv("RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRETRIES: %w", envPrefix, err)
		}
		cfg.Retries = n
	}
	return nil
}
