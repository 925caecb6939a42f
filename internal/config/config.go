// Package config handles reading and writing the intervue config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Modes select where sessions run.
const (
	ModeRemote = "remote" // interview API server
	ModeLocal  = "local"  // in-process with SQLite and an LLM
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Mode     string         `yaml:"mode"`
	API      APIConfig      `yaml:"api"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
	Capture  CaptureConfig  `yaml:"capture"`
	Local    LocalConfig    `yaml:"local"`
}

// APIConfig locates the interview server.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token,omitempty"`
}

// TimeoutsConfig bounds each network operation.
type TimeoutsConfig struct {
	Transcribe time.Duration `yaml:"transcribe"`
	Submit     time.Duration `yaml:"submit"`
	Fetch      time.Duration `yaml:"fetch"`
}

// CaptureConfig controls microphone recording through ffmpeg.
type CaptureConfig struct {
	Command     string `yaml:"command"`
	InputFormat string `yaml:"input_format,omitempty"` // alsa, pulse, avfoundation, dshow
	InputDevice string `yaml:"input_device,omitempty"`
	AudioFile   string `yaml:"audio_file,omitempty"` // replay a WAV instead of recording
}

// LocalConfig controls offline sessions.
type LocalConfig struct {
	QuestionCount int           `yaml:"question_count"`
	TimeLimit     int           `yaml:"time_limit"` // seconds per question
	SessionLimit  time.Duration `yaml:"session_limit"`
	DataDir       string        `yaml:"data_dir,omitempty"` // recorded answers
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode: ModeRemote,
		API: APIConfig{
			BaseURL: "http://localhost:5000",
		},
		Timeouts: TimeoutsConfig{
			Transcribe: 90 * time.Second,
			Submit:     60 * time.Second,
			Fetch:      30 * time.Second,
		},
		Capture: CaptureConfig{
			Command: "ffmpeg",
		},
		Local: LocalConfig{
			QuestionCount: 5,
			TimeLimit:     120,
			SessionLimit:  60 * time.Minute,
		},
	}
}

// DefaultPath resolves the config file path in priority order:
// 1. INTERVUE_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/intervue/config.yaml
// 3. ~/.config/intervue/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv("INTERVUE_CONFIG"); p != "" {
		return p, nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "intervue", "config.yaml"), nil
}

// Load reads the config at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	// May hold an API token.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from INTERVUE_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("INTERVUE_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("INTERVUE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("INTERVUE_API_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("INTERVUE_FFMPEG"); v != "" {
		c.Capture.Command = v
	}
	if v := os.Getenv("INTERVUE_AUDIO_FORMAT"); v != "" {
		c.Capture.InputFormat = v
	}
	if v := os.Getenv("INTERVUE_AUDIO_DEVICE"); v != "" {
		c.Capture.InputDevice = v
	}
	if v := os.Getenv("INTERVUE_QUESTION_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("INTERVUE_QUESTION_COUNT: %w", err)
		}
		c.Local.QuestionCount = n
	}
	if v := os.Getenv("INTERVUE_TRANSCRIBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("INTERVUE_TRANSCRIBE_TIMEOUT: %w", err)
		}
		c.Timeouts.Transcribe = d
	}
	return nil
}

// Validate checks the config is usable.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeRemote:
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
		}
	case ModeLocal:
		if c.Local.QuestionCount <= 0 {
			return fmt.Errorf("local.question_count must be positive, got %d", c.Local.QuestionCount)
		}
		if c.Local.TimeLimit <= 0 {
			return fmt.Errorf("local.time_limit must be positive, got %d", c.Local.TimeLimit)
		}
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeRemote, ModeLocal, c.Mode)
	}
	if c.Timeouts.Transcribe <= 0 || c.Timeouts.Submit <= 0 || c.Timeouts.Fetch <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}
