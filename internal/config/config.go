package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full lobbysniff configuration.
type Config struct {
	Capture CaptureConfig `toml:"capture"`
	HTTP    HTTPConfig    `toml:"http"`
	Journal JournalConfig `toml:"journal"`
	Log     LogConfig     `toml:"log"`
}

type CaptureConfig struct {
	Device        string `toml:"device"`
	Filter        string `toml:"filter"`
	SnapLen       int32  `toml:"snap_len"`
	Promiscuous   bool   `toml:"promiscuous"`
	PollTimeoutMS int    `toml:"poll_timeout_ms"`
}

type HTTPConfig struct {
	Enabled     bool     `toml:"enabled"`
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Capture: CaptureConfig{
			Filter:        "tcp port 6112",
			SnapLen:       65535,
			PollTimeoutMS: 250,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Addr:    ":9610",
		},
		Journal: JournalConfig{
			Path: "lobby-events.cbor",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a TOML config file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c CaptureConfig) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutMS) * time.Millisecond
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Capture.Device) == "" {
		return fmt.Errorf("capture config missing device")
	}
	if cfg.Capture.SnapLen <= 0 {
		return fmt.Errorf("capture snap_len must be positive")
	}
	if cfg.Capture.PollTimeoutMS <= 0 {
		return fmt.Errorf("capture poll_timeout_ms must be positive")
	}
	if cfg.HTTP.Enabled && strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return fmt.Errorf("http config missing addr")
	}
	if cfg.Journal.Enabled && strings.TrimSpace(cfg.Journal.Path) == "" {
		return fmt.Errorf("journal config missing path")
	}
	return nil
}
