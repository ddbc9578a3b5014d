// Package config loads the client configuration: defaults first, then one
// YAML file overlaid on top. Missing files are not an error; a file that
// exists but does not parse is.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file search when set.
const EnvConfigPath = "SCHEDSYNC_CONFIG"

// Duration decodes YAML values like "5s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	// Server is the schedule server endpoint.
	Server ServerConfig `yaml:"server"`

	// Schedule settings for local file operations.
	Schedule ScheduleConfig `yaml:"schedule"`

	// Log settings.
	Log LogConfig `yaml:"log"`

	// UI settings.
	UI UIConfig `yaml:"ui"`
}

type ServerConfig struct {
	// URL is the websocket endpoint, e.g. ws://127.0.0.1:4455/ws.
	URL string `yaml:"url"`
	// ReconnectDelay is the pause between connection attempts.
	ReconnectDelay Duration `yaml:"reconnect_delay"`
}

type ScheduleConfig struct {
	// File is the local schedule file for save/load and the change
	// watcher. Empty disables both.
	File string `yaml:"file"`
	// WatchFile reloads the working copy when File changes on disk.
	WatchFile bool `yaml:"watch_file"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

type UIConfig struct {
	StartupView   string   `yaml:"startup_view"`
	RefreshRate   Duration `yaml:"refresh_rate"`
	ConfirmDelete bool     `yaml:"confirm_delete"`
	TimeFormat    string   `yaml:"time_format"`
	DateFormat    string   `yaml:"date_format"`
	WrapText      bool     `yaml:"wrap_text"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Server: ServerConfig{
			URL:            "ws://127.0.0.1:4455/ws",
			ReconnectDelay: Duration(5 * time.Second),
		},
		Schedule: ScheduleConfig{
			File:      filepath.Join(home, ".config", "schedsync", "schedule.json"),
			WatchFile: true,
		},
		Log: LogConfig{
			File:  filepath.Join(home, ".config", "schedsync", "schedsync.log"),
			Level: "info",
		},
		UI: UIConfig{
			StartupView:   "monitor",
			RefreshRate:   Duration(time.Second),
			ConfirmDelete: true,
			TimeFormat:    "15:04",
			DateFormat:    "Jan 2, 2006",
			WrapText:      true,
		},
	}
}

// LoadConfig reads the first config file found and overlays it on the
// defaults. No file at all just means defaults.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range searchPaths() {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error reading config from %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error loading config from %s: %w", path, err)
		}
		break
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func searchPaths() []string {
	home, _ := os.UserHomeDir()
	paths := []string{os.Getenv(EnvConfigPath)}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "schedsync", "config.yaml"))
	}
	return append(paths,
		filepath.Join(home, ".config", "schedsync", "config.yaml"),
		filepath.Join(home, ".schedsync.yaml"),
	)
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.Server.URL, "ws://") && !strings.HasPrefix(c.Server.URL, "wss://") {
		return fmt.Errorf("invalid server url %q: must start with ws:// or wss://", c.Server.URL)
	}
	if c.Server.ReconnectDelay <= 0 {
		c.Server.ReconnectDelay = Duration(5 * time.Second)
	}
	if c.UI.RefreshRate <= 0 {
		c.UI.RefreshRate = Duration(time.Second)
	}
	switch c.UI.StartupView {
	case "monitor", "schedule", "help":
	default:
		return fmt.Errorf("invalid startup_view %q", c.UI.StartupView)
	}
	return nil
}
