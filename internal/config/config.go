// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/popstack/internal/overlay"
	"github.com/jmylchreest/popstack/internal/popup"
)

// Default configuration values.
const (
	DefaultOverlayMode   = "default"
	DefaultSortingOrder  = 100
	DefaultSiblingBase   = 1
	DefaultEventBuffer   = 64
	DefaultFrameInterval = 16 * time.Millisecond
)

// Config represents the popstack configuration.
type Config struct {
	Overlay OverlayConfig `toml:"overlay"`
	Canvas  CanvasConfig  `toml:"canvas"`
	Stack   StackConfig   `toml:"stack"`
	Events  EventsConfig  `toml:"events"`
	TUI     TUIConfig     `toml:"tui"`
	Kinds   []KindConfig  `toml:"kinds"`
}

// OverlayConfig holds shared backdrop settings.
type OverlayConfig struct {
	Mode string `toml:"mode"` // default, custom
}

// CanvasConfig holds popup canvas settings.
type CanvasConfig struct {
	SortingOrder int `toml:"sorting_order"` // Baseline restored by ResetOrder
}

// StackConfig holds popup stack settings.
type StackConfig struct {
	SiblingBase int `toml:"sibling_base"` // Sibling index of the first popup
}

// EventsConfig holds event subscription settings.
type EventsConfig struct {
	Buffer int `toml:"buffer"` // Per-subscriber channel size
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	FrameInterval Duration `toml:"frame_interval"`
	ShowHelp      bool     `toml:"show_help"`
}

// KindConfig describes a popup template registered by kind.
type KindConfig struct {
	Name  string   `toml:"name"`
	Title string   `toml:"title"`
	Body  string   `toml:"body"`
	Open  Duration `toml:"open"`  // Open transition length
	Close Duration `toml:"close"` // Close transition length
}

// Template converts the kind into a popup template.
func (k KindConfig) Template() popup.Template {
	title := k.Title
	if title == "" {
		title = k.Name
	}
	return popup.Template{
		Kind:  popup.Kind(k.Name),
		Title: title,
		Body:  k.Body,
		Open:  k.Open.Duration(),
		Close: k.Close.Duration(),
	}
}

// DefaultKinds returns the built-in popup templates.
func DefaultKinds() []KindConfig {
	return []KindConfig{
		{Name: "settings", Title: "Settings", Body: "Sound, music and notifications.", Open: Duration(200 * time.Millisecond), Close: Duration(150 * time.Millisecond)},
		{Name: "shop", Title: "Shop", Body: "Spend gems on upgrades.", Open: Duration(250 * time.Millisecond), Close: Duration(150 * time.Millisecond)},
		{Name: "reward", Title: "Daily Reward", Body: "You earned 500 coins!", Open: Duration(300 * time.Millisecond), Close: Duration(200 * time.Millisecond)},
		{Name: "offline", Title: "Welcome Back", Body: "Your workers kept busy while you were away.", Open: Duration(300 * time.Millisecond), Close: Duration(200 * time.Millisecond)},
		{Name: "confirm", Title: "Are you sure?", Body: "This cannot be undone.", Open: Duration(120 * time.Millisecond), Close: Duration(100 * time.Millisecond)},
	}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Overlay: OverlayConfig{
			Mode: DefaultOverlayMode,
		},
		Canvas: CanvasConfig{
			SortingOrder: DefaultSortingOrder,
		},
		Stack: StackConfig{
			SiblingBase: DefaultSiblingBase,
		},
		Events: EventsConfig{
			Buffer: DefaultEventBuffer,
		},
		TUI: TUIConfig{
			FrameInterval: Duration(DefaultFrameInterval),
			ShowHelp:      true,
		},
		Kinds: DefaultKinds(),
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "popstack", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes TOML on top of the defaults and validates the result.
// A file that declares any [[kinds]] replaces the built-in set.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Kinds = nil

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if len(cfg.Kinds) == 0 {
		cfg.Kinds = DefaultKinds()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file so the watcher never sees a partial file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := overlay.ParseMode(c.Overlay.Mode); err != nil {
		return err
	}
	if c.Stack.SiblingBase < 1 {
		return fmt.Errorf("sibling_base must be at least 1, got %d", c.Stack.SiblingBase)
	}
	if c.Events.Buffer < 1 {
		return fmt.Errorf("events buffer must be at least 1, got %d", c.Events.Buffer)
	}
	if c.TUI.FrameInterval <= 0 {
		return fmt.Errorf("frame_interval must be positive, got %s", c.TUI.FrameInterval.Duration())
	}

	seen := make(map[string]bool, len(c.Kinds))
	for _, k := range c.Kinds {
		if k.Name == "" {
			return errors.New("kind name must not be empty")
		}
		if seen[k.Name] {
			return fmt.Errorf("duplicate kind %q", k.Name)
		}
		seen[k.Name] = true
		if k.Open < 0 || k.Close < 0 {
			return fmt.Errorf("kind %q: transition durations must not be negative", k.Name)
		}
	}
	return nil
}

// OverlayMode returns the parsed overlay mode, falling back to default.
func (c *Config) OverlayMode() overlay.Mode {
	mode, err := overlay.ParseMode(c.Overlay.Mode)
	if err != nil {
		return overlay.ModeDefault
	}
	return mode
}

// Templates returns the popup templates for every configured kind.
func (c *Config) Templates() []popup.Template {
	templates := make([]popup.Template, len(c.Kinds))
	for i, k := range c.Kinds {
		templates[i] = k.Template()
	}
	return templates
}
