// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultRecentCapacity = 5
	DefaultAutoHide       = 5 * time.Second
	DefaultCardLifetime   = 4 * time.Second
	DefaultCollapseDelay  = 0
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1m", "1h30m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Bare integers are milliseconds
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the eventlog configuration.
type Config struct {
	Overlay OverlayConfig `toml:"overlay"`
	Display DisplayConfig `toml:"display"`
	Theme   ThemeConfig   `toml:"theme"`
}

// OverlayConfig controls visibility timing and the peek strip.
type OverlayConfig struct {
	RecentCapacity int      `toml:"recent_capacity"` // Cards in the peek strip
	AutoHide       Duration `toml:"auto_hide"`       // Collapsed -> hidden after inactivity
	CardLifetime   Duration `toml:"card_lifetime"`   // Per-card display time in the strip (0 = until auto-hide)
	CollapseDelay  Duration `toml:"collapse_delay"`  // Re-check delay after the user collapses
}

// DisplayConfig contains overlay geometry in surface units.
type DisplayConfig struct {
	Width      int `toml:"width"`       // Card width (0 = fill surface minus offsets)
	OffsetX    int `toml:"offset_x"`    // Distance from the left/right edges
	OffsetY    int `toml:"offset_y"`    // Distance from the top/bottom edges
	Gap        int `toml:"gap"`         // Gap between stacked cards
	PeekHeight int `toml:"peek_height"` // Height of the expand affordance
	ButtonSize int `toml:"button_size"` // Size of the collapse/close buttons
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name (user themes dir, then bundled)
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Overlay: OverlayConfig{
			RecentCapacity: DefaultRecentCapacity,
			AutoHide:       Duration(DefaultAutoHide),
			CardLifetime:   Duration(DefaultCardLifetime),
			CollapseDelay:  Duration(DefaultCollapseDelay),
		},
		Display: DisplayConfig{
			Width:      0,
			OffsetX:    16,
			OffsetY:    12,
			Gap:        8,
			PeekHeight: 24,
			ButtonSize: 30,
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
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
	return filepath.Join(configHome, "eventlog", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
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

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Overlay.RecentCapacity < 1 || c.Overlay.RecentCapacity > 20 {
		return fmt.Errorf("recent_capacity must be between 1 and 20, got %d", c.Overlay.RecentCapacity)
	}
	if c.Overlay.AutoHide.Duration() <= 0 {
		return fmt.Errorf("auto_hide must be positive, got %s", c.Overlay.AutoHide.Duration())
	}
	if c.Overlay.CardLifetime.Duration() < 0 {
		return fmt.Errorf("card_lifetime cannot be negative, got %s", c.Overlay.CardLifetime.Duration())
	}
	if c.Overlay.CollapseDelay.Duration() < 0 {
		return fmt.Errorf("collapse_delay cannot be negative, got %s", c.Overlay.CollapseDelay.Duration())
	}

	if c.Display.Width < 0 || c.Display.Width > 4000 {
		return fmt.Errorf("width must be between 0 and 4000, got %d", c.Display.Width)
	}
	for name, v := range map[string]int{
		"offset_x": c.Display.OffsetX,
		"offset_y": c.Display.OffsetY,
		"gap":      c.Display.Gap,
	} {
		if v < 0 {
			return fmt.Errorf("%s cannot be negative, got %d", name, v)
		}
	}
	if c.Display.PeekHeight < 1 {
		return fmt.Errorf("peek_height must be at least 1, got %d", c.Display.PeekHeight)
	}
	if c.Display.ButtonSize < 1 {
		return fmt.Errorf("button_size must be at least 1, got %d", c.Display.ButtonSize)
	}

	validScheme := false
	for _, s := range ValidColorSchemes() {
		if c.Theme.ColorScheme == string(s) {
			validScheme = true
			break
		}
	}
	if !validScheme {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	return nil
}
