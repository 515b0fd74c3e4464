package theme

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/eventlog/internal/config"
)

// Loader resolves theme names against the user themes directory and the
// bundled themes.
type Loader struct {
	logger    *slog.Logger
	themesDir string
}

// NewLoader creates a loader reading user themes from themesDir.
// An empty themesDir uses ThemesDir().
func NewLoader(themesDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if themesDir == "" {
		themesDir = ThemesDir()
	}
	return &Loader{logger: logger, themesDir: themesDir}
}

// ThemesDir returns the path to the user's themes directory, next to the
// config file.
func ThemesDir() string {
	return filepath.Join(filepath.Dir(config.ConfigPath()), "themes")
}

// Load loads a theme by name.
// Theme resolution order:
//  1. User themes directory (~/.config/eventlog/themes/)
//  2. Embedded/bundled themes
//  3. The default theme
//
// A broken user theme is logged and skipped, so Load always returns a
// usable theme.
func (l *Loader) Load(name string) *Theme {
	if name == "" {
		name = DefaultThemeName
	}

	themePath := filepath.Join(l.themesDir, name+".toml")
	if data, err := os.ReadFile(themePath); err == nil {
		t, err := Parse(name, data)
		if err == nil {
			t.Path = themePath
			l.logger.Info("loaded user theme", "name", name, "path", themePath)
			return t
		}
		l.logger.Warn("failed to load user theme, trying bundled", "theme", name, "error", err)
	}

	if data, found := GetEmbeddedTheme(name); found {
		t, err := Parse(name, data)
		if err == nil {
			t.IsDefault = true
			l.logger.Debug("loaded bundled theme", "name", name)
			return t
		}
		l.logger.Warn("bundled theme invalid", "theme", name, "error", err)
	}

	l.logger.Warn("theme not found, using default", "theme", name)
	return NewDefaultTheme()
}

// ListThemes returns bundled and user theme names, without duplicates.
func (l *Loader) ListThemes() []string {
	seen := make(map[string]bool)
	var themes []string

	for _, name := range ListEmbeddedThemes() {
		if !seen[name] {
			seen[name] = true
			themes = append(themes, name)
		}
	}

	entries, err := os.ReadDir(l.themesDir)
	if err != nil {
		l.logger.Debug("failed to read themes directory", "error", err)
		return themes
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		if !seen[name] {
			seen[name] = true
			themes = append(themes, name)
		}
	}
	return themes
}
