package theme

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/eventlog/internal/model"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Scheme selects between the light and dark tint of a style.
type Scheme int

const (
	SchemeLight Scheme = iota
	SchemeDark
)

// ParseScheme maps a config color_scheme value to a Scheme.
// "system" and unknown values resolve to systemDark.
func ParseScheme(s string, systemDark bool) Scheme {
	switch strings.ToLower(s) {
	case "light":
		return SchemeLight
	case "dark":
		return SchemeDark
	}
	if systemDark {
		return SchemeDark
	}
	return SchemeLight
}

// Style is the styling of one category's cards.
type Style struct {
	Icon   string  `toml:"icon"`   // Symbolic icon name
	Glyph  string  `toml:"glyph"`  // Single-cell fallback for text hosts
	Light  string  `toml:"light"`  // Tint on light backgrounds, #RRGGBB
	Dark   string  `toml:"dark"`   // Tint on dark backgrounds, #RRGGBB
	Height float64 `toml:"height"` // Card height in surface units
}

// Tint returns the style's color for scheme.
func (s Style) Tint(scheme Scheme) string {
	if scheme == SchemeDark {
		return s.Dark
	}
	return s.Light
}

// Theme holds the style of every category.
type Theme struct {
	Name      string // Theme name (without .toml extension)
	Path      string // Full path to the file (empty for bundled)
	IsDefault bool   // True if loaded from the embedded themes

	styles map[model.Category]Style
}

// ErrMissingCategory is returned when a theme file omits a category.
var ErrMissingCategory = errors.New("theme missing category")

// Parse decodes a theme file. Every category must be styled.
func Parse(name string, data []byte) (*Theme, error) {
	var raw map[string]Style
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", name, err)
	}

	t := &Theme{Name: name, styles: make(map[model.Category]Style, len(raw))}
	for key, style := range raw {
		cat, err := model.ParseCategory(key)
		if err != nil {
			return nil, fmt.Errorf("theme %s: %w", name, err)
		}
		if err := style.validate(); err != nil {
			return nil, fmt.Errorf("theme %s: [%s] %w", name, key, err)
		}
		t.styles[cat] = style
	}

	for _, cat := range model.Categories() {
		if _, ok := t.styles[cat]; !ok {
			return nil, fmt.Errorf("theme %s: %w: %s", name, ErrMissingCategory, cat)
		}
	}
	return t, nil
}

func (s Style) validate() error {
	if !hexColorRegex.MatchString(s.Light) {
		return fmt.Errorf("invalid light color %q", s.Light)
	}
	if !hexColorRegex.MatchString(s.Dark) {
		return fmt.Errorf("invalid dark color %q", s.Dark)
	}
	if s.Height <= 0 {
		return fmt.Errorf("height must be positive, got %g", s.Height)
	}
	return nil
}

// NewDefaultTheme returns the embedded default theme.
func NewDefaultTheme() *Theme {
	data, _ := GetEmbeddedTheme(DefaultThemeName)
	t, err := Parse(DefaultThemeName, data)
	if err != nil {
		// The bundled file is covered by tests.
		panic(err)
	}
	t.IsDefault = true
	return t
}

// Style returns the style for cat. Unknown categories get the analytics style.
func (t *Theme) Style(cat model.Category) Style {
	if s, ok := t.styles[cat]; ok {
		return s
	}
	return t.styles[model.DefaultCategory]
}

// Height returns the card height for cat.
func (t *Theme) Height(cat model.Category) float64 {
	return t.Style(cat).Height
}

// Tint returns the tint for cat under scheme.
func (t *Theme) Tint(cat model.Category, scheme Scheme) string {
	return t.Style(cat).Tint(scheme)
}
