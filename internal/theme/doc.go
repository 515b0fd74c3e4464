// Package theme maps event categories to their card styling: icon, tint
// for light and dark color schemes, and card height. Themes are TOML files
// loaded from ~/.config/eventlog/themes/, with bundled fallbacks.
package theme
