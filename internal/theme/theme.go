// Package theme picks the syntax highlighting theme for the terminal.
package theme

import (
	"slices"

	"github.com/alecthomas/chroma/v2/styles"
)

const (
	// Auto follows the terminal background.
	Auto = "auto"

	DefaultDark  = "gruvbox"
	DefaultLight = "gruvbox-light"
)

// GetSyntaxThemes lists every available syntax theme, sorted.
func GetSyntaxThemes() []string {
	styleNames := styles.Names()
	slices.Sort(styleNames)
	return styleNames
}

func IsSyntaxTheme(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

// GetDefaultSyntaxTheme returns the default theme for the background.
func GetDefaultSyntaxTheme(darkBackground bool) string {
	if darkBackground {
		return DefaultDark
	}
	return DefaultLight
}

// ResolveSyntaxTheme returns name when it is a known theme, and the background default for
// Auto, an empty name or an unknown one.
func ResolveSyntaxTheme(name string, darkBackground bool) string {
	if name != Auto && IsSyntaxTheme(name) {
		return name
	}
	return GetDefaultSyntaxTheme(darkBackground)
}
