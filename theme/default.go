// Package theme carries the pterm colour/style palette used by the styled
// logger and the operator CLI.
package theme

import "github.com/pterm/pterm"

// Theme groups the named styles the logger and CLI draw from so colour
// choices live in one place instead of being scattered across call sites.
type Theme struct {
	Name string

	Splash  pterm.Style
	Version pterm.Style
	Url     pterm.Style

	Info    pterm.Style
	Warn    pterm.Style
	Error   pterm.Style
	Debug   pterm.Style
	Success pterm.Style
	Muted   pterm.Style

	Counts   pterm.Style
	Numbers  pterm.Style
	Endpoint pterm.Style

	QualityGood pterm.Style
	QualityFair pterm.Style
	QualityPoor pterm.Style
	Cooldown    pterm.Style
}

// Default returns the standard dark-terminal palette.
func Default() Theme {
	return Theme{
		Name: "default",

		Splash:  *pterm.NewStyle(pterm.FgCyan, pterm.Bold),
		Version: *pterm.NewStyle(pterm.FgLightCyan),
		Url:     *pterm.NewStyle(pterm.FgBlue, pterm.Underscore),

		Info:    *pterm.NewStyle(pterm.FgLightBlue),
		Warn:    *pterm.NewStyle(pterm.FgYellow),
		Error:   *pterm.NewStyle(pterm.FgRed, pterm.Bold),
		Debug:   *pterm.NewStyle(pterm.FgGray),
		Success: *pterm.NewStyle(pterm.FgGreen),
		Muted:   *pterm.NewStyle(pterm.FgGray),

		Counts:   *pterm.NewStyle(pterm.FgLightMagenta),
		Numbers:  *pterm.NewStyle(pterm.FgLightYellow),
		Endpoint: *pterm.NewStyle(pterm.FgLightCyan, pterm.Bold),

		QualityGood: *pterm.NewStyle(pterm.FgGreen),
		QualityFair: *pterm.NewStyle(pterm.FgYellow),
		QualityPoor: *pterm.NewStyle(pterm.FgRed),
		Cooldown:    *pterm.NewStyle(pterm.FgGray, pterm.Italic),
	}
}

// Dark is presently identical to Default; kept distinct so a future palette
// can diverge without touching callers that already ask for it by name.
func Dark() Theme {
	return Default()
}

// Light swaps the low-contrast styles for terminals with a light background.
func Light() Theme {
	t := Default()
	t.Name = "light"
	t.Debug = *pterm.NewStyle(pterm.FgDarkGray)
	t.Muted = *pterm.NewStyle(pterm.FgDarkGray)
	return t
}

// GetTheme resolves a theme by its config name, falling back to Default for
// anything unrecognised rather than failing startup over a typo.
func GetTheme(name string) Theme {
	switch name {
	case "dark":
		return Dark()
	case "light":
		return Light()
	default:
		return Default()
	}
}

// ColourSplash renders the splash-screen ASCII art in the theme's splash style.
func (t Theme) ColourSplash(s string) string {
	return t.Splash.Sprint(s)
}

// ColourVersion renders a version string in the theme's version style.
func (t Theme) ColourVersion(s string) string {
	return t.Version.Sprint(s)
}

// StyleUrl renders a URL in the theme's url style.
func (t Theme) StyleUrl(s string) string {
	return t.Url.Sprint(s)
}

// Hyperlink renders label followed by url in parentheses, in the theme's url
// style. No OSC-8 terminal hyperlink escape is emitted.
func (t Theme) Hyperlink(label, url string) string {
	return t.Url.Sprintf("%s (%s)", label, url)
}

// QualityStyle picks the style bucket for a given quality score in [0,100].
func (t Theme) QualityStyle(quality float64) pterm.Style {
	switch {
	case quality >= 70:
		return t.QualityGood
	case quality >= 40:
		return t.QualityFair
	default:
		return t.QualityPoor
	}
}
