package util

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// DefaultTerminalWidth is used when stdout isn't a terminal (piped output,
// CI logs) or the width query fails, so layout code always has a sane
// column budget to render against.
const DefaultTerminalWidth = 120

/*
   references:
   - https://no-color.org/
   - https://github.com/sitkevij/no_color
*/

// IsTerminal checks if stdout is a terminal using go-isatty
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// ShouldUseColors determines if coloured output should be used
func ShouldUseColors() bool {
	if noColor := os.Getenv("NO_COLOR"); noColor != "" {
		return false
	}

	if forceColor := os.Getenv("FORCE_COLOR"); forceColor != "" {
		return forceColor != "0"
	}

	if forceColors := os.Getenv("SCHEDULER_FORCE_COLORS"); forceColors != "" {
		return strings.ToLower(forceColors) == "true"
	}

	return IsTerminal()
}

// TerminalWidth reports stdout's current column count, for seeding a TUI's
// first frame before it has received a WindowSizeMsg. Falls back to
// DefaultTerminalWidth when stdout isn't a terminal.
func TerminalWidth() int {
	if !IsTerminal() {
		return DefaultTerminalWidth
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return DefaultTerminalWidth
	}
	return w
}
