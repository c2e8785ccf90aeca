package version

import (
	"fmt"
	"log"
	"strings"

	"github.com/adaptive/scheduler/theme"
)

var (
	Name        = "scheduler"
	Authors     = "Adaptive Scheduler contributors"
	Description = "Adaptive outbound proxy scheduler"
	Version     = "v0.0.1"
	Commit      = "none"
	Date        = "nowish"
	User        = "local"
)

const (
	GithubHomeText  = "github.com/adaptive/scheduler"
	GithubHomeUri   = "https://github.com/adaptive/scheduler"
	GithubLatestUri = "https://github.com/adaptive/scheduler/releases/latest"
)

func PrintVersionInfo(extendedInfo bool, vlog *log.Logger) {
	t := theme.Default()

	githubUri := t.Hyperlink(GithubHomeText, GithubHomeUri)
	latestUri := t.Hyperlink(Version, GithubLatestUri)
	padLatest := fmt.Sprintf("%*s", 1-len(Version), "")
	padBuffer := fmt.Sprintf("%*s", 2, "")

	var b strings.Builder

	b.WriteString(t.ColourSplash(`
╔────────────────────────────────────────────────────────╗
│     _             _   _                                │
│    / \   __| | __ _ _ __ | |_(_)_   _____               │
│   / _ \ / _  |/ _  | '_ \| __| \ \ / / _ \              │
│  / ___ \ (_| | (_| | |_) | |_| |\ V /  __/              │
│ /_/   \_\__,_|\__,_| .__/ \__|_| \_/ \___|              │
│                     |_|    scheduler                    │` + "\n"))

	b.WriteString(t.ColourSplash("│ "))
	b.WriteString(t.StyleUrl(githubUri))
	b.WriteString(padLatest)
	b.WriteString(t.ColourVersion(latestUri))
	b.WriteString(padBuffer)
	b.WriteString(t.ColourSplash(" │\n"))
	b.WriteString(t.ColourSplash("╚────────────────────────────────────────────────────────╝"))

	if extendedInfo {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(" Commit: %s\n", Commit))
		b.WriteString(fmt.Sprintf("  Built: %s\n", Date))
		b.WriteString(fmt.Sprintf("  Using: %s\n", User))
	}

	vlog.Println(b.String())
}
