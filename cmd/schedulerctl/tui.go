package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/orchestrator"
	"github.com/adaptive/scheduler/internal/util"
	"github.com/adaptive/scheduler/internal/util/pattern"
	"github.com/adaptive/scheduler/pkg/format"
	"github.com/adaptive/scheduler/theme"
)

// tickMsg drives the dashboard's periodic refresh; the Orchestrator itself
// has no polling loops, this is purely a terminal redraw cadence.
type tickMsg time.Time

// dashboard is a bubbletea Model rendering a live table of endpoint
// quality, cooldown and last-seen latency.
type dashboard struct {
	orch   *orchestrator.Orchestrator
	theme  theme.Theme
	filter string
	width  int
	height int
}

// newDashboard builds the dashboard model. filter, if non-empty, is a glob
// pattern ("eu-*", "*-backup") narrowing the endpoint table to matching
// names — handy when a fleet has too many endpoints to fit one screen.
func newDashboard(orch *orchestrator.Orchestrator, filter string) dashboard {
	return dashboard{orch: orch, theme: theme.Default(), filter: filter, width: util.TerminalWidth()}
}

func (d dashboard) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (d dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		d.width, d.height = m.Width, m.Height
		return d, nil
	case tea.KeyMsg:
		switch m.String() {
		case "q", "ctrl+c", "esc":
			return d, tea.Quit
		}
		return d, nil
	case tickMsg:
		return d, tickEvery()
	}
	return d, nil
}

func (d dashboard) View() string {
	var b strings.Builder

	title := d.theme.Splash.Sprint("adaptive scheduler")
	b.WriteString(title + "\n\n")

	header := fmt.Sprintf("%-20s %-8s %-10s %-12s %-10s %-10s", "ENDPOINT", "QUALITY", "COOLDOWN", "LAST LATENCY", "REGION", "CHECKED")
	b.WriteString(d.theme.Muted.Sprint(header) + "\n")

	endpoints := d.orch.Endpoints()
	if d.filter != "" {
		filtered := endpoints[:0:0]
		for _, ep := range endpoints {
			if pattern.MatchesGlob(ep.Name, d.filter) {
				filtered = append(filtered, ep)
			}
		}
		endpoints = filtered
	}
	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i].Quality > endpoints[j].Quality })

	current, _ := d.orch.CurrentEndpoint()
	now := time.Now()
	for _, ep := range endpoints {
		b.WriteString(d.row(ep, now, ep.ID == current) + "\n")
	}

	if len(endpoints) == 0 {
		b.WriteString(d.theme.Muted.Sprint("no endpoints configured") + "\n")
	} else {
		healthy := 0
		for _, ep := range endpoints {
			if !ep.InCooldown(now) {
				healthy++
			}
		}
		summary := fmt.Sprintf("%s available", format.EndpointsUp(healthy, len(endpoints)))
		b.WriteString("\n" + d.theme.Muted.Sprint(summary) + "\n")
	}

	b.WriteString("\n" + d.theme.Muted.Sprint("q to quit") + "\n")

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	if d.width > 4 {
		frame = frame.Width(d.width - 4)
	}
	return frame.Render(b.String())
}

func (d dashboard) row(ep *domain.Endpoint, now time.Time, current bool) string {
	qualityStyle := d.theme.QualityStyle(ep.Quality)
	cooldown := "-"
	if ep.InCooldown(now) {
		cooldown = format.TimeUntil(ep.CooldownUntil)
	}
	region := "-"
	if ep.Geo != nil && ep.Geo.Country != "" {
		region = ep.Geo.Country
	}

	name := truncate(ep.Name, 20)
	if current {
		name = d.theme.Endpoint.Sprint(name + " *")
	}

	return fmt.Sprintf("%-20s %s %-10s %-12s %-10s %-10s",
		name,
		qualityStyle.Sprintf("%6.1f", ep.Quality),
		cooldown,
		format.Latency(int64(ep.LastLatencyMs)),
		region,
		format.TimeAgo(ep.LastEvaluated),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
