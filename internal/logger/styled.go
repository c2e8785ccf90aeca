package logger

import (
	"fmt"
	"log/slog"

	"github.com/adaptive/scheduler/theme"
)

// StyledLogger wraps an *slog.Logger with theme-aware helpers for the
// recurring shapes of message this codebase logs: endpoint identity,
// quality/cooldown transitions, and simple counts, so call sites don't each
// reinvent their own attribute naming.
type StyledLogger struct {
	logger *slog.Logger
	theme  theme.Theme
}

// NewStyled wraps a bare slog.Logger in the default theme.
func NewStyled(l *slog.Logger) *StyledLogger {
	return &StyledLogger{logger: l, theme: theme.Default()}
}

// NewWithTheme wraps a bare slog.Logger in a named theme.
func NewWithTheme(l *slog.Logger, themeName string) *StyledLogger {
	return &StyledLogger{logger: l, theme: theme.GetTheme(themeName)}
}

func (sl *StyledLogger) GetUnderlying() *slog.Logger { return sl.logger }

func (sl *StyledLogger) With(args ...any) *StyledLogger {
	return &StyledLogger{logger: sl.logger.With(args...), theme: sl.theme}
}

func (sl *StyledLogger) WithAttrs(attrs ...slog.Attr) *StyledLogger {
	return &StyledLogger{logger: sl.logger.With(toInterfaceSlice(attrs)...), theme: sl.theme}
}

func toInterfaceSlice(attrs []slog.Attr) []any {
	out := make([]any, len(attrs))
	for i, a := range attrs {
		out[i] = a
	}
	return out
}

func (sl *StyledLogger) Debug(msg string, args ...any) { sl.logger.Debug(msg, args...) }
func (sl *StyledLogger) Info(msg string, args ...any)  { sl.logger.Info(msg, args...) }
func (sl *StyledLogger) Warn(msg string, args ...any)  { sl.logger.Warn(msg, args...) }
func (sl *StyledLogger) Error(msg string, args ...any) { sl.logger.Error(msg, args...) }

// InfoWithCount logs msg with a named count attribute, e.g. "loaded endpoints" count=4.
func (sl *StyledLogger) InfoWithCount(msg, countLabel string, count int) {
	sl.logger.Info(msg, slog.String("countLabel", countLabel), slog.Int("count", count))
}

// InfoWithEndpoint logs msg scoped to a single endpoint id/name.
func (sl *StyledLogger) InfoWithEndpoint(msg, endpointID, name string, args ...any) {
	sl.logger.Info(msg, append([]any{slog.String("endpoint_id", endpointID), slog.String("endpoint", name)}, args...)...)
}

func (sl *StyledLogger) WarnWithEndpoint(msg, endpointID, name string, args ...any) {
	sl.logger.Warn(msg, append([]any{slog.String("endpoint_id", endpointID), slog.String("endpoint", name)}, args...)...)
}

func (sl *StyledLogger) ErrorWithEndpoint(msg, endpointID, name string, err error, args ...any) {
	sl.logger.Error(msg, append([]any{slog.String("endpoint_id", endpointID), slog.String("endpoint", name), slog.Any("error", err)}, args...)...)
}

// InfoWithNumbers logs msg with a set of named numeric attributes, used by
// the orchestrator's per-probe sample report.
func (sl *StyledLogger) InfoWithNumbers(msg string, numbers map[string]float64) {
	args := make([]any, 0, len(numbers)*2)
	for k, v := range numbers {
		args = append(args, slog.Float64(k, v))
	}
	sl.logger.Info(msg, args...)
}

// QualityLabel renders a score into the three-tier label the styled log
// lines use: "good" (>=70), "fair" (>=40) or "poor".
func QualityLabel(quality float64) string {
	switch {
	case quality >= 70:
		return "good"
	case quality >= 40:
		return "fair"
	default:
		return "poor"
	}
}

// InfoQualityChange logs an endpoint's quality score transition after a
// scorer update, coloured by the theme's quality tiers on pretty terminals
// (the colour itself lives in the pterm slog handler's key styling; here we
// just attach the tier label as a structured attribute).
func (sl *StyledLogger) InfoQualityChange(endpointID, name string, before, after float64) {
	sl.logger.Info("endpoint quality updated",
		slog.String("endpoint_id", endpointID),
		slog.String("endpoint", name),
		slog.Float64("quality_before", before),
		slog.Float64("quality_after", after),
		slog.String("tier", QualityLabel(after)),
	)
}

// InfoCooldown logs an endpoint entering cooldown, along with its duration.
func (sl *StyledLogger) InfoCooldown(endpointID, name string, seconds float64) {
	sl.logger.Info("endpoint entering cooldown",
		slog.String("endpoint_id", endpointID),
		slog.String("endpoint", name),
		slog.Float64("cooldown_seconds", seconds),
	)
}

// WarnEmergencyFailover logs an endpoint forced into immediate failover
// after exceeding the configured hard-failure streak.
func (sl *StyledLogger) WarnEmergencyFailover(endpointID, name string, streak int) {
	sl.logger.Warn("emergency failover triggered",
		slog.String("endpoint_id", endpointID),
		slog.String("endpoint", name),
		slog.Int("hard_fail_streak", streak),
	)
}

// Sprintf is a small convenience used by CLI code that wants themed text
// without going through slog.
func (sl *StyledLogger) Sprintf(style func(theme.Theme, string) string, format string, args ...any) string {
	return style(sl.theme, fmt.Sprintf(format, args...))
}
