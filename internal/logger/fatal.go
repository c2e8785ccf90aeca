package logger

import (
	"fmt"
	"log/slog"
	"os"
)

// Fatal logs msg at error level through the default slog logger and
// terminates the process. Reserved for command-line entry paths, never for
// library code a host might embed.
func Fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

// Fatalf formats its arguments before logging and exiting, for callers that
// don't have structured key/value pairs to attach.
func Fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}

// FatalWithLogger is Fatal against an explicit logger rather than the
// package-level default, so a caller already holding a configured
// *slog.Logger (e.g. unwrapped from a StyledLogger) gets consistent
// formatting on the way out.
func FatalWithLogger(target *slog.Logger, msg string, args ...any) {
	target.Error(msg, args...)
	os.Exit(1)
}
