// Command schedulerctl is the operator-facing entry point: it loads config,
// starts the Orchestrator, and renders a live TUI dashboard of endpoint
// quality until interrupted: styled logging, signal-driven graceful
// shutdown, and a shutdown process-stats report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/logger"
	"github.com/adaptive/scheduler/internal/orchestrator"
	"github.com/adaptive/scheduler/internal/version"
	"github.com/adaptive/scheduler/pkg/format"
	"github.com/adaptive/scheduler/pkg/nerdstats"
	"github.com/adaptive/scheduler/pkg/profiler"
)

func main() {
	startTime := time.Now()
	vlog := log.New(log.Writer(), "", 0)
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.PrintVersionInfo(true, vlog)
		os.Exit(0)
	}
	version.PrintVersionInfo(false, vlog)

	filterFlag := flag.String("filter", "", "glob pattern (e.g. eu-*) narrowing the dashboard to matching endpoint names")
	pprofFlag := flag.Bool("pprof", false, "expose pprof endpoints on localhost for live profiling")
	flag.Parse()

	if *pprofFlag {
		profiler.InitialiseProfiler()
	}

	var orch *orchestrator.Orchestrator
	cfg, err := config.Load(func() {
		if orch != nil {
			orch.Reevaluate(orchestrator.SignalConfigChanged)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logInstance, cleanup, err := logger.New(&logger.Config{
		Level:      cfg.Logging.Level,
		Theme:      cfg.Logging.Theme,
		LogDir:     cfg.Logging.LogDir,
		FileOutput: cfg.Logging.FileOutput,
		PrettyLogs: cfg.Logging.PrettyLogs,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	slog.SetDefault(logInstance)

	styled := logger.NewWithTheme(logInstance, cfg.Logging.Theme)
	styled.Info("initialising", "version", version.Version, "pid", os.Getpid())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		styled.Info("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	storage := newFileStorage(snapshotPath())
	orch, err = orchestrator.New(*cfg, styled, &http.Client{}, storage, nil)
	if err != nil {
		logger.FatalWithLogger(styled.GetUnderlying(), "failed to build orchestrator", "error", err)
	}

	if err := orch.Start(ctx); err != nil {
		logger.FatalWithLogger(styled.GetUnderlying(), "failed to start orchestrator", "error", err)
	}

	program := tea.NewProgram(newDashboard(orch, *filterFlag), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		styled.Error("dashboard exited with error", "error", err)
	}

	cancel()
	if err := orch.Stop(context.Background()); err != nil {
		styled.Error("error during shutdown", "error", err)
	}

	reportProcessStats(styled, startTime)
	styled.Info("scheduler has shutdown")
}

func snapshotPath() string {
	if p := os.Getenv("SCHEDULER_SNAPSHOT_FILE"); p != "" {
		return p
	}
	return "scheduler-snapshot.json"
}

func reportProcessStats(styled *logger.StyledLogger, startTime time.Time) {
	runtime.GC()
	stats := nerdstats.Snapshot(startTime)

	styled.Info("process memory stats",
		"heap_alloc", format.Bytes(stats.HeapAlloc),
		"heap_sys", format.Bytes(stats.HeapSys),
		"total_alloc", format.Bytes(stats.TotalAlloc),
		"memory_pressure", stats.GetMemoryPressure(),
	)
	styled.Info("runtime stats",
		"uptime", format.Duration(stats.Uptime),
		"go_version", stats.GoVersion,
		"num_cpu", stats.NumCPU,
		"num_goroutines", stats.NumGoroutines,
		"goroutine_health", stats.GetGoroutineHealthStatus(),
		"avg_gc_pause", nerdstats.CalculateAverageGCPause(stats),
	)
	if build := stats.GetBuildInfoSummary(); len(build) > 0 {
		args := make([]any, 0, len(build)*2)
		for k, v := range build {
			args = append(args, k, v)
		}
		styled.Info("build info", args...)
	}
}
