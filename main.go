package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Crowley723/proxy-health-monitor/alert"
	"github.com/Crowley723/proxy-health-monitor/config"
	"github.com/Crowley723/proxy-health-monitor/monitor"
	"github.com/Crowley723/proxy-health-monitor/providers"
	"github.com/Crowley723/proxy-health-monitor/runner"
	"github.com/Crowley723/proxy-health-monitor/store"
)

const (
	exitOK            = 0
	exitLogWriteError = 1
	exitConfigError   = 2
	exitInterrupted   = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	slog.SetDefault(newLogger(stderr, "info"))

	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		slog.Error("failed to load config", "err", err)
		return exitConfigError
	}

	logger := newLogger(stderr, cfg.Logging.Level)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	appCtx := providers.NewAppContext(ctx, cfg, logger)

	proxyMonitor, err := monitor.New(cfg, appCtx.Logger)
	if err != nil {
		appCtx.Logger.Error("failed to create monitor", "err", err)
		return exitConfigError
	}

	dispatcher := alert.NewDispatcher(cfg, alert.SelectSender(cfg.EmailAlerts), appCtx.Logger)
	openStore := func() (store.Store, error) {
		return store.Open(&cfg.Monitoring)
	}

	outcome, err := runner.New(proxyMonitor, openStore, dispatcher).Run(appCtx)
	if errors.Is(err, runner.ErrInterrupted) {
		appCtx.Logger.Warn("run interrupted, results discarded", "err", err)
		return exitInterrupted
	}
	if err != nil {
		appCtx.Logger.Error("run failed", "err", err)
		return exitLogWriteError
	}

	appCtx.Logger.Info("run complete",
		"websites", len(outcome.Results),
		"down", outcome.DownCount,
		"alerted", outcome.Alerted)

	return exitOK
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
