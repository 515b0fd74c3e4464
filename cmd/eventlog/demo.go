package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/eventlog/internal/config"
	"github.com/jmylchreest/eventlog/internal/tui"
	"github.com/jmylchreest/eventlog/internal/uiloop"
	"github.com/jmylchreest/eventlog/pkg/eventlog"
)

var demoOpts struct {
	watch     bool
	themesDir string
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the overlay over a demo application in the terminal",
	Long: `Run a terminal demo application with the event overlay on top.

Events are emitted from the keyboard; mouse clicks go to the overlay when it
claims them and to the demo application otherwise. With --watch, edits to
the config file are applied live.

Key bindings:
  m/e/w/a     Emit a message, error, warning or analytics event
  b           Emit a burst of 10 events
  enter       Expand or collapse the overlay
  esc         Close the detail sheet
  j/k, ↑/↓    Scroll the history
  ?           Show help
  q           Quit`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().BoolVar(&demoOpts.watch, "watch", true,
		"Apply config file changes while running")
	demoCmd.Flags().StringVar(&demoOpts.themesDir, "themes-dir", "",
		"Directory of user themes (default: ~/.config/eventlog/themes)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The terminal belongs to the TUI; without a log file, logs are dropped.
	demoLogger := logger
	if globalOpts.logFile == "" {
		demoLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	runner := uiloop.NewRunner(demoLogger)
	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	go func() {
		if err := runner.Run(loopCtx); err != nil && loopCtx.Err() == nil {
			demoLogger.Error("ui loop stopped", "error", err)
		}
	}()

	var el *eventlog.EventLog
	err := runner.Do(ctx, func() {
		var err error
		el, err = eventlog.New(runner,
			eventlog.WithConfig(getConfig()),
			eventlog.WithLogger(demoLogger),
			eventlog.WithThemesDir(demoOpts.themesDir),
		)
		if err != nil {
			demoLogger.Error("failed to create event log", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start ui loop: %w", err)
	}
	if el == nil {
		return fmt.Errorf("failed to create event log")
	}
	defer func() {
		_ = runner.Do(context.Background(), el.Close)
	}()

	if demoOpts.watch {
		watcher, err := startConfigWatcher(runner, el, demoLogger)
		if err != nil {
			demoLogger.Warn("config hot reload disabled", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	return tui.Run(tui.RunOptions{
		Context:  ctx,
		Executor: runner,
		EventLog: el,
		Config:   getConfig(),
		Logger:   demoLogger,
	})
}

// startConfigWatcher applies config file edits to el on the UI loop.
func startConfigWatcher(loop uiloop.Loop, el *eventlog.EventLog, logger *slog.Logger) (*config.Watcher, error) {
	watcher, err := config.NewWatcher(globalOpts.configPath, getConfig(), logger)
	if err != nil {
		return nil, err
	}

	watcher.SetReloadCallback(func(c *config.Config) {
		loop.Post(func() {
			if err := el.ApplyConfig(c); err != nil {
				logger.Warn("failed to apply config", "error", err)
			}
		})
	})
	watcher.SetErrorCallback(func(err error) {
		logger.Warn("ignoring invalid config", "error", err)
	})

	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return watcher, nil
}
