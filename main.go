package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/sadopc/focusboard/internal/config"
	"github.com/sadopc/focusboard/internal/export"
	"github.com/sadopc/focusboard/internal/store"
	"github.com/sadopc/focusboard/internal/tui"
)

func main() {
	configPath := flag.String("config", config.Path(), "settings file")
	dbPath := flag.String("db", "", "database file (overrides config and environment)")
	exportPath := flag.String("export", "", "write a .csv or .json export to this path and exit")
	flag.Parse()

	if err := run(*configPath, *dbPath, *exportPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dbPath, exportPath string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	log.SetDefault(logger)

	s, err := store.New(cfg.DBPath, store.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	ws := store.NewWorkspace(s)
	if n := ws.Stats.CleanOld(cfg.RetentionDays); n > 0 {
		logger.Info("removed old daily stats", "days", n, "retention", cfg.RetentionDays)
	}

	if exportPath != "" {
		return exportTo(ws, exportPath)
	}

	var opts = tui.Options{Config: cfg, ConfigPath: configPath}
	interval, _ := cfg.Interval()
	if interval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.Watch(ctx, interval)
		}()
		defer func() {
			cancel()
			<-done
		}()

		changes, unsubscribe := s.Subscribe()
		defer unsubscribe()
		opts.Changes = changes
	}

	logger.Info("starting", "db", cfg.DBPath, "sync", interval)
	p := tea.NewProgram(tui.NewApp(ws, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func exportTo(ws *store.Workspace, path string) error {
	format, err := export.FormatFromPath(path)
	if err != nil {
		return err
	}
	snap := export.Snapshot{
		Projects: ws.Projects.All(),
		Tasks:    ws.Tasks.All(),
		Stats:    ws.Stats.All(),
	}
	if err := export.Write(format, snap, path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Printf("Exported %d projects and %d tasks to %s\n", len(snap.Projects), len(snap.Tasks), path)
	return nil
}

// newLogger writes to the configured log file; the terminal belongs to the UI.
func newLogger(cfg config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var w io.Writer = io.Discard
	closeFn := func() {}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "focusboard",
		ReportTimestamp: true,
	})
	return logger, closeFn, nil
}
