package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pawfessional/pawdesk/internal/api"
	"github.com/pawfessional/pawdesk/internal/config"
	"github.com/pawfessional/pawdesk/internal/prefs"
	"github.com/pawfessional/pawdesk/internal/realtime"
	"github.com/pawfessional/pawdesk/internal/state"
	"github.com/pawfessional/pawdesk/internal/ui"
)

// Options configure the pawdesk application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/pawdesk/prefs.toml
	ServerURL  string // overrides the configured server
}

const initialLoadTimeout = 30 * time.Second

// Run boots the pawdesk TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.ServerURL != "" {
		cfg.ServerURL = opts.ServerURL
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := api.NewClient(cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	stores := state.NewStores()
	tracker := &ui.ViewTracker{}

	coordinator, err := realtime.New(realtime.Options{
		Fetcher: client,
		Events:  client,
		Stores:  stores,
		Logger:  logger,
		StaffID: cfg.StaffID,
		Visible: tracker.Visible,
	})
	if err != nil {
		return fmt.Errorf("init sync coordinator: %w", err)
	}

	// Populate stores before the UI starts. A partial load still renders;
	// the header reports the degraded state.
	loadCtx, cancelLoad := context.WithTimeout(ctx, initialLoadTimeout)
	if err := coordinator.InitialLoad(loadCtx); err != nil {
		logger.Warn("initial load incomplete", "error", err)
	}
	cancelLoad()

	go coordinator.Run(ctx)

	logger.Info("pawdesk started",
		"server", cfg.ServerURL,
		"staff_id", cfg.StaffID,
		"session", coordinator.SessionID())

	defer func() {
		// Best-effort; the server also drops the session when the poll stops.
		logoutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = client.Logout(logoutCtx)
	}()

	return ui.Run(ctx, ui.Options{
		Context:     ctx,
		Stores:      stores,
		Coordinator: coordinator,
		Mutator:     client,
		Directory:   client,
		Tracker:     tracker,
		Config:      cfg,
		Logger:      logger,
		ThemeName:   userPrefs.Theme,
		PrefsPath:   opts.PrefsPath,
		LogPath:     cfg.ClientLogPath(),
	})
}

// openLogger writes structured JSON logs to the configured log file. The
// terminal belongs to the TUI, so nothing may log to stdout or stderr.
func openLogger(cfg config.Config) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	path := cfg.ClientLogPath()
	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	var w io.Writer = file
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = file.Close() }, nil
}
