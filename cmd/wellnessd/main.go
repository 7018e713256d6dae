package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"wellnessd/internal/config"
	"wellnessd/internal/model"
	"wellnessd/internal/notify"
	"wellnessd/internal/scheduler"
	"wellnessd/internal/storage"
	"wellnessd/internal/timer"
	"wellnessd/internal/update"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wellnessd: load config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wellnessd: open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	db, err := sql.Open("sqlite3", cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if err := storage.MigrateUp(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("init repository")
	}

	ctx := context.Background()
	settings, err := loadOrSeedSettings(ctx, repo)
	if err != nil {
		logger.Fatal().Err(err).Msg("load settings")
	}

	now := time.Now()
	timers, err := restoreTimers(ctx, repo, settings, now)
	if err != nil {
		logger.Fatal().Err(err).Msg("restore timers")
	}

	engine := scheduler.NewEngine(cfg.Scheduler.Buffer)
	engine.Start()
	defer engine.Stop()

	m := update.NewModel(update.Deps{
		Store:          repo,
		Scheduler:      engine,
		Notifier:       notify.NewDesktop(),
		Logger:         logger,
		Settings:       settings,
		Timers:         timers,
		DesktopEnabled: cfg.Notifications.Desktop,
	})

	logger.Info().Str("db", cfg.Database.Path).Msg("wellnessd started")
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error().Err(err).Msg("program failed")
		fmt.Fprintf(os.Stderr, "wellnessd failed: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Log.Path == "" {
		return zerolog.Nop(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), 0o755); err != nil {
		return zerolog.Logger{}, nil, err
	}
	// the TUI owns stdout, so logs go to a file
	f, err := os.OpenFile(cfg.Log.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}
	logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return logger, func() { _ = f.Close() }, nil
}

func loadOrSeedSettings(ctx context.Context, repo *storage.SQLiteRepository) (model.Settings, error) {
	row, err := repo.LoadSettings(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		defaults := model.DefaultSettings()
		seed := storage.Settings{
			WaterIntervalMin:    defaults.WaterIntervalMin,
			StandupIntervalMin:  defaults.StandupIntervalMin,
			SnoozeMin:           defaults.SnoozeMin,
			AutoRestartGraceMin: defaults.AutoRestartGraceMin,
			DesktopNotify:       defaults.DesktopNotify,
			QuietHours:          defaults.QuietHours,
			WaterGoal:           defaults.WaterGoal,
			StandupGoal:         defaults.StandupGoal,
			UpdatedAt:           time.Now().UTC(),
		}
		if seedErr := repo.SaveSettings(ctx, seed); seedErr != nil {
			return model.Settings{}, seedErr
		}
		return defaults, nil
	}
	if err != nil {
		return model.Settings{}, err
	}

	out := model.Settings{
		WaterIntervalMin:    row.WaterIntervalMin,
		StandupIntervalMin:  row.StandupIntervalMin,
		SnoozeMin:           row.SnoozeMin,
		AutoRestartGraceMin: row.AutoRestartGraceMin,
		DesktopNotify:       row.DesktopNotify,
		QuietHours:          row.QuietHours,
		WaterGoal:           row.WaterGoal,
		StandupGoal:         row.StandupGoal,
	}
	if err := out.Validate(); err != nil {
		return model.DefaultSettings(), nil
	}
	return out, nil
}

func restoreTimers(ctx context.Context, repo *storage.SQLiteRepository, settings model.Settings, now time.Time) ([]*timer.Timer, error) {
	rows, err := repo.ListTimers(ctx)
	if err != nil {
		return nil, err
	}
	byKind := make(map[string]storage.TimerSnapshot, len(rows))
	for _, row := range rows {
		byKind[row.Kind] = row
	}

	out := make([]*timer.Timer, 0, len(model.Kinds()))
	for _, kind := range model.Kinds() {
		row, ok := byKind[string(kind)]
		if !ok {
			t, newErr := timer.New(kind, settings.Interval(kind))
			if newErr != nil {
				return nil, newErr
			}
			out = append(out, t)
			continue
		}
		snap := timer.Snapshot{
			Kind:      kind,
			State:     timer.State(row.State),
			Interval:  row.Interval,
			Remaining: row.Remaining,
		}
		if row.NextFireAt != nil {
			snap.NextFireAt = *row.NextFireAt
		}
		if row.FiredAt != nil {
			snap.FiredAt = *row.FiredAt
		}
		t, restoreErr := timer.Restore(snap, now)
		if restoreErr != nil {
			// corrupt row: fall back to a fresh timer rather than refuse to start
			t, restoreErr = timer.New(kind, settings.Interval(kind))
			if restoreErr != nil {
				return nil, restoreErr
			}
		}
		out = append(out, t)
	}
	return out, nil
}
