package worker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/appstore"
	"github.com/wokaidabaoma/econ-site/internal/config"
	"github.com/wokaidabaoma/econ-site/internal/logger"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ReminderWorker periodically scans the tracked applications and logs every
// deadline inside the upcoming window with the days remaining.
type ReminderWorker struct {
	cfg  config.ReminderConfig
	apps *appstore.Store
	pool *Pool
	cron *cron.Cron
	log  zerolog.Logger
}

func NewReminderWorker(cfg config.ReminderConfig, apps *appstore.Store) *ReminderWorker {
	return &ReminderWorker{
		cfg:  cfg,
		apps: apps,
		pool: NewPool(cfg.Workers),
		cron: cron.New(),
		log:  logger.For("reminder"),
	}
}

// Start schedules the scan and blocks until the context is cancelled.
func (w *ReminderWorker) Start(ctx context.Context) error {
	w.log.Info().Str("schedule", w.cfg.Schedule).Msg("Starting reminder worker")

	w.pool.Start(ctx)

	_, err := w.cron.AddFunc(w.cfg.Schedule, func() {
		w.pool.Submit(w.scan)
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", w.cfg.Schedule, err)
	}

	if w.cfg.RunOnStart {
		w.pool.Submit(w.scan)
	}

	w.cron.Start()
	<-ctx.Done()
	return ctx.Err()
}

func (w *ReminderWorker) Stop() {
	w.log.Info().Msg("Stopping reminder worker")
	<-w.cron.Stop().Done()
	w.pool.Stop()
}

func (w *ReminderWorker) scan(ctx context.Context) error {
	stats, err := w.apps.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}

	w.log.Info().
		Int("total", stats.Total).
		Int("upcoming", len(stats.UpcomingDeadlines)).
		Msg("Deadline scan completed")

	for _, app := range stats.UpcomingDeadlines {
		days := int(math.Ceil(app.Dates.ApplicationDeadline.Sub(stats.GeneratedAt).Hours() / 24))
		w.log.Warn().
			Str("university", app.University).
			Str("program", app.ProgramName).
			Time("deadline", app.Dates.ApplicationDeadline).
			Int("days_remaining", days).
			Msg("Application deadline approaching")
	}
	return nil
}

// NextRun reports when the schedule would fire next, for startup logging.
func (w *ReminderWorker) NextRun(after time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(w.cfg.Schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reminder schedule %q: %w", w.cfg.Schedule, err)
	}
	return schedule.Next(after), nil
}
