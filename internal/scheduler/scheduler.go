// Package scheduler fires the research pipeline on a cron schedule in the
// market's time zone.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a single-entry cron.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New validates spec and schedules run. Overlapping firings are skipped; each
// firing gets its own timeout context.
func New(spec string, loc *time.Location, timeout time.Duration, run func(context.Context), logger *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}

	cl := cronLogger{logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
	)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		run(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("scheduler: add job: %w", err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	if entries := s.cron.Entries(); len(entries) > 0 {
		s.logger.Info("scheduler: started", "next_run", entries[0].Next.Format(time.RFC3339))
	}
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler: stopped")
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	l *slog.Logger
}

func (cl cronLogger) Info(msg string, kv ...interface{}) {
	cl.l.Debug("scheduler: "+msg, kv...)
}

func (cl cronLogger) Error(err error, msg string, kv ...interface{}) {
	cl.l.Error("scheduler: "+msg, append(kv, "err", err)...)
}
