// Package scheduler runs the due-transaction processor on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/finance-tracker/ledger/internal/application/usecase/recurrence"
)

// Runner performs one processing pass.
type Runner interface {
	Execute(ctx context.Context, input recurrence.ProcessDueInput) (*recurrence.ProcessDueOutput, error)
}

// Config holds configuration for the recurrence scheduler.
type Config struct {
	// Schedule is a cron spec or descriptor such as "@every 1h", evaluated in UTC.
	Schedule string
	// RunTimeout bounds one pass. Zero means no timeout.
	RunTimeout time.Duration
}

// RecurrenceScheduler triggers processing runs on a schedule and on demand.
// Runs never overlap.
type RecurrenceScheduler struct {
	runner     Runner
	cron       *cron.Cron
	schedule   string
	runTimeout time.Duration
	notify     chan struct{}
	running    sync.Mutex
	ctx        context.Context
}

// NewRecurrenceScheduler creates a scheduler. The schedule is validated here.
func NewRecurrenceScheduler(runner Runner, config Config) (*RecurrenceScheduler, error) {
	logger := cronLogger{}
	s := &RecurrenceScheduler{
		runner:     runner,
		schedule:   config.Schedule,
		runTimeout: config.RunTimeout,
		notify:     make(chan struct{}, 1),
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}

	if _, err := s.cron.AddFunc(config.Schedule, func() { s.run(s.ctx, "schedule") }); err != nil {
		return nil, fmt.Errorf("invalid processor schedule %q: %w", config.Schedule, err)
	}
	return s, nil
}

// Start runs once immediately, then on the schedule and on every Notify.
// It blocks until the context is cancelled and the in-flight run has finished.
func (s *RecurrenceScheduler) Start(ctx context.Context) {
	s.ctx = ctx
	slog.Info("Recurrence scheduler started", "schedule", s.schedule, "run_timeout", s.runTimeout)

	s.cron.Start()
	s.run(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			stopped := s.cron.Stop()
			<-stopped.Done()
			s.running.Lock()
			s.running.Unlock()
			slog.Info("Recurrence scheduler shutting down")
			return
		case <-s.notify:
			s.run(ctx, "notify")
		}
	}
}

// Notify requests a run as soon as possible without waiting for it.
// Requests made while one is pending are merged.
func (s *RecurrenceScheduler) Notify() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *RecurrenceScheduler) run(ctx context.Context, trigger string) {
	if ctx == nil || ctx.Err() != nil {
		return
	}
	if !s.running.TryLock() {
		slog.Debug("Processing run already in progress", "trigger", trigger)
		return
	}
	defer s.running.Unlock()

	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	output, err := s.runner.Execute(ctx, recurrence.ProcessDueInput{})
	if err != nil {
		slog.Error("Scheduled processing run failed", "trigger", trigger, "error", err)
		return
	}
	if output.Failed > 0 {
		slog.Warn("Scheduled processing run had failures",
			"trigger", trigger,
			"failed", output.Failed,
			"created", len(output.Created),
		)
	}
}

// cronLogger routes cron's logging to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
