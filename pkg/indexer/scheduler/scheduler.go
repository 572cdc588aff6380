package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/thorchain-labs/midgardx/pkg/metrics"
)

// DefaultSpec fires at the top of every hour, when upstream closes an hourly bucket.
const DefaultSpec = "0 * * * *"

// Job is one scheduled run. fireTime is the clock reading the run was triggered at.
type Job func(ctx context.Context, fireTime time.Time)

type Config struct {
	// Spec is a standard five-field cron expression. Empty means DefaultSpec.
	Spec       string
	Clock      Clock // defaults to RealClock
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	RunOnStart bool
}

// Scheduler fires a Job on a cron schedule read from an injectable Clock.
// Runs never overlap: Run waits for a job to return before waiting for the next fire time.
type Scheduler struct {
	spec       string
	schedule   cron.Schedule
	clock      Clock
	logger     *zap.Logger
	metrics    *metrics.Metrics
	runOnStart bool
	job        Job

	mu   sync.Mutex
	next time.Time
}

func New(cfg Config, job Job) (*Scheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("scheduler: job is required")
	}
	spec := cfg.Spec
	if spec == "" {
		spec = DefaultSpec
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}

	s := &Scheduler{
		spec:       spec,
		schedule:   schedule,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		runOnStart: cfg.RunOnStart,
		job:        job,
	}
	if s.clock == nil {
		s.clock = RealClock()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.next = s.schedule.Next(s.clock.Now())
	return s, nil
}

func (s *Scheduler) Spec() string { return s.spec }

// Next returns the next fire time.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Tick runs the job if the next fire time has been reached and reports whether it did.
// The following fire time is computed from the fire time, not from when the job returned.
func (s *Scheduler) Tick(ctx context.Context) bool {
	now := s.clock.Now()

	s.mu.Lock()
	due := !now.Before(s.next)
	if due {
		s.next = s.schedule.Next(now)
	}
	s.mu.Unlock()

	if !due {
		return false
	}
	s.fire(ctx, now)
	return true
}

// Run loops until ctx is done, firing the job on schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler started",
		zap.String("spec", s.spec),
		zap.Time("next", s.Next()),
		zap.Bool("run_on_start", s.runOnStart))

	if s.runOnStart {
		s.fire(ctx, s.clock.Now())
	}

	for {
		wait := s.Next().Sub(s.clock.Now())
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return ctx.Err()
		case <-s.clock.After(wait):
			s.Tick(ctx)
		}
	}
}

// fire runs the job and recovers a panic so the loop keeps going.
func (s *Scheduler) fire(ctx context.Context, fireTime time.Time) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduled job panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
		s.metrics.ObserveTick(time.Since(started))
	}()

	s.logger.Debug("Scheduled job firing", zap.Time("fire_time", fireTime))
	s.job(ctx, fireTime)
}
