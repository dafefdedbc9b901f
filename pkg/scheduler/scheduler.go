package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCadence is how often the scheduler looks for due jobs.
const DefaultCadence = 60 * time.Second

var (
	ErrStopped = errors.New("scheduler stopped")
	ErrRunning = errors.New("scheduler already running")
)

// State is the lifecycle position of a Scheduler.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Job is the work run when an entry becomes due.
type Job func(ctx context.Context) error

// EntryInfo describes a registered entry.
type EntryInfo struct {
	Name string
	Spec string
	Next time.Time
}

type entry struct {
	name     string
	spec     string
	schedule cron.Schedule
	next     time.Time
	job      Job
}

var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler runs registered jobs at their scheduled times. Every instance
// owns its entries; due jobs are started on their own goroutine and are
// never awaited by the tick loop.
type Scheduler struct {
	mu       sync.Mutex
	entries  []*entry
	state    State
	wake     chan struct{}
	inflight sync.WaitGroup

	cadence time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Scheduler)

// WithCadence overrides the interval between due checks.
func WithCadence(d time.Duration) Option {
	return func(s *Scheduler) { s.cadence = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		wake:    make(chan struct{}),
		cadence: DefaultCadence,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers job under a five field cron expression.
func (s *Scheduler) Add(name, spec string, job Job) error {
	schedule, err := specParser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return ErrStopped
	}

	e := &entry{name: name, spec: spec, schedule: schedule, job: job}
	e.next = schedule.Next(s.now())
	s.entries = append(s.entries, e)

	s.logger.Info("scheduled job", "job", name, "spec", spec, "next", e.next)
	return nil
}

// Daily registers job to run every day at the HH:MM wall clock time.
func (s *Scheduler) Daily(name, at string, job Job) error {
	hour, minute, err := ParseClock(at)
	if err != nil {
		return err
	}
	return s.Add(name, fmt.Sprintf("%d %d * * *", minute, hour), job)
}

// Weekly registers job to run every week on day at HH:MM.
func (s *Scheduler) Weekly(name string, day time.Weekday, at string, job Job) error {
	hour, minute, err := ParseClock(at)
	if err != nil {
		return err
	}
	return s.Add(name, fmt.Sprintf("%d %d * * %d", minute, hour, int(day)), job)
}

// Start runs the tick loop until Stop is called or ctx is cancelled. It
// checks for due jobs immediately and then once per cadence.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateRunning:
		s.mu.Unlock()
		return ErrRunning
	case StateStopped:
		s.mu.Unlock()
		return ErrStopped
	}
	s.state = StateRunning
	s.mu.Unlock()

	s.logger.Info("scheduler started", "cadence", s.cadence, "entries", len(s.Entries()))

	ticker := time.NewTicker(s.cadence)
	defer ticker.Stop()

	for {
		s.RunPending(ctx)

		select {
		case <-ctx.Done():
			s.Stop()
			return nil
		case <-s.wake:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop moves the scheduler to its terminal state and drops every entry.
// Jobs already dispatched keep running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return
	}
	s.state = StateStopped
	s.entries = nil
	close(s.wake)
	s.logger.Info("scheduler stopped")
}

// RunPending dispatches every due job and returns how many were started.
func (s *Scheduler) RunPending(ctx context.Context) int {
	now := s.now()

	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return 0
	}
	var due []*entry
	for _, e := range s.entries {
		if !now.Before(e.next) {
			due = append(due, e)
			e.next = e.schedule.Next(now)
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		s.dispatch(ctx, e.name, e.job)
	}
	return len(due)
}

func (s *Scheduler) dispatch(ctx context.Context, name string, job Job) {
	// Jobs outlive the tick that started them.
	jobCtx := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduled job panicked", "job", name, "panic", r)
			}
		}()

		start := time.Now()
		s.logger.Info("running scheduled job", "job", name)
		if err := job(jobCtx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.Info("scheduled job finished", "job", name, "duration", time.Since(start))
	}()
}

// Wait blocks until every dispatched job has returned.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

// State reports the lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Entries lists the registered entries in registration order.
func (s *Scheduler) Entries() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]EntryInfo, len(s.entries))
	for i, e := range s.entries {
		out[i] = EntryInfo{Name: e.name, Spec: e.spec, Next: e.next}
	}
	return out
}

// ParseClock parses an HH:MM wall clock time.
func ParseClock(at string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q, expected HH:MM", at)
	}
	return t.Hour(), t.Minute(), nil
}
