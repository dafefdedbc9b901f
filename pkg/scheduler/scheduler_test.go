package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func TestDailyEntryBecomesDue(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 4, 8, 59, 0, 0, time.UTC)}
	s := New(WithClock(clock.Now))

	var runs atomic.Int32
	require.NoError(t, s.Daily("daily", "09:00", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	assert.Equal(t, 0, s.RunPending(context.Background()))

	clock.Set(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, s.RunPending(context.Background()))
	assert.Equal(t, 0, s.RunPending(context.Background()), "next run is tomorrow")

	s.Wait()
	assert.Equal(t, int32(1), runs.Load())

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), entries[0].Next)
}

func TestWeeklyEntry(t *testing.T) {
	// 2024-03-04 is a Monday.
	clock := &fakeClock{t: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)}
	s := New(WithClock(clock.Now))

	require.NoError(t, s.Weekly("digest", time.Monday, "10:30", func(ctx context.Context) error { return nil }))

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "30 10 * * 1", entries[0].Spec)
	assert.Equal(t, time.Date(2024, 3, 11, 10, 30, 0, 0, time.UTC), entries[0].Next)
}

func TestInvalidSchedules(t *testing.T) {
	s := New()
	noop := func(ctx context.Context) error { return nil }

	assert.Error(t, s.Daily("bad", "9am", noop))
	assert.Error(t, s.Daily("bad", "25:00", noop))
	assert.Error(t, s.Add("bad", "not a cron spec", noop))
	assert.Empty(t, s.Entries())
}

func TestStopClearsEntries(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), step: time.Minute}
	s := New(WithClock(clock.Now), WithCadence(10*time.Millisecond))

	var runs atomic.Int32
	require.NoError(t, s.Add("every-minute", "* * * * *", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Stop()
	assert.Equal(t, StateStopped, s.State())
	assert.Empty(t, s.Entries())

	err := s.Start(context.Background())
	assert.True(t, errors.Is(err, ErrStopped))
	assert.Equal(t, 0, s.RunPending(context.Background()))
	assert.ErrorIs(t, s.Add("late", "* * * * *", func(ctx context.Context) error { return nil }), ErrStopped)

	s.Wait()
	assert.Equal(t, int32(0), runs.Load())
}

func TestStopEndsRunningLoop(t *testing.T) {
	s := New(WithCadence(time.Hour))

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool { return s.State() == StateRunning }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, s.Start(context.Background()), ErrRunning)

	s.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after Stop")
	}
}

func TestContextCancelStopsScheduler(t *testing.T) {
	s := New(WithCadence(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	require.Eventually(t, func() bool { return s.State() == StateRunning }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after cancel")
	}
	assert.Equal(t, StateStopped, s.State())
}

func TestSlowJobDoesNotDelayTicks(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), step: time.Minute}
	s := New(WithClock(clock.Now), WithCadence(5*time.Millisecond))

	release := make(chan struct{})
	var started atomic.Int32
	require.NoError(t, s.Add("slow", "* * * * *", func(ctx context.Context) error {
		started.Add(1)
		<-release
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	// Every tick dispatches a new run although none of them has finished.
	require.Eventually(t, func() bool { return started.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	close(release)
	require.NoError(t, <-done)
	s.Wait()
}

func TestFailingJobsAreContained(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), step: time.Minute}
	s := New(WithClock(clock.Now))

	var after atomic.Int32
	require.NoError(t, s.Add("panics", "* * * * *", func(ctx context.Context) error { panic("boom") }))
	require.NoError(t, s.Add("fails", "* * * * *", func(ctx context.Context) error { return errors.New("nope") }))
	require.NoError(t, s.Add("fine", "* * * * *", func(ctx context.Context) error {
		after.Add(1)
		return nil
	}))

	assert.Equal(t, 3, s.RunPending(context.Background()))
	s.Wait()
	assert.Equal(t, 3, s.RunPending(context.Background()))
	s.Wait()
	assert.Equal(t, int32(2), after.Load())
}

func TestJobContextSurvivesCancellation(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), step: time.Minute}
	s := New(WithClock(clock.Now))

	ctx, cancel := context.WithCancel(context.Background())
	proceed := make(chan struct{})
	var jobErr atomic.Value
	require.NoError(t, s.Add("job", "* * * * *", func(jobCtx context.Context) error {
		<-proceed
		jobErr.Store(jobCtx.Err() == nil)
		return nil
	}))

	assert.Equal(t, 1, s.RunPending(ctx))
	cancel()
	close(proceed)
	s.Wait()
	assert.Equal(t, true, jobErr.Load())
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	_, _, err = ParseClock("noon")
	assert.Error(t, err)
}
