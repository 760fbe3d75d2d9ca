package scheduler

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immoeliza/server/config"
	"immoeliza/server/internal/models"
)

type stubRunner struct {
	mu      sync.Mutex
	calls   int
	running bool
	overlap bool
	delay   time.Duration
	err     error
}

func (r *stubRunner) Run() (*models.RunReport, error) {
	r.mu.Lock()
	if r.running {
		r.overlap = true
	}
	r.running = true
	r.calls++
	delay := r.delay
	err := r.err
	r.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &models.RunReport{ID: "stub-run", RowsOut: 1}, nil
}

func (r *stubRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *stubRunner) overlapped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlap
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func scheduleConfig(intervalHours int, runOnStartup bool) *config.Config {
	cfg := &config.Config{}
	cfg.Schedule.IntervalHours = intervalHours
	cfg.Schedule.RunOnStartup = runOnStartup
	return cfg
}

func TestNewScheduler(t *testing.T) {
	runner := &stubRunner{}
	s := NewScheduler(runner, scheduleConfig(24, true), testLogger())

	assert.Equal(t, 24*time.Hour, s.interval)
	assert.True(t, s.runOnStartup)
	assert.NotNil(t, s.stopChan)
}

func TestScheduler_RunOnStartup(t *testing.T) {
	runner := &stubRunner{}
	s := NewScheduler(runner, scheduleConfig(0, true), testLogger())

	s.Start()
	require.Eventually(t, func() bool {
		return runner.callCount() == 1
	}, time.Second, 10*time.Millisecond)
	s.Stop()

	assert.Equal(t, 1, runner.callCount())
}

func TestScheduler_PeriodicRuns(t *testing.T) {
	runner := &stubRunner{}
	s := NewScheduler(runner, scheduleConfig(0, false), testLogger())
	s.interval = 20 * time.Millisecond

	s.Start()
	require.Eventually(t, func() bool {
		return runner.callCount() >= 2
	}, time.Second, 10*time.Millisecond)
	s.Stop()
}

// Test that a slow startup run and the ticker never execute concurrently
func TestScheduler_SerializesRuns(t *testing.T) {
	runner := &stubRunner{delay: 30 * time.Millisecond}
	s := NewScheduler(runner, scheduleConfig(0, true), testLogger())
	s.interval = 10 * time.Millisecond

	s.Start()
	require.Eventually(t, func() bool {
		return runner.callCount() >= 3
	}, 2*time.Second, 10*time.Millisecond)
	s.Stop()

	assert.False(t, runner.overlapped())
}

func TestScheduler_ContinuesAfterFailedRun(t *testing.T) {
	runner := &stubRunner{err: errors.New("input file is missing")}
	s := NewScheduler(runner, scheduleConfig(0, false), testLogger())
	s.interval = 20 * time.Millisecond

	s.Start()
	require.Eventually(t, func() bool {
		return runner.callCount() >= 2
	}, time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestScheduler_DisabledDoesNotRun(t *testing.T) {
	runner := &stubRunner{}
	s := NewScheduler(runner, scheduleConfig(0, false), testLogger())

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	assert.Equal(t, 0, runner.callCount())
}
