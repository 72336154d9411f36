package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSweeper struct {
	mu      sync.Mutex
	cutoffs []time.Time
	result  int
}

func (f *fakeSweeper) Reap(ctx context.Context, cutoff time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.result
}

func (f *fakeSweeper) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestSessionReaperConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SessionReaperConfig)
		wantErr bool
	}{
		{"defaults", func(*SessionReaperConfig) {}, false},
		{"five field cron", func(c *SessionReaperConfig) { c.Schedule = "*/5 * * * *" }, false},
		{"bad schedule", func(c *SessionReaperConfig) { c.Schedule = "every minute" }, true},
		{"zero ttl", func(c *SessionReaperConfig) { c.TTL = 0 }, true},
		{"zero timeout", func(c *SessionReaperConfig) { c.RunTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSessionReaperConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSessionReaper_RejectsBadSchedule(t *testing.T) {
	cfg := DefaultSessionReaperConfig()
	cfg.Schedule = "not a schedule"

	_, err := NewSessionReaper(cfg, &fakeSweeper{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSessionReaper_RunOnceUsesTTLCutoff(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	core, logs := observer.New(zap.InfoLevel)
	sweeper := &fakeSweeper{result: 3}

	cfg := DefaultSessionReaperConfig()
	cfg.TTL = 10 * time.Minute
	reaper, err := NewSessionReaper(cfg, sweeper, zap.New(core), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	removed := reaper.RunOnce(context.Background())

	assert.Equal(t, 3, removed)
	require.Len(t, sweeper.cutoffs, 1)
	assert.Equal(t, now.Add(-10*time.Minute), sweeper.cutoffs[0])

	lastRun, total := reaper.Stats()
	assert.Equal(t, now, lastRun)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, logs.FilterMessage("Reaped idle sessions").Len())
}

func TestSessionReaper_QuietWhenNothingReaped(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reaper, err := NewSessionReaper(DefaultSessionReaperConfig(), &fakeSweeper{}, zap.New(core))
	require.NoError(t, err)

	assert.Zero(t, reaper.RunOnce(context.Background()))
	assert.Zero(t, logs.FilterMessage("Reaped idle sessions").Len())
}

func TestSessionReaper_StartStop(t *testing.T) {
	sweeper := &fakeSweeper{}
	cfg := DefaultSessionReaperConfig()
	cfg.Schedule = "@every 1s"

	reaper, err := NewSessionReaper(cfg, sweeper, nil)
	require.NoError(t, err)
	assert.True(t, reaper.Next().IsZero())

	require.NoError(t, reaper.Start(context.Background()))
	assert.ErrorIs(t, reaper.Start(context.Background()), ErrAlreadyRunning)
	assert.False(t, reaper.Next().IsZero())

	assert.Eventually(t, func() bool { return sweeper.calls() > 0 }, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, reaper.Stop(ctx))
	require.NoError(t, reaper.Stop(ctx))
	assert.True(t, reaper.Next().IsZero())
}
