package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionSweeper removes editing sessions idle since before cutoff and
// returns how many were removed
type SessionSweeper interface {
	Reap(ctx context.Context, cutoff time.Time) int
}

// SessionReaperConfig holds configuration for the idle session reaper
type SessionReaperConfig struct {
	// Schedule is a standard five-field cron expression or a descriptor such
	// as "@every 1m"
	Schedule string
	// TTL is how long a session may stay idle
	TTL time.Duration
	// RunTimeout bounds a single sweep
	RunTimeout time.Duration
}

// DefaultSessionReaperConfig returns the default reaper configuration
func DefaultSessionReaperConfig() SessionReaperConfig {
	return SessionReaperConfig{
		Schedule:   "@every 1m",
		TTL:        30 * time.Minute,
		RunTimeout: 30 * time.Second,
	}
}

// Validate checks the schedule parses and the durations are positive
func (c SessionReaperConfig) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("%w: session ttl must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("%w: run timeout must be positive", ErrInvalidConfig)
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, c.Schedule, err)
	}
	return nil
}

// SessionReaper periodically evicts idle designer sessions
type SessionReaper struct {
	config  SessionReaperConfig
	sweeper SessionSweeper
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	running bool
	lastRun time.Time
	reaped  int
}

// ReaperOption configures a SessionReaper
type ReaperOption func(*SessionReaper)

// WithClock overrides the time source
func WithClock(now func() time.Time) ReaperOption {
	return func(r *SessionReaper) {
		r.now = now
	}
}

// NewSessionReaper creates a reaper. The configuration is validated here so
// a bad schedule fails at startup.
func NewSessionReaper(cfg SessionReaperConfig, sweeper SessionSweeper, logger *zap.Logger, opts ...ReaperOption) (*SessionReaper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &SessionReaper{
		config:  cfg,
		sweeper: sweeper,
		logger:  logger.Named("session_reaper"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Start registers the sweep with a new cron runner and starts it
func (r *SessionReaper) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRunning
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	id, err := c.AddFunc(r.config.Schedule, func() { r.RunOnce(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule session reaper: %w", err)
	}
	c.Start()

	r.cron = c
	r.entryID = id
	r.running = true
	r.logger.Info("Session reaper started",
		zap.String("schedule", r.config.Schedule),
		zap.Duration("ttl", r.config.TTL),
	)
	return nil
}

// Stop stops the cron runner and waits for a running sweep or until ctx is done
func (r *SessionReaper) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	c := r.cron
	r.running = false
	r.cron = nil
	r.mu.Unlock()

	select {
	case <-c.Stop().Done():
		r.logger.Info("Session reaper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one sweep immediately and returns the number of sessions removed
func (r *SessionReaper) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, r.config.RunTimeout)
	defer cancel()

	now := r.now()
	removed := r.sweeper.Reap(ctx, now.Add(-r.config.TTL))

	r.mu.Lock()
	r.lastRun = now
	r.reaped += removed
	r.mu.Unlock()

	if removed > 0 {
		r.logger.Info("Reaped idle sessions", zap.Int("count", removed))
	}
	return removed
}

// Next returns the next scheduled sweep, or the zero time when stopped
func (r *SessionReaper) Next() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return time.Time{}
	}
	return r.cron.Entry(r.entryID).Next
}

// Stats returns the time of the last sweep and the total sessions reaped
func (r *SessionReaper) Stats() (lastRun time.Time, reaped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun, r.reaped
}
