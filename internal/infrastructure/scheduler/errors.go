package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when the reaper configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrAlreadyRunning is returned by Start on a running reaper
	ErrAlreadyRunning = errors.New("scheduler is already running")
)
