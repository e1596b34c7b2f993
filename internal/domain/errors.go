package domain

import "errors"

// Error kinds surfaced by the scheduling core. Callers classify with errors.Is.
var (
	ErrWaitingAreaFull = errors.New("waiting area is full")
	ErrPileQueueFull   = errors.New("pile queue is full")
	ErrNotFound        = errors.New("request not found")
	ErrCannotModify    = errors.New("request cannot be modified while charging")
	ErrInvalidMode     = errors.New("invalid charging mode")
	ErrInvalidAmount   = errors.New("charge amount must be positive")
	ErrInvalidInterval = errors.New("interval end must be after start")
	ErrPileUnavailable = errors.New("pile is not available")
	ErrAlreadyRunning  = errors.New("scheduler already running")
	ErrNotRunning      = errors.New("scheduler not running")
	ErrPersistence     = errors.New("persistence failure")
)
