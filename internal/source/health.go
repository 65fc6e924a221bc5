package source

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultHealthInterval = 30 * time.Second
	defaultHealthTimeout  = 5 * time.Second
)

// HealthChecker probes a backend's health endpoint on an interval and
// reports each result through a callback. The callback keeps this package
// free of a metrics dependency; the caller wires it to a gauge.
type HealthChecker struct {
	Remote   *Remote
	Interval time.Duration
	Timeout  time.Duration
	Logger   *slog.Logger
	Report   func(healthy bool)
}

// Run probes until ctx is cancelled. The first probe fires immediately.
func (h *HealthChecker) Run(ctx context.Context) {
	interval := h.Interval
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.check(ctx)
		}
	}
}

func (h *HealthChecker) check(ctx context.Context) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := h.Remote.Healthy(probeCtx)
	if h.Report != nil {
		h.Report(err == nil)
	}
	if err != nil && ctx.Err() == nil && h.Logger != nil {
		h.Logger.Warn("backend health check failed", "error", err)
	}
}
