package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15 * time.Second

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorRemoteHealth probes the remote service once immediately and then on
// every tick, storing the outcome in healthy.
func MonitorRemoteHealth(ctx context.Context, checker HealthChecker, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe(ctx, checker, healthy)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe(ctx, checker, healthy)
		}
	}
}

func probe(ctx context.Context, checker HealthChecker, healthy *atomic.Bool) {
	isHealthy := checker.HealthCheck(ctx)
	if healthy.Swap(isHealthy) != isHealthy {
		if isHealthy {
			slog.Info("[HealthCheck] Remote service is healthy again")
		} else {
			slog.Warn("[HealthCheck] Remote service is unhealthy")
		}
	}
}
