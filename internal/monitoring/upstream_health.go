package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorUpstreamHealth periodically probes the sentiment endpoint and
// publishes the result; consumers pause while it reports unhealthy.
func MonitorUpstreamHealth(ctx context.Context, checker HealthChecker, healthy *atomic.Bool) {
	ticker := time.NewTicker(time.Second * HEALTHCHECK_TIMER)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isHealthy := checker.HealthCheck(ctx)
			healthy.Store(isHealthy)
			if !isHealthy {
				slog.Warn("[HealthCheck] Sentiment service is unhealthy")
			}
		}
	}
}
