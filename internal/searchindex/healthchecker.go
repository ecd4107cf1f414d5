package searchindex

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/health"
)

// IndexHealthChecker monitors the similarity index.
type IndexHealthChecker struct {
	index        Index
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewIndexHealthChecker(idx Index, log zerolog.Logger, probeTimeout time.Duration) *IndexHealthChecker {
	hc := &IndexHealthChecker{index: idx, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0) // start unhealthy until first successful probe
	return hc
}

func (c *IndexHealthChecker) Name() string    { return "searchindex" }
func (c *IndexHealthChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

func (c *IndexHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		to := c.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()

		if p, ok := c.index.(health.HealthPinger); ok {
			if err := p.HealthPing(checkCtx); err != nil {
				c.healthy.Store(0)
				c.log.Error().Str("checker", c.Name()).Err(err).Msg("search index health check failed")
				return
			}
		}
		c.healthy.Store(1)
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
