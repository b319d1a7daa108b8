// Package refresher recomputes the all-time dashboard overview on a fixed
// interval and caches the latest result. The engine itself is stateless;
// this is the host-side "re-invoke on every update with the full record
// set" loop, approximated with a ticker because the planner database has
// no change feed.
package refresher

import (
	"context"
	"sync"
	"time"

	"almanac/internal/metrics"
	"almanac/pkg/api/almanac"
	"almanac/pkg/logging"
)

// ComputeFunc builds a fresh overview from the complete current record set
type ComputeFunc func(ctx context.Context) (almanac.OverviewResponse, error)

// Refresher periodically rebuilds the cached overview
type Refresher struct {
	logger         logging.Logger
	compute        ComputeFunc
	interval       time.Duration
	serviceMetrics *metrics.Metrics

	ticker   *time.Ticker
	stopChan chan struct{}

	mu     sync.RWMutex
	latest *almanac.OverviewResponse
}

// New creates a refresher instance
func New(compute ComputeFunc, interval time.Duration, logger logging.Logger, m *metrics.Metrics) *Refresher {
	return &Refresher{
		logger:         logger,
		compute:        compute,
		interval:       interval,
		serviceMetrics: m,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the periodic recompute loop and runs an initial refresh in
// the background
func (r *Refresher) Start() {
	r.logger.WithField("interval", r.interval).Info("Starting overview refresher")

	r.ticker = time.NewTicker(r.interval)
	go r.run()

	go func() {
		if err := r.Refresh(context.Background()); err != nil {
			r.logger.WithError(err).Error("Initial overview refresh failed")
		}
	}()
}

// Stop stops the recompute loop
func (r *Refresher) Stop() {
	r.logger.Info("Stopping overview refresher")
	if r.ticker != nil {
		r.ticker.Stop()
	}
	close(r.stopChan)
}

func (r *Refresher) run() {
	for {
		select {
		case <-r.ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := r.Refresh(ctx); err != nil {
				r.logger.WithError(err).Error("Scheduled overview refresh failed")
			}
			cancel()
		case <-r.stopChan:
			return
		}
	}
}

// Refresh recomputes the overview from the full current record set and
// swaps the cache
func (r *Refresher) Refresh(ctx context.Context) error {
	overview, err := r.compute(ctx)
	if err != nil {
		if r.serviceMetrics != nil {
			r.serviceMetrics.RefreshRuns.WithLabelValues("error").Inc()
		}
		return err
	}

	r.mu.Lock()
	r.latest = &overview
	r.mu.Unlock()

	if r.serviceMetrics != nil {
		r.serviceMetrics.RefreshRuns.WithLabelValues("success").Inc()
		r.serviceMetrics.LastRefreshTime.WithLabelValues().Set(float64(time.Now().Unix()))
	}
	r.logger.WithFields(logging.Fields{
		"total_items":   overview.TotalItems,
		"net_published": overview.NetPublished,
	}).Debug("Overview cache refreshed")
	return nil
}

// Latest returns the cached overview, if a refresh has completed yet
func (r *Refresher) Latest() (almanac.OverviewResponse, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return almanac.OverviewResponse{}, false
	}
	return *r.latest, true
}
