/*
scheduler.go - Background refresh of the engine's date window

PURPOSE:
  A long-lived process must roll its notion of "today" across midnight
  and pick up holiday-table changes without a restart. The scheduler
  periodically re-runs Engine.Refresh, which re-derives the current
  week, extends the lookahead window, and reconciles records.

USAGE:
  scheduler := NewRefreshScheduler(engine, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/bonus-engine/bonus"
)

// RefreshScheduler periodically refreshes the engine's date window.
type RefreshScheduler struct {
	Engine        *bonus.Engine
	Logger        *zap.Logger
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRefreshScheduler creates a scheduler with a 1-minute interval.
// Refresh is a no-op save-wise when nothing changed, so a short interval
// is cheap.
func NewRefreshScheduler(engine *bonus.Engine, logger *zap.Logger) *RefreshScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshScheduler{
		Engine:        engine,
		Logger:        logger,
		CheckInterval: time.Minute,
	}
}

// Start begins the background refresh loop. Starting an already-running
// scheduler is a no-op; a stopped scheduler can be started again.
func (rs *RefreshScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		return
	}
	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)
	go rs.run(rs.ticker, rs.stop)

	rs.Logger.Info("Refresh scheduler started", zap.Duration("interval", rs.CheckInterval))
}

// Stop halts the loop and waits for it to exit.
func (rs *RefreshScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker == nil {
		return
	}
	rs.ticker.Stop()
	close(rs.stop)
	rs.wg.Wait()
	rs.ticker = nil

	rs.Logger.Info("Refresh scheduler stopped")
}

func (rs *RefreshScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()
	for {
		select {
		case <-ticker.C:
			if err := rs.Engine.Refresh(context.Background()); err != nil {
				rs.Logger.Warn("Refresh failed", zap.Error(err))
			}
		case <-stop:
			return
		}
	}
}
