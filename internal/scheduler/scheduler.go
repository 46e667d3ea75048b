// Package scheduler runs the periodic auction sweep. Correctness never depends on it:
// every read path refreshes auction state on its own.
package scheduler

import (
	"context"
	"sync"
	"time"

	bidding "auction-house/internal/biddingService"
	"auction-house/internal/config"
	"auction-house/utils"
)

// Target is the part of the bidding service the sweeper drives.
type Target interface {
	Sweep(ctx context.Context, now time.Time) ([]bidding.StatusChangeEvent, error)
	PruneExpired(ctx context.Context, now time.Time, retention time.Duration) (int, error)
}

// Scheduler advances open auctions and prunes expired ones on a fixed interval.
type Scheduler struct {
	target    Target
	interval  time.Duration
	retention time.Duration
	clock     func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(target Target, cfg config.Sweep) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		target:    target,
		interval:  interval,
		retention: cfg.Retention,
		clock:     time.Now,
	}
}

// RunOnce performs a single sweep and, when a retention is configured, a prune pass.
func (s *Scheduler) RunOnce(ctx context.Context) (advanced, pruned int, err error) {
	now := s.clock().UTC()

	applied, err := s.target.Sweep(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	advanced = len(applied)

	if s.retention > 0 {
		pruned, err = s.target.PruneExpired(ctx, now, s.retention)
		if err != nil {
			return advanced, pruned, err
		}
	}

	if advanced > 0 || pruned > 0 {
		utils.Info("sweep completed", map[string]any{"advanced": advanced, "pruned": pruned})
	}
	return advanced, pruned, nil
}

// Start launches the sweep loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(runCtx)
	}()

	utils.Info("sweeper started", map[string]any{"interval": s.interval.String(), "retention": s.retention.String()})
}

// Stop cancels the loop and waits for the current pass to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		utils.Info("sweeper stopped", nil)
		return nil
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				utils.Error("sweep failed", map[string]any{"error": err.Error()})
			}
		}
	}
}
