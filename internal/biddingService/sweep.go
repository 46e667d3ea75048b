package bidding

import (
	"auction-house/internal/biddingerrors"
	"auction-house/internal/events"
	"auction-house/utils"
	"context"
	"fmt"
	"time"
)

// Sweep advances every non-terminal auction at now and returns the transitions it applied.
// Failures on one auction are logged and do not stop the sweep.
func (s *BiddingService) Sweep(ctx context.Context, now time.Time) ([]StatusChangeEvent, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveSweep("advance", time.Since(started)) }()

	open, err := s.repo.ListOpenAuctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list open auctions: %w", err)
	}

	var applied []StatusChangeEvent
	for _, a := range open {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		t, err := s.AdvanceState(ctx, a.AuctionID, now)
		if err != nil {
			if biddingerrors.KindOf(err) != biddingerrors.KindNotFound {
				utils.Error("sweep failed to advance auction", map[string]any{"auction_id": a.AuctionID, "error": err.Error()})
			}
			continue
		}
		if t != nil {
			applied = append(applied, *t)
		}
	}
	return applied, nil
}

// PruneExpired deletes auctions that ended more than retention before now. Auctions holding a
// winner that has not paid yet are kept.
func (s *BiddingService) PruneExpired(ctx context.Context, now time.Time, retention time.Duration) (int, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveSweep("prune", time.Since(started)) }()

	now = now.UTC()
	expired, err := s.repo.ListAuctionsEndedBefore(ctx, now.Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("service: failed to list expired auctions: %w", err)
	}

	pruned := 0
	for _, a := range expired {
		if err := ctx.Err(); err != nil {
			return pruned, err
		}

		unlock := s.auctionLocks.Lock(a.AuctionID)
		current, refreshed, err := s.advanceLocked(ctx, a.AuctionID, now)
		if err == nil {
			err = s.deleteLocked(ctx, current)
		}
		unlock()
		s.emit(refreshed)

		switch biddingerrors.KindOf(err) {
		case biddingerrors.KindConflict, biddingerrors.KindNotFound:
			continue
		}
		if err != nil {
			utils.Error("prune failed to delete auction", map[string]any{"auction_id": a.AuctionID, "error": err.Error()})
			continue
		}

		pruned++
		s.events.LogEvent(events.Event{
			Kind:      events.AuctionPruned,
			AuctionID: a.AuctionID,
			At:        now,
			Metadata:  map[string]any{"ended_at": current.EndTime.Format(time.RFC3339)},
		})
	}
	return pruned, nil
}
