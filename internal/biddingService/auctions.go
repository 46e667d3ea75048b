package bidding

import (
	"auction-house/internal/biddingerrors"
	"auction-house/internal/events"
	"auction-house/internal/models"
	"auction-house/internal/statemachine"
	"auction-house/utils"
	"context"
	"errors"
	"fmt"
	"time"
)

// NewAuction is the operator input for creating an auction.
type NewAuction struct {
	ItemID        string
	StartTime     time.Time
	EndTime       time.Time
	StartingPrice int64 // 0 takes the item's starting price
	MinIncrement  int64 // 0 means 1
	ReservePrice  *int64
}

// CreateAuction validates and stores a new auction. Its initial status follows the schedule at now.
func (s *BiddingService) CreateAuction(ctx context.Context, in NewAuction, now time.Time) (models.Auction, error) {
	now = now.UTC()

	item, err := s.repo.GetItem(ctx, in.ItemID)
	if errors.Is(err, biddingerrors.ErrItemNotFound) {
		return models.Auction{}, biddingerrors.NotFound(biddingerrors.ErrItemNotFound, "item %s not found", in.ItemID)
	}
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to look up item %s: %w", in.ItemID, err)
	}

	auction := models.Auction{
		AuctionID:     utils.NewID(),
		ItemID:        item.ItemID,
		StartTime:     in.StartTime.UTC(),
		EndTime:       in.EndTime.UTC(),
		StartingPrice: in.StartingPrice,
		MinIncrement:  in.MinIncrement,
		ReservePrice:  in.ReservePrice,
	}
	if auction.StartingPrice == 0 {
		auction.StartingPrice = item.StartingPrice
	}
	if auction.MinIncrement == 0 {
		auction.MinIncrement = 1
	}

	if err := validateTerms(auction); err != nil {
		return models.Auction{}, err
	}
	if err := validateSchedule(auction.StartTime, auction.EndTime); err != nil {
		return models.Auction{}, err
	}
	if dateOf(auction.StartTime).Before(dateOf(now)) {
		return models.Auction{}, biddingerrors.Validation(biddingerrors.ErrStartInPast,
			"start date %s is before today (%s)", auction.StartTime.Format(time.DateOnly), now.Format(time.DateOnly))
	}

	auction.Status = statemachine.StatusAt(auction, now)
	auction.Touch(now)

	if err := s.repo.CreateAuction(ctx, auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction for item %s: %w", item.ItemID, err)
	}

	s.events.LogEvent(events.Event{
		Kind:      events.AuctionCreated,
		AuctionID: auction.AuctionID,
		At:        now,
		Metadata: map[string]any{
			"item_id":        auction.ItemID,
			"starting_price": auction.StartingPrice,
			"status":         string(auction.Status),
		},
	})
	return auction, nil
}

// RescheduleAuction moves the start and end times of a non-terminal auction and re-evaluates it.
// Pushing the end of an auction in review into the future re-opens it; a recorded winner is kept.
func (s *BiddingService) RescheduleAuction(ctx context.Context, auctionID string, start, end, now time.Time) (models.Auction, *StatusChangeEvent, error) {
	now = now.UTC()
	if err := validateSchedule(start, end); err != nil {
		return models.Auction{}, nil, err
	}

	unlock := s.auctionLocks.Lock(auctionID)
	auction, refreshed, err := s.advanceLocked(ctx, auctionID, now)
	if err != nil {
		unlock()
		return models.Auction{}, nil, err
	}
	if auction.Status.IsTerminal() {
		unlock()
		s.emit(refreshed)
		return models.Auction{}, nil, biddingerrors.Validation(biddingerrors.ErrInvalidTransition,
			"a %s auction cannot be rescheduled", auction.Status)
	}

	auction.StartTime = start.UTC()
	auction.EndTime = end.UTC()
	auction.Touch(now)

	t, err := s.machine.Evaluate(ctx, &auction, now)
	if err == nil {
		if err = s.repo.UpdateAuction(ctx, auction); err != nil {
			err = fmt.Errorf("service: failed to persist auction %s: %w", auctionID, err)
		}
	}
	unlock()

	s.emit(refreshed)
	if err != nil {
		return models.Auction{}, nil, err
	}

	s.events.LogEvent(events.Event{
		Kind:      events.AuctionRescheduled,
		AuctionID: auctionID,
		At:        now,
		Metadata: map[string]any{
			"start_time": auction.StartTime.Format(time.RFC3339),
			"end_time":   auction.EndTime.Format(time.RFC3339),
			"status":     string(auction.Status),
		},
	})

	if !t.Changed() {
		return auction, nil, nil
	}
	s.emit(&t)
	return auction, &t, nil
}

// DeleteAuction removes an auction with its bids and chat. An auction in review with a
// winner awaiting payment cannot be deleted.
func (s *BiddingService) DeleteAuction(ctx context.Context, auctionID string, now time.Time) error {
	now = now.UTC()
	unlock := s.auctionLocks.Lock(auctionID)
	auction, refreshed, err := s.advanceLocked(ctx, auctionID, now)
	if err == nil {
		err = s.deleteLocked(ctx, auction)
	}
	unlock()

	s.emit(refreshed)
	if err != nil {
		return err
	}

	s.events.LogEvent(events.Event{Kind: events.AuctionDeleted, AuctionID: auctionID, At: now})
	return nil
}

func (s *BiddingService) deleteLocked(ctx context.Context, auction models.Auction) error {
	if auction.Status == models.StatusInReview && auction.HasWinner() {
		return biddingerrors.Conflict(biddingerrors.ErrAuctionLocked,
			"auction %s has a winner awaiting payment and cannot be deleted", auction.AuctionID)
	}
	if err := s.repo.DeleteAuction(ctx, auction.AuctionID); err != nil {
		if errors.Is(err, biddingerrors.ErrAuctionNotFound) {
			return biddingerrors.NotFound(biddingerrors.ErrAuctionNotFound, "auction %s not found", auction.AuctionID)
		}
		return fmt.Errorf("service: failed to delete auction %s: %w", auction.AuctionID, err)
	}
	return nil
}

// ListAuctions returns every auction with its status refreshed at now.
func (s *BiddingService) ListAuctions(ctx context.Context, now time.Time) ([]models.Auction, error) {
	listed, err := s.repo.ListAuctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}

	out := make([]models.Auction, 0, len(listed))
	for _, a := range listed {
		refreshed, err := s.GetAuction(ctx, a.AuctionID, now)
		if biddingerrors.KindOf(err) == biddingerrors.KindNotFound {
			// deleted concurrently
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, refreshed)
	}
	return out, nil
}

// CompleteAuction marks an auction in review as paid and finalized.
func (s *BiddingService) CompleteAuction(ctx context.Context, auctionID string, now time.Time) (StatusChangeEvent, error) {
	return s.operate(ctx, auctionID, now, statemachine.Complete)
}

// CancelAuction cancels any auction that is not already terminal.
func (s *BiddingService) CancelAuction(ctx context.Context, auctionID string, now time.Time) (StatusChangeEvent, error) {
	return s.operate(ctx, auctionID, now, statemachine.Cancel)
}

// ReleaseWinner clears the winner of an auction in review so it can be re-opened or re-awarded.
func (s *BiddingService) ReleaseWinner(ctx context.Context, auctionID string, now time.Time) (StatusChangeEvent, error) {
	var released string
	t, err := s.operate(ctx, auctionID, now, func(a *models.Auction, now time.Time) (statemachine.Transition, error) {
		released = a.WinnerID
		return statemachine.ReleaseWinner(a, now)
	})
	if err != nil {
		return StatusChangeEvent{}, err
	}
	s.events.LogEvent(events.Event{Kind: events.WinnerReleased, AuctionID: auctionID, UserID: released, At: now.UTC()})
	return t, nil
}

type operatorAction func(a *models.Auction, now time.Time) (statemachine.Transition, error)

func (s *BiddingService) operate(ctx context.Context, auctionID string, now time.Time, action operatorAction) (StatusChangeEvent, error) {
	now = now.UTC()
	unlock := s.auctionLocks.Lock(auctionID)
	auction, refreshed, err := s.advanceLocked(ctx, auctionID, now)
	if err != nil {
		unlock()
		return StatusChangeEvent{}, err
	}

	t, err := action(&auction, now)
	if err == nil {
		if err = s.repo.UpdateAuction(ctx, auction); err != nil {
			err = fmt.Errorf("service: failed to persist auction %s: %w", auctionID, err)
		}
	}
	unlock()

	s.emit(refreshed)
	if err != nil {
		return StatusChangeEvent{}, err
	}
	s.emit(&t)
	return t, nil
}

func validateTerms(a models.Auction) error {
	if a.StartingPrice <= 0 {
		return biddingerrors.Validation(biddingerrors.ErrInvalidAuction, "starting price must be positive")
	}
	if a.MinIncrement < 1 {
		return biddingerrors.Validation(biddingerrors.ErrInvalidAuction, "minimum increment must be at least 1")
	}
	if a.ReservePrice != nil && *a.ReservePrice < a.StartingPrice {
		return biddingerrors.Validation(biddingerrors.ErrInvalidAuction,
			"reserve price %d is below the starting price %d", *a.ReservePrice, a.StartingPrice)
	}
	return nil
}

func validateSchedule(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return biddingerrors.Validation(biddingerrors.ErrInvalidSchedule, "start and end times are required")
	}
	if !end.After(start) {
		return biddingerrors.Validation(biddingerrors.ErrInvalidSchedule, "end time must be after start time")
	}
	return nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
