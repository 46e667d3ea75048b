package statemachine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/biddingerrors"
	"auction-house/internal/models"
)

// WinnerSource answers which bid currently leads an auction.
type WinnerSource interface {
	WinningBid(ctx context.Context, auctionID string) (models.Bid, error)
}

// Transition describes the outcome of one evaluation of an auction.
type Transition struct {
	AuctionID      string        `json:"auction_id"`
	From           models.Status `json:"from"`
	To             models.Status `json:"to"`
	WinnerAssigned bool          `json:"winner_assigned"`
	WinnerID       string        `json:"winner_id,omitempty"`
	At             time.Time     `json:"at"`
}

// Changed reports whether the evaluation mutated the auction.
func (t Transition) Changed() bool {
	return t.From != t.To || t.WinnerAssigned
}

// Machine applies the auction lifecycle rules.
type Machine struct {
	winners WinnerSource
}

// New creates a Machine that consults winners when an auction closes.
func New(winners WinnerSource) *Machine {
	return &Machine{winners: winners}
}

// StatusAt returns the status the schedule implies at now. Terminal statuses are sticky.
func StatusAt(a models.Auction, now time.Time) models.Status {
	if a.Status.IsTerminal() {
		return a.Status
	}
	switch {
	case now.Before(a.StartTime):
		return models.StatusInPreparation
	case !now.After(a.EndTime):
		return models.StatusActive
	default:
		return models.StatusInReview
	}
}

// AcceptingBids reports whether the auction takes bids (and chat) at now.
func AcceptingBids(a models.Auction, now time.Time) bool {
	return StatusAt(a, now) == models.StatusActive
}

// Evaluate moves the auction to the status implied by now. On entering in_review without a
// recorded winner, the highest bid wins if it meets the reserve.
func (m *Machine) Evaluate(ctx context.Context, a *models.Auction, now time.Time) (Transition, error) {
	t := Transition{AuctionID: a.AuctionID, From: a.Status, To: a.Status, At: now}
	if a.Status.IsTerminal() {
		return t, nil
	}
	if !a.EndTime.After(a.StartTime) {
		return t, biddingerrors.Invariant(biddingerrors.ErrInvalidSchedule,
			"auction %s has end time %s not after start time %s", a.AuctionID, a.EndTime, a.StartTime)
	}

	next := StatusAt(*a, now)
	if next == a.Status {
		return t, nil
	}

	if next == models.StatusInReview && !a.HasWinner() {
		if err := m.assignWinner(ctx, a, &t); err != nil {
			return Transition{AuctionID: a.AuctionID, From: t.From, To: t.From, At: now}, err
		}
	}

	a.Status = next
	a.Touch(now)
	t.To = next
	return t, nil
}

// closeTick is the smallest step the stores keep for timestamps (postgres stores microseconds).
const closeTick = time.Microsecond

// Finalize closes an active auction on operator request, regardless of its end time.
// The end time is pulled back to just before now, so StatusAt keeps answering in_review
// for every later evaluation.
func (m *Machine) Finalize(ctx context.Context, a *models.Auction, now time.Time) (Transition, error) {
	t := Transition{AuctionID: a.AuctionID, From: a.Status, To: a.Status, At: now}
	if a.Status != models.StatusActive {
		return t, biddingerrors.Validation(biddingerrors.ErrInvalidTransition,
			"only an active auction can be finalized (status is %s)", a.Status)
	}
	closedAt := now.Add(-closeTick)
	if !closedAt.After(a.StartTime) {
		return t, biddingerrors.Validation(biddingerrors.ErrInvalidTransition,
			"auction %s opened at %s and cannot be finalized before any bidding time has passed",
			a.AuctionID, a.StartTime.Format(time.RFC3339Nano))
	}

	if !a.HasWinner() {
		if err := m.assignWinner(ctx, a, &t); err != nil {
			return Transition{AuctionID: a.AuctionID, From: t.From, To: t.From, At: now}, err
		}
	}

	if !a.EndTime.Before(now) {
		a.EndTime = closedAt
	}
	a.Status = models.StatusInReview
	a.Touch(now)
	t.To = models.StatusInReview
	return t, nil
}

func (m *Machine) assignWinner(ctx context.Context, a *models.Auction, t *Transition) error {
	top, err := m.winners.WinningBid(ctx, a.AuctionID)
	if errors.Is(err, biddingerrors.ErrNoBids) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("statemachine: determine winner for auction %s: %w", a.AuctionID, err)
	}
	if a.ReservePrice != nil && top.Amount < *a.ReservePrice {
		return nil
	}
	a.WinnerID = top.BidderID
	t.WinnerAssigned = true
	t.WinnerID = top.BidderID
	return nil
}

// Complete marks a reviewed auction as paid and closed.
func Complete(a *models.Auction, now time.Time) (Transition, error) {
	t := Transition{AuctionID: a.AuctionID, From: a.Status, To: a.Status, At: now}
	if a.Status != models.StatusInReview {
		return t, biddingerrors.Validation(biddingerrors.ErrInvalidTransition,
			"only an auction in review can be completed (status is %s)", a.Status)
	}
	if !a.HasWinner() {
		return t, biddingerrors.Validation(biddingerrors.ErrInvalidTransition,
			"auction %s has no winner to complete", a.AuctionID)
	}
	a.Status = models.StatusFinalized
	a.Touch(now)
	t.To = models.StatusFinalized
	return t, nil
}

// Cancel moves any non-terminal auction to cancelled.
func Cancel(a *models.Auction, now time.Time) (Transition, error) {
	t := Transition{AuctionID: a.AuctionID, From: a.Status, To: a.Status, At: now}
	if a.Status.IsTerminal() {
		return t, biddingerrors.Validation(biddingerrors.ErrInvalidTransition,
			"auction is already %s", a.Status)
	}
	a.Status = models.StatusCancelled
	a.Touch(now)
	t.To = models.StatusCancelled
	return t, nil
}

// ReleaseWinner clears the winner of an auction in review, e.g. when payment was abandoned.
func ReleaseWinner(a *models.Auction, now time.Time) (Transition, error) {
	t := Transition{AuctionID: a.AuctionID, From: a.Status, To: a.Status, At: now}
	if a.Status != models.StatusInReview || !a.HasWinner() {
		return t, biddingerrors.Validation(biddingerrors.ErrInvalidTransition,
			"auction %s has no winner in review to release", a.AuctionID)
	}
	a.WinnerID = ""
	a.Touch(now)
	return t, nil
}
