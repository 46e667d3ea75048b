package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/biddingerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/statemachine"
)

// BidStore is the slice of the repository the ledger reads and appends to.
type BidStore interface {
	RecordBid(ctx context.Context, bid models.Bid) error
	GetBidsByAuction(ctx context.Context, auctionID string) ([]models.Bid, error)
	GetWinningBid(ctx context.Context, auctionID string) (models.Bid, error)
	CountBids(ctx context.Context, auctionID string) (int, error)
}

var _ BidStore = (repository.AuctionDB)(nil)

// Ledger is the append-only record of bids per auction. It enforces the
// minimum increment and eligibility rules before anything is persisted.
// Callers serialise Insert per auction; the ledger does no locking itself.
type Ledger struct {
	store BidStore
}

var _ statemachine.WinnerSource = (*Ledger)(nil)

// New creates a Ledger over store.
func New(store BidStore) *Ledger {
	return &Ledger{store: store}
}

// CurrentPrice returns the highest bid amount, or the starting price when nobody has bid.
func (l *Ledger) CurrentPrice(ctx context.Context, a models.Auction) (int64, error) {
	top, err := l.store.GetWinningBid(ctx, a.AuctionID)
	if errors.Is(err, biddingerrors.ErrNoBids) {
		return a.StartingPrice, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger: current price of auction %s: %w", a.AuctionID, err)
	}
	return top.Amount, nil
}

// TotalBids returns the number of bids recorded for the auction.
func (l *Ledger) TotalBids(ctx context.Context, auctionID string) (int, error) {
	n, err := l.store.CountBids(ctx, auctionID)
	if err != nil {
		return 0, fmt.Errorf("ledger: count bids of auction %s: %w", auctionID, err)
	}
	return n, nil
}

// WinningBid returns the highest bid, earliest first on ties. It returns an
// error wrapping ErrNoBids when the auction has none.
func (l *Ledger) WinningBid(ctx context.Context, auctionID string) (models.Bid, error) {
	return l.store.GetWinningBid(ctx, auctionID)
}

// Bids returns every bid of the auction, newest first.
func (l *Ledger) Bids(ctx context.Context, auctionID string) ([]models.Bid, error) {
	return l.store.GetBidsByAuction(ctx, auctionID)
}

// Recent returns at most limit bids, newest first. An auction without bids yields an empty slice.
func (l *Ledger) Recent(ctx context.Context, auctionID string, limit int) ([]models.Bid, error) {
	bids, err := l.store.GetBidsByAuction(ctx, auctionID)
	if errors.Is(err, biddingerrors.ErrNoBids) {
		return []models.Bid{}, nil
	}
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(bids) > limit {
		bids = bids[:limit]
	}
	return bids, nil
}

// MinimumBid returns the lowest amount the next bid may carry.
func (l *Ledger) MinimumBid(ctx context.Context, a models.Auction) (int64, error) {
	price, err := l.CurrentPrice(ctx, a)
	if err != nil {
		return 0, err
	}
	return price + increment(a), nil
}

// CanBid checks whether bidderID may bid amount on a at now, without mutating anything.
// A nil return means the bid is legal. Policy failures are *biddingerrors.Rejection values.
func (l *Ledger) CanBid(ctx context.Context, a models.Auction, bidderID string, amount int64, now time.Time) error {
	if !statemachine.AcceptingBids(a, now) {
		return biddingerrors.Validation(biddingerrors.ErrAuctionNotActive,
			"auction is not accepting bids (status is %s)", statemachine.StatusAt(a, now))
	}
	if a.HasWinner() && a.WinnerID == bidderID {
		return biddingerrors.Validation(biddingerrors.ErrAlreadyWinner, "you are already the winner of this auction")
	}
	if amount <= 0 {
		return biddingerrors.Validation(biddingerrors.ErrInvalidBid, "bid amount must be a positive whole number")
	}

	minimum, err := l.MinimumBid(ctx, a)
	if err != nil {
		return err
	}
	if amount < minimum {
		return biddingerrors.Validation(biddingerrors.ErrBidTooLow, "bid must be at least %d", minimum)
	}
	return nil
}

// Insert re-validates the bid and appends it. The store's uniqueness on
// (auction, bidder, amount) surfaces as a conflict.
func (l *Ledger) Insert(ctx context.Context, a models.Auction, bid models.Bid, now time.Time) (models.Bid, error) {
	if err := l.CanBid(ctx, a, bid.BidderID, bid.Amount, now); err != nil {
		return models.Bid{}, err
	}

	bid.AuctionID = a.AuctionID
	bid.Active = true
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = now
	}
	if err := l.store.RecordBid(ctx, bid); err != nil {
		if errors.Is(err, biddingerrors.ErrDuplicateBid) {
			return models.Bid{}, biddingerrors.Conflict(biddingerrors.ErrDuplicateBid,
				"an identical bid of %d was already placed, refresh the price and try again", bid.Amount)
		}
		if errors.Is(err, biddingerrors.ErrAuctionNotFound) {
			return models.Bid{}, biddingerrors.NotFound(biddingerrors.ErrAuctionNotFound, "auction %s not found", a.AuctionID)
		}
		return models.Bid{}, fmt.Errorf("ledger: record bid on auction %s: %w", a.AuctionID, err)
	}
	return bid, nil
}

func increment(a models.Auction) int64 {
	if a.MinIncrement < 1 {
		return 1
	}
	return a.MinIncrement
}
