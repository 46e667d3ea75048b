package bidding

import (
	"auction-house/internal/biddingerrors"
	"auction-house/internal/events"
	"auction-house/internal/keylock"
	"auction-house/internal/ledger"
	"auction-house/internal/metrics"
	"auction-house/internal/models"
	"auction-house/internal/notifier"
	"auction-house/internal/repository"
	"auction-house/internal/statemachine"
	"auction-house/utils"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// StatusChangeEvent reports one transition applied by AdvanceState or an operator action.
type StatusChangeEvent = statemachine.Transition

// Options carries the collaborators and tunables of a BiddingService. Zero values get defaults.
type Options struct {
	Notifier            notifier.Notifier
	Events              events.Sink
	Metrics             *metrics.Metrics
	ChatDuplicateWindow time.Duration
	RecentBidsLimit     int
	ChatHistoryLimit    int
}

// BiddingService coordinates the auction state machine and the bid ledger.
// Every mutation of one auction runs under that auction's lock.
type BiddingService struct {
	repo    repository.AuctionDB
	ledger  *ledger.Ledger
	machine *statemachine.Machine

	auctionLocks *keylock.Locker
	chatLocks    *keylock.Locker

	notifier notifier.Notifier
	events   events.Sink
	metrics  *metrics.Metrics

	chatWindow  time.Duration
	recentLimit int
	chatLimit   int
}

type discardNotifier struct{}

func (discardNotifier) Enqueue(notifier.Notification) bool { return true }

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, opts Options) *BiddingService {
	if opts.Notifier == nil {
		opts.Notifier = discardNotifier{}
	}
	if opts.Events == nil {
		opts.Events = events.LogSink{}
	}
	if opts.ChatDuplicateWindow <= 0 {
		opts.ChatDuplicateWindow = 5 * time.Second
	}
	if opts.RecentBidsLimit <= 0 {
		opts.RecentBidsLimit = 3
	}
	if opts.ChatHistoryLimit <= 0 {
		opts.ChatHistoryLimit = 50
	}

	l := ledger.New(repo)
	return &BiddingService{
		repo:         repo,
		ledger:       l,
		machine:      statemachine.New(l),
		auctionLocks: keylock.New(),
		chatLocks:    keylock.New(),
		notifier:     opts.Notifier,
		events:       opts.Events,
		metrics:      opts.Metrics,
		chatWindow:   opts.ChatDuplicateWindow,
		recentLimit:  opts.RecentBidsLimit,
		chatLimit:    opts.ChatHistoryLimit,
	}
}

// PlaceBid refreshes the auction state, validates the bid against the ledger and appends it.
// Policy violations come back as *biddingerrors.Rejection with a reason fit for the end user.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, userID string, amount int64, now time.Time, origin string) (models.Bid, error) {
	now = now.UTC()
	if strings.TrimSpace(auctionID) == "" || strings.TrimSpace(userID) == "" {
		return models.Bid{}, biddingerrors.Validation(biddingerrors.ErrInvalidBid, "auction and bidder are required")
	}
	if _, err := s.lookupUser(ctx, userID); err != nil {
		return models.Bid{}, err
	}

	unlock := s.auctionLocks.Lock(auctionID)
	auction, transition, err := s.advanceLocked(ctx, auctionID, now)
	if err != nil {
		unlock()
		return models.Bid{}, err
	}

	previous, prevErr := s.ledger.WinningBid(ctx, auctionID)
	if prevErr != nil && !errors.Is(prevErr, biddingerrors.ErrNoBids) {
		unlock()
		return models.Bid{}, fmt.Errorf("service: failed to read leading bid for auction %s: %w", auctionID, prevErr)
	}

	bid, err := s.ledger.Insert(ctx, auction, models.Bid{
		BidID:     utils.NewID(),
		BidderID:  userID,
		Amount:    amount,
		CreatedAt: now,
		Origin:    origin,
	}, now)
	unlock()

	s.emit(transition)

	if err != nil {
		s.rejectBid(auctionID, userID, amount, now, err)
		if biddingerrors.KindOf(err) == biddingerrors.KindInternal {
			return models.Bid{}, fmt.Errorf("service: failed to record bid for auction %s by user %s: %w", auctionID, userID, err)
		}
		return models.Bid{}, err
	}

	s.metrics.BidAttempt("accepted")
	s.events.LogEvent(events.Event{
		Kind:      events.BidPlaced,
		AuctionID: auctionID,
		UserID:    userID,
		At:        now,
		Metadata:  map[string]any{"amount": amount, "bid_id": bid.BidID, "origin": origin},
	})

	if prevErr == nil && previous.BidderID != userID {
		s.notifier.Enqueue(notifier.Notification{
			Kind:      notifier.KindOutbid,
			AuctionID: auctionID,
			UserID:    previous.BidderID,
			Amount:    amount,
			At:        now,
		})
	}

	return bid, nil
}

func (s *BiddingService) rejectBid(auctionID, userID string, amount int64, now time.Time, err error) {
	kind := biddingerrors.KindOf(err)
	outcome := "rejected"
	switch kind {
	case biddingerrors.KindConflict:
		outcome = "conflict"
	case biddingerrors.KindInternal, biddingerrors.KindStateInvariant:
		outcome = "error"
		utils.Error("bid failed", map[string]any{"auction_id": auctionID, "user_id": userID, "error": err.Error()})
	}
	s.metrics.BidAttempt(outcome)
	s.events.LogEvent(events.Event{
		Kind:      events.BidRejected,
		AuctionID: auctionID,
		UserID:    userID,
		At:        now,
		Metadata:  map[string]any{"amount": amount, "reason": err.Error(), "kind": string(kind)},
	})
}

// AdvanceState applies the lifecycle rule at now. It returns nil when nothing changed.
func (s *BiddingService) AdvanceState(ctx context.Context, auctionID string, now time.Time) (*StatusChangeEvent, error) {
	now = now.UTC()
	unlock := s.auctionLocks.Lock(auctionID)
	_, transition, err := s.advanceLocked(ctx, auctionID, now)
	unlock()
	if err != nil {
		return nil, err
	}

	s.emit(transition)
	return transition, nil
}

// advanceLocked loads and re-evaluates an auction. Callers hold the auction lock.
func (s *BiddingService) advanceLocked(ctx context.Context, auctionID string, now time.Time) (models.Auction, *StatusChangeEvent, error) {
	auction, err := s.loadAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, nil, err
	}

	t, err := s.machine.Evaluate(ctx, &auction, now)
	if err != nil {
		if biddingerrors.KindOf(err) == biddingerrors.KindStateInvariant {
			utils.Error("auction state invariant violated", map[string]any{"auction_id": auctionID, "error": err.Error()})
			return models.Auction{}, nil, err
		}
		return models.Auction{}, nil, fmt.Errorf("service: failed to evaluate auction %s: %w", auctionID, err)
	}
	if !t.Changed() {
		return auction, nil, nil
	}

	if err := s.repo.UpdateAuction(ctx, auction); err != nil {
		return models.Auction{}, nil, fmt.Errorf("service: failed to persist auction %s: %w", auctionID, err)
	}
	return auction, &t, nil
}

// FinalizeManually closes an active auction on operator request. The state is refreshed at now first.
func (s *BiddingService) FinalizeManually(ctx context.Context, auctionID string, now time.Time) (StatusChangeEvent, error) {
	now = now.UTC()
	unlock := s.auctionLocks.Lock(auctionID)
	auction, refreshed, err := s.advanceLocked(ctx, auctionID, now)
	if err != nil {
		unlock()
		return StatusChangeEvent{}, err
	}

	t, err := s.machine.Finalize(ctx, &auction, now)
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

// emit turns a transition into events, metrics and notifications. Never called under a lock.
func (s *BiddingService) emit(t *StatusChangeEvent) {
	if t == nil || !t.Changed() {
		return
	}

	if t.From != t.To {
		s.metrics.Transition(string(t.To))
		s.events.LogEvent(events.Event{
			Kind:      events.StatusChanged,
			AuctionID: t.AuctionID,
			At:        t.At,
			Metadata:  map[string]any{"from": string(t.From), "to": string(t.To)},
		})
		if t.To == models.StatusInReview {
			s.notifier.Enqueue(notifier.Notification{
				Kind:      notifier.KindAuctionClosed,
				AuctionID: t.AuctionID,
				UserID:    t.WinnerID,
				At:        t.At,
			})
		}
	}

	if t.WinnerAssigned {
		s.events.LogEvent(events.Event{
			Kind:      events.WinnerDetermined,
			AuctionID: t.AuctionID,
			UserID:    t.WinnerID,
			At:        t.At,
		})
		s.notifier.Enqueue(notifier.Notification{
			Kind:      notifier.KindWinnerDetermined,
			AuctionID: t.AuctionID,
			UserID:    t.WinnerID,
			At:        t.At,
			DedupeKey: notifier.WinnerKey(t.AuctionID, t.WinnerID),
		})
	}
}

// AuctionSummary is the polling view of an auction.
type AuctionSummary struct {
	Auction       models.Auction `json:"auction"`
	CurrentPrice  int64          `json:"current_price"`
	MinimumBid    int64          `json:"minimum_bid"`
	TotalBids     int            `json:"total_bids"`
	AcceptingBids bool           `json:"accepting_bids"`
	RecentBids    []models.Bid   `json:"recent_bids"`
}

// GetAuction returns the auction after refreshing its state at now.
func (s *BiddingService) GetAuction(ctx context.Context, auctionID string, now time.Time) (models.Auction, error) {
	now = now.UTC()
	unlock := s.auctionLocks.Lock(auctionID)
	auction, transition, err := s.advanceLocked(ctx, auctionID, now)
	unlock()
	if err != nil {
		return models.Auction{}, err
	}
	s.emit(transition)
	return auction, nil
}

// Summary returns price, bid count and the latest bids of an auction.
func (s *BiddingService) Summary(ctx context.Context, auctionID string, now time.Time) (AuctionSummary, error) {
	auction, err := s.GetAuction(ctx, auctionID, now)
	if err != nil {
		return AuctionSummary{}, err
	}

	price, err := s.ledger.CurrentPrice(ctx, auction)
	if err != nil {
		return AuctionSummary{}, fmt.Errorf("service: %w", err)
	}
	total, err := s.ledger.TotalBids(ctx, auctionID)
	if err != nil {
		return AuctionSummary{}, fmt.Errorf("service: %w", err)
	}
	recent, err := s.ledger.Recent(ctx, auctionID, s.recentLimit)
	if err != nil {
		return AuctionSummary{}, fmt.Errorf("service: failed to get recent bids for auction %s: %w", auctionID, err)
	}

	inc := auction.MinIncrement
	if inc < 1 {
		inc = 1
	}
	return AuctionSummary{
		Auction:       auction,
		CurrentPrice:  price,
		MinimumBid:    price + inc,
		TotalBids:     total,
		AcceptingBids: statemachine.AcceptingBids(auction, now.UTC()),
		RecentBids:    recent,
	}, nil
}

// CurrentPrice returns the highest bid amount, or the starting price when there are no bids
func (s *BiddingService) CurrentPrice(ctx context.Context, auctionID string, now time.Time) (int64, error) {
	auction, err := s.GetAuction(ctx, auctionID, now)
	if err != nil {
		return 0, err
	}
	price, err := s.ledger.CurrentPrice(ctx, auction)
	if err != nil {
		return 0, fmt.Errorf("service: %w", err)
	}
	return price, nil
}

// TotalBids returns the number of bids on an auction
func (s *BiddingService) TotalBids(ctx context.Context, auctionID string, now time.Time) (int, error) {
	if _, err := s.GetAuction(ctx, auctionID, now); err != nil {
		return 0, err
	}
	n, err := s.ledger.TotalBids(ctx, auctionID)
	if err != nil {
		return 0, fmt.Errorf("service: %w", err)
	}
	return n, nil
}

// GetWinningBid returns the highest bid for an auction, earliest first on ties
func (s *BiddingService) GetWinningBid(ctx context.Context, auctionID string, now time.Time) (models.Bid, error) {
	if _, err := s.GetAuction(ctx, auctionID, now); err != nil {
		return models.Bid{}, err
	}

	winningBid, err := s.ledger.WinningBid(ctx, auctionID)
	if errors.Is(err, biddingerrors.ErrNoBids) {
		return models.Bid{}, biddingerrors.NotFound(biddingerrors.ErrNoBids, "auction %s has no bids yet", auctionID)
	}
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}

	return winningBid, nil
}

// GetBidsForAuction returns all bids for an auction, newest first
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID string, now time.Time) ([]models.Bid, error) {
	if _, err := s.GetAuction(ctx, auctionID, now); err != nil {
		return nil, err
	}

	bids, err := s.ledger.Bids(ctx, auctionID)
	if errors.Is(err, biddingerrors.ErrNoBids) {
		return []models.Bid{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}

	return bids, nil
}

// RecentBids returns the latest bids of an auction, newest first, capped by the configured limit
func (s *BiddingService) RecentBids(ctx context.Context, auctionID string, now time.Time) ([]models.Bid, error) {
	if _, err := s.GetAuction(ctx, auctionID, now); err != nil {
		return nil, err
	}
	bids, err := s.ledger.Recent(ctx, auctionID, s.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get recent bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetAuctionsByUser returns all auctions a user has placed bids on
func (s *BiddingService) GetAuctionsByUser(ctx context.Context, userID string) ([]models.Auction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, biddingerrors.Validation(biddingerrors.ErrInvalidBid, "user id is required")
	}

	auctions, err := s.repo.GetAuctionsByUser(ctx, userID)
	if errors.Is(err, biddingerrors.ErrUserNoBids) {
		return []models.Auction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for user %s: %w", userID, err)
	}

	return auctions, nil
}

func (s *BiddingService) loadAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if errors.Is(err, biddingerrors.ErrAuctionNotFound) {
		return models.Auction{}, biddingerrors.NotFound(biddingerrors.ErrAuctionNotFound, "auction %s not found", auctionID)
	}
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}
	return auction, nil
}

func (s *BiddingService) lookupUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, biddingerrors.ErrUserNotFound) {
		return models.User{}, biddingerrors.NotFound(biddingerrors.ErrUserNotFound, "user %s not found", userID)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to look up user %s: %w", userID, err)
	}
	return user, nil
}
