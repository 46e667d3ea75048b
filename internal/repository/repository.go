package repository

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

import (
	"auction-house/internal/biddingerrors"
	model "auction-house/internal/models"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// AuctionDB defines the storage interface for the auction system
type AuctionDB interface {
	GetUser(ctx context.Context, userID string) (model.User, error)
	GetItem(ctx context.Context, itemID string) (model.Item, error)

	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	UpdateAuction(ctx context.Context, auction model.Auction) error
	DeleteAuction(ctx context.Context, auctionID string) error
	ListAuctions(ctx context.Context) ([]model.Auction, error)
	ListOpenAuctions(ctx context.Context) ([]model.Auction, error)
	ListAuctionsEndedBefore(ctx context.Context, cutoff time.Time) ([]model.Auction, error)

	RecordBid(ctx context.Context, bid model.Bid) error
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error)
	CountBids(ctx context.Context, auctionID string) (int, error)
	GetAuctionsByUser(ctx context.Context, userID string) ([]model.Auction, error)

	RecordMessage(ctx context.Context, msg model.ChatMessage) error
	GetLastMessage(ctx context.Context, auctionID, senderID string) (model.ChatMessage, error)
	GetMessages(ctx context.Context, auctionID string, limit int) ([]model.ChatMessage, error)
}

// CatalogWriter registers users and items. Auctions reference both.
type CatalogWriter interface {
	AddUser(ctx context.Context, user model.User) error
	AddItem(ctx context.Context, item model.Item) error
}

type bidKey struct {
	auctionID string
	bidderID  string
	amount    int64
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu           sync.RWMutex
	users        map[string]model.User
	items        map[string]model.Item
	auctions     map[string]model.Auction
	bids         map[string][]model.Bid        // key: auctionID -> value: bids in insertion order
	bidIndex     map[bidKey]struct{}           // uniqueness of (auction, bidder, amount)
	userAuctions map[string][]string           // key: userID -> value: auctionIDs user has bid on
	messages     map[string][]model.ChatMessage // key: auctionID -> value: messages in insertion order
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:        make(map[string]model.User),
		items:        make(map[string]model.Item),
		auctions:     make(map[string]model.Auction),
		bids:         make(map[string][]model.Bid),
		bidIndex:     make(map[bidKey]struct{}),
		userAuctions: make(map[string][]string),
		messages:     make(map[string][]model.ChatMessage),
	}
}

// AddUser registers a user, replacing any previous entry with the same id
func (r *MemoryRepo) AddUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
	return nil
}

// AddItem adds an item to the catalog, replacing any previous entry with the same id
func (r *MemoryRepo) AddItem(_ context.Context, item model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ItemID] = item
	return nil
}

// GetUser returns a user by id
func (r *MemoryRepo) GetUser(_ context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUserNotFound)
	}
	return user, nil
}

// GetItem returns a catalog item by id
func (r *MemoryRepo) GetItem(_ context.Context, itemID string) (model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.Item{}, fmt.Errorf("get item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	return item, nil
}

// CreateAuction stores a new auction
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[auction.ItemID]; !ok {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, biddingerrors.ErrItemNotFound)
	}
	if _, exists := r.auctions[auction.AuctionID]; exists {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, biddingerrors.ErrAlreadyExists)
	}
	r.auctions[auction.AuctionID] = auction
	return nil
}

// GetAuction returns an auction by id
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// UpdateAuction replaces a stored auction
func (r *MemoryRepo) UpdateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auction.AuctionID]; !ok {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	r.auctions[auction.AuctionID] = auction
	return nil
}

// DeleteAuction removes an auction along with its bids and messages
func (r *MemoryRepo) DeleteAuction(_ context.Context, auctionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return fmt.Errorf("delete auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}

	for _, b := range r.bids[auctionID] {
		delete(r.bidIndex, bidKey{auctionID: b.AuctionID, bidderID: b.BidderID, amount: b.Amount})
		r.userAuctions[b.BidderID] = removeID(r.userAuctions[b.BidderID], auctionID)
		if len(r.userAuctions[b.BidderID]) == 0 {
			delete(r.userAuctions, b.BidderID)
		}
	}
	delete(r.bids, auctionID)
	delete(r.messages, auctionID)
	delete(r.auctions, auctionID)
	return nil
}

// ListAuctions returns all auctions, most recent start first
func (r *MemoryRepo) ListAuctions(_ context.Context) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterAuctions(func(model.Auction) bool { return true }), nil
}

// ListOpenAuctions returns auctions whose status is not terminal
func (r *MemoryRepo) ListOpenAuctions(_ context.Context) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterAuctions(func(a model.Auction) bool { return !a.Status.IsTerminal() }), nil
}

// ListAuctionsEndedBefore returns auctions whose end time is before cutoff
func (r *MemoryRepo) ListAuctionsEndedBefore(_ context.Context, cutoff time.Time) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterAuctions(func(a model.Auction) bool { return a.EndTime.Before(cutoff) }), nil
}

func (r *MemoryRepo) filterAuctions(keep func(model.Auction) bool) []model.Auction {
	out := make([]model.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].AuctionID < out[j].AuctionID
		}
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}

// RecordBid appends a bid. The (auction, bidder, amount) triple is unique.
func (r *MemoryRepo) RecordBid(_ context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
	}

	key := bidKey{auctionID: bid.AuctionID, bidderID: bid.BidderID, amount: bid.Amount}
	if _, dup := r.bidIndex[key]; dup {
		return fmt.Errorf("record bid for auction %s by user %s: %w", bid.AuctionID, bid.BidderID, biddingerrors.ErrDuplicateBid)
	}
	r.bidIndex[key] = struct{}{}
	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)

	for _, id := range r.userAuctions[bid.BidderID] {
		if id == bid.AuctionID {
			return nil
		}
	}
	r.userAuctions[bid.BidderID] = append(r.userAuctions[bid.BidderID], bid.AuctionID)

	return nil
}

// GetBidsByAuction returns all bids for an auction, newest first
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids, ok := r.bids[auctionID]
	if !ok || len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, biddingerrors.ErrNoBids)
	}

	out := make([]model.Bid, len(bids))
	for i, b := range bids {
		out[len(bids)-1-i] = b
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// GetWinningBid returns the highest bid for an auction, earliest first on ties
func (r *MemoryRepo) GetWinningBid(_ context.Context, auctionID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids, ok := r.bids[auctionID]
	if !ok || len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, biddingerrors.ErrNoBids)
	}

	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > winning.Amount || (b.Amount == winning.Amount && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
		}
	}
	return winning, nil
}

// CountBids returns the number of bids recorded for an auction
func (r *MemoryRepo) CountBids(_ context.Context, auctionID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bids[auctionID]), nil
}

// GetAuctionsByUser returns all auctions a user has bid on
func (r *MemoryRepo) GetAuctionsByUser(_ context.Context, userID string) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctionIDs, ok := r.userAuctions[userID]
	if !ok || len(auctionIDs) == 0 {
		return nil, fmt.Errorf("get auctions for user %s: %w", userID, biddingerrors.ErrUserNoBids)
	}

	auctions := make([]model.Auction, 0, len(auctionIDs))
	for _, id := range auctionIDs {
		if a, exists := r.auctions[id]; exists {
			auctions = append(auctions, a)
		}
	}
	return auctions, nil
}

// RecordMessage appends a chat message
func (r *MemoryRepo) RecordMessage(_ context.Context, msg model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[msg.AuctionID]; !ok {
		return fmt.Errorf("record message for auction %s: %w", msg.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	r.messages[msg.AuctionID] = append(r.messages[msg.AuctionID], msg)
	return nil
}

// GetLastMessage returns the sender's most recent message in an auction chat
func (r *MemoryRepo) GetLastMessage(_ context.Context, auctionID, senderID string) (model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		last  model.ChatMessage
		found bool
	)
	for _, m := range r.messages[auctionID] {
		if m.SenderID != senderID {
			continue
		}
		if !found || !m.CreatedAt.Before(last.CreatedAt) {
			last, found = m, true
		}
	}
	if !found {
		return model.ChatMessage{}, fmt.Errorf("get last message of %s in auction %s: %w", senderID, auctionID, biddingerrors.ErrNoMessages)
	}
	return last, nil
}

// GetMessages returns up to limit most recent messages in chronological order
func (r *MemoryRepo) GetMessages(_ context.Context, auctionID string, limit int) ([]model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := append([]model.ChatMessage(nil), r.messages[auctionID]...)
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
