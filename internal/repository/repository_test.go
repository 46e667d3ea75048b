package repository

import (
	"auction-house/internal/biddingerrors"
	model "auction-house/internal/models"
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Helper to create a new Item
func newItem(itemID, title string, startingPrice int64) model.Item {
	return model.Item{
		ItemID:        itemID,
		Title:         title,
		Description:   fmt.Sprintf("%s description", title),
		StartingPrice: startingPrice,
	}
}

// Helper to create a new Auction for an item
func newAuction(auctionID, itemID string, start time.Time) model.Auction {
	a := model.Auction{
		AuctionID:     auctionID,
		ItemID:        itemID,
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		StartingPrice: 50,
		MinIncrement:  1,
		Status:        model.StatusActive,
	}
	a.Touch(start)
	return a
}

// Helper to create a new Bid
func newBid(bidID, auctionID, userID string, amount int64, createdAt time.Time) model.Bid {
	return model.Bid{
		BidID:     bidID,
		AuctionID: auctionID,
		BidderID:  userID,
		Amount:    amount,
		CreatedAt: createdAt,
		Active:    true,
	}
}

// seededMemoryRepo returns a repo holding item1..n and auction1..n
func seededMemoryRepo(t *testing.T, n int) *MemoryRepo {
	t.Helper()
	repo := NewMemoryRepo()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		itemID := fmt.Sprintf("item%d", i)
		require.NoError(t, repo.AddItem(ctx, newItem(itemID, fmt.Sprintf("Item %d", i), int64(50*i))))
		require.NoError(t, repo.CreateAuction(ctx, newAuction(fmt.Sprintf("auction%d", i), itemID, base.Add(time.Duration(i)*time.Minute))))
	}
	return repo
}

// Test RecordBid
func TestMemoryRepo_RecordBid(t *testing.T) {
	t.Parallel() // Allow running in parallel with other test functions

	repo := seededMemoryRepo(t, 1)
	ctx := context.Background()

	// Table-driven test cases
	tests := []struct {
		name    string
		bid     model.Bid
		wantErr error
	}{
		{name: "valid_bid", bid: newBid("bid1", "auction1", "user1", 100, base)},
		{name: "auction_not_found", bid: newBid("bid2", "auctionX", "user1", 50, base), wantErr: biddingerrors.ErrAuctionNotFound},
		{name: "bid_with_max_amount", bid: newBid("bid5", "auction1", "user3", math.MaxInt64, base)},
		{name: "bid_with_past_timestamp", bid: newBid("bid6", "auction1", "user4", 120, base.Add(-24*time.Hour))},
		{name: "empty_auctionID", bid: newBid("bid-empty", "", "userY", 100, base), wantErr: biddingerrors.ErrAuctionNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run table test cases in parallel

			err := repo.RecordBid(ctx, tc.bid)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			bids, err := repo.GetBidsByAuction(ctx, tc.bid.AuctionID)
			require.NoError(t, err)
			require.Contains(t, bids, tc.bid)
		})
	}

	// The same (auction, bidder, amount) triple is stored once
	t.Run("duplicate_triple_rejected", func(t *testing.T) {
		require.NoError(t, repo.RecordBid(ctx, newBid("bid-existing", "auction1", "userX", 300, base)))
		err := repo.RecordBid(ctx, newBid("bid-again", "auction1", "userX", 300, base.Add(time.Second)))
		require.ErrorIs(t, err, biddingerrors.ErrDuplicateBid)
	})

	// concurrency test
	t.Run("concurrent_bids", func(t *testing.T) {
		t.Parallel() // Run concurrency test in parallel

		repo := seededMemoryRepo(t, 1)

		var wg sync.WaitGroup
		concurrentCount := 50

		for i := 0; i < concurrentCount; i++ {
			wg.Add(1)
			i := i
			go func() {
				defer wg.Done()
				b := newBid(fmt.Sprintf("bid-%d", i), "auction1", fmt.Sprintf("user-%d", i), int64(100+i), base)
				require.NoError(t, repo.RecordBid(ctx, b))
			}()
		}

		wg.Wait()

		count, err := repo.CountBids(ctx, "auction1")
		require.NoError(t, err)
		require.Equal(t, concurrentCount, count)
	})
}

// Test GetBidsByAuction
func TestMemoryRepo_GetBidsByAuction(t *testing.T) {
	t.Parallel() // Allow running in parallel with other test functions

	repo := seededMemoryRepo(t, 3)
	ctx := context.Background()

	bid1 := newBid("bid1", "auction1", "user1", 100, base)
	bid2 := newBid("bid2", "auction1", "user2", 150, base.Add(time.Second))
	require.NoError(t, repo.RecordBid(ctx, bid1))
	require.NoError(t, repo.RecordBid(ctx, bid2))

	// Seed large number of bids for performance/internal slice growth
	var largeBids []model.Bid
	for i := 0; i < 1000; i++ {
		b := newBid(fmt.Sprintf("bid-large-%d", i), "auction3", fmt.Sprintf("user-%d", i), int64(100+i), base.Add(time.Duration(i)*time.Millisecond))
		require.NoError(t, repo.RecordBid(ctx, b))
		largeBids = append(largeBids, b)
	}

	tests := []struct {
		name      string
		auctionID string
		wantBids  []model.Bid
		wantError bool
	}{
		{name: "existing_auction_with_bids", auctionID: "auction1", wantBids: []model.Bid{bid2, bid1}},
		{name: "existing_auction_no_bids", auctionID: "auction2", wantError: true},
		{name: "non_existing_auction", auctionID: "auctionX", wantError: true},
		{name: "auction_with_large_number_of_bids", auctionID: "auction3", wantBids: largeBids},
		{name: "empty_auctionID", auctionID: "", wantError: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run table test cases in parallel

			bids, err := repo.GetBidsByAuction(ctx, tc.auctionID)
			if tc.wantError {
				require.ErrorIs(t, err, biddingerrors.ErrNoBids)
				return
			}
			require.NoError(t, err)
			require.ElementsMatch(t, tc.wantBids, bids)
			for i := 1; i < len(bids); i++ {
				require.False(t, bids[i].CreatedAt.After(bids[i-1].CreatedAt), "bids must be newest first")
			}
		})
	}

	// Concurrent read test
	t.Run("concurrent_reads", func(t *testing.T) {
		t.Parallel()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				bids, err := repo.GetBidsByAuction(ctx, "auction1")
				require.NoError(t, err)
				require.Equal(t, []model.Bid{bid2, bid1}, bids)
			}()
		}
		wg.Wait()
	})
}

// Test GetWinningBid
func TestMemoryRepo_GetWinningBid(t *testing.T) {
	t.Parallel() // Allow running in parallel with other test functions

	repo := seededMemoryRepo(t, 4)
	ctx := context.Background()

	bid1 := newBid("bid1", "auction1", "user1", 100, base)
	bid2 := newBid("bid2", "auction1", "user2", 150, base.Add(time.Second))
	require.NoError(t, repo.RecordBid(ctx, bid1))
	require.NoError(t, repo.RecordBid(ctx, bid2))

	var largeBids []model.Bid
	for i := 0; i < 1000; i++ {
		b := newBid(fmt.Sprintf("bid-large-%d", i), "auction3", fmt.Sprintf("user-%d", i), int64(100+i), base)
		require.NoError(t, repo.RecordBid(ctx, b))
		largeBids = append(largeBids, b)
	}

	// Tie bids: the later insert carries the earlier timestamp and must win
	bidTieLate := newBid("bid-tie-late", "auction4", "userA", 200, base.Add(2*time.Second))
	bidTieEarly := newBid("bid-tie-early", "auction4", "userB", 200, base.Add(time.Second))
	require.NoError(t, repo.RecordBid(ctx, bidTieLate))
	require.NoError(t, repo.RecordBid(ctx, bidTieEarly))

	tests := []struct {
		name      string
		auctionID string
		wantBid   model.Bid
		wantError bool
	}{
		{name: "existing_auction_with_bids", auctionID: "auction1", wantBid: bid2},
		{name: "existing_auction_no_bids", auctionID: "auction2", wantError: true},
		{name: "non_existing_auction", auctionID: "auctionX", wantError: true},
		{name: "auction_with_large_number_of_bids", auctionID: "auction3", wantBid: largeBids[len(largeBids)-1]},
		{name: "tie_bids_earliest_wins", auctionID: "auction4", wantBid: bidTieEarly},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			bid, err := repo.GetWinningBid(ctx, tc.auctionID)
			if tc.wantError {
				require.ErrorIs(t, err, biddingerrors.ErrNoBids)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantBid, bid)
		})
	}
}

// Test GetAuctionsByUser
func TestMemoryRepo_GetAuctionsByUser(t *testing.T) {
	t.Parallel()

	repo := seededMemoryRepo(t, 3)
	ctx := context.Background()

	require.NoError(t, repo.RecordBid(ctx, newBid("bid1", "auction1", "user1", 100, base)))
	require.NoError(t, repo.RecordBid(ctx, newBid("bid2", "auction2", "user1", 150, base)))
	require.NoError(t, repo.RecordBid(ctx, newBid("bid3", "auction3", "user2", 200, base)))
	require.NoError(t, repo.RecordBid(ctx, newBid("bid4", "auction3", "user2", 250, base)))

	a1, _ := repo.GetAuction(ctx, "auction1")
	a2, _ := repo.GetAuction(ctx, "auction2")
	a3, _ := repo.GetAuction(ctx, "auction3")

	tests := []struct {
		name         string
		userID       string
		wantAuctions []model.Auction
		wantError    bool
	}{
		{name: "user_with_multiple_auctions", userID: "user1", wantAuctions: []model.Auction{a1, a2}},
		{name: "repeat_bids_same_auction", userID: "user2", wantAuctions: []model.Auction{a3}},
		{name: "user_with_no_bids", userID: "userX", wantError: true},
		{name: "empty_userID", userID: "", wantError: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			auctions, err := repo.GetAuctionsByUser(ctx, tc.userID)
			if tc.wantError {
				require.ErrorIs(t, err, biddingerrors.ErrUserNoBids)
				return
			}
			require.NoError(t, err)
			require.ElementsMatch(t, tc.wantAuctions, auctions)
		})
	}
}

func TestMemoryRepo_DeleteAuctionCascades(t *testing.T) {
	t.Parallel()

	repo := seededMemoryRepo(t, 2)
	ctx := context.Background()

	require.NoError(t, repo.RecordBid(ctx, newBid("bid1", "auction1", "user1", 100, base)))
	require.NoError(t, repo.RecordBid(ctx, newBid("bid2", "auction2", "user1", 100, base)))
	require.NoError(t, repo.RecordMessage(ctx, model.ChatMessage{MessageID: "m1", AuctionID: "auction1", SenderID: "user1", Text: "hi", CreatedAt: base}))

	require.NoError(t, repo.DeleteAuction(ctx, "auction1"))

	_, err := repo.GetAuction(ctx, "auction1")
	require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)
	count, err := repo.CountBids(ctx, "auction1")
	require.NoError(t, err)
	require.Zero(t, count)
	msgs, err := repo.GetMessages(ctx, "auction1", 0)
	require.NoError(t, err)
	require.Empty(t, msgs)

	auctions, err := repo.GetAuctionsByUser(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, auctions, 1)
	require.Equal(t, "auction2", auctions[0].AuctionID)

	require.ErrorIs(t, repo.DeleteAuction(ctx, "auction1"), biddingerrors.ErrAuctionNotFound)
}

func TestMemoryRepo_ConcurrentMixedAccess(t *testing.T) {
	t.Parallel()

	repo := seededMemoryRepo(t, 1)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		i := i
		go func() {
			defer wg.Done()
			require.NoError(t, repo.RecordBid(ctx, newBid(fmt.Sprintf("bid-%d", i), "auction1", "user", int64(100+i), base)))
		}()
		go func() {
			defer wg.Done()
			_, _ = repo.GetWinningBid(ctx, "auction1")
		}()
		go func() {
			defer wg.Done()
			require.NoError(t, repo.RecordMessage(ctx, model.ChatMessage{
				MessageID: fmt.Sprintf("m-%d", i), AuctionID: "auction1", SenderID: "user", Text: "x", CreatedAt: base,
			}))
		}()
	}
	wg.Wait()

	winning, err := repo.GetWinningBid(ctx, "auction1")
	require.NoError(t, err)
	require.Equal(t, int64(149), winning.Amount)
}
