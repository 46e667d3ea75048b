package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"auction-house/internal/biddingerrors"
	"auction-house/internal/config"
	"auction-house/internal/database"
	"auction-house/internal/migration"
	model "auction-house/internal/models"
)

// newSQLiteRepo opens a private in-memory sqlite database with the schema applied
func newSQLiteRepo(t *testing.T) *SQLRepo {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.Storage{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := migration.New("sqlite", db)
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))

	return NewSQLRepo(db)
}

func seededSQLRepo(t *testing.T, n int) *SQLRepo {
	t.Helper()
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.AddUser(ctx, model.User{UserID: "user1", Username: "ana"}))
	for i := 1; i <= n; i++ {
		itemID := fmt.Sprintf("item%d", i)
		require.NoError(t, repo.AddItem(ctx, newItem(itemID, fmt.Sprintf("Item %d", i), int64(50*i))))
		require.NoError(t, repo.CreateAuction(ctx, newAuction(fmt.Sprintf("auction%d", i), itemID, base.Add(time.Duration(i)*time.Minute))))
	}
	return repo
}

func TestSQLRepo_Catalog(t *testing.T) {
	repo := seededSQLRepo(t, 1)
	ctx := context.Background()

	user, err := repo.GetUser(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, "ana", user.Username)

	require.NoError(t, repo.AddUser(ctx, model.User{UserID: "user1", Username: "ana maria"}))
	user, err = repo.GetUser(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, "ana maria", user.Username)

	_, err = repo.GetUser(ctx, "ghost")
	require.ErrorIs(t, err, biddingerrors.ErrUserNotFound)

	item, err := repo.GetItem(ctx, "item1")
	require.NoError(t, err)
	require.Equal(t, int64(50), item.StartingPrice)

	_, err = repo.GetItem(ctx, "itemX")
	require.ErrorIs(t, err, biddingerrors.ErrItemNotFound)
}

func TestSQLRepo_AuctionCRUD(t *testing.T) {
	repo := seededSQLRepo(t, 2)
	ctx := context.Background()

	err := repo.CreateAuction(ctx, newAuction("auction1", "item1", base))
	require.ErrorIs(t, err, biddingerrors.ErrAlreadyExists)

	err = repo.CreateAuction(ctx, newAuction("auction9", "itemX", base))
	require.ErrorIs(t, err, biddingerrors.ErrItemNotFound)

	a, err := repo.GetAuction(ctx, "auction1")
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, a.Status)
	require.False(t, a.HasWinner())
	require.Nil(t, a.ReservePrice)
	require.True(t, a.StartTime.Equal(base.Add(time.Minute)))

	reserve := int64(500)
	a.Status = model.StatusInReview
	a.WinnerID = "user1"
	a.ReservePrice = &reserve
	require.NoError(t, repo.UpdateAuction(ctx, a))

	got, err := repo.GetAuction(ctx, "auction1")
	require.NoError(t, err)
	require.Equal(t, model.StatusInReview, got.Status)
	require.Equal(t, "user1", got.WinnerID)
	require.Equal(t, int64(500), *got.ReservePrice)

	got.WinnerID = ""
	require.NoError(t, repo.UpdateAuction(ctx, got))
	got, err = repo.GetAuction(ctx, "auction1")
	require.NoError(t, err)
	require.False(t, got.HasWinner())

	missing := newAuction("nope", "item1", base)
	require.ErrorIs(t, repo.UpdateAuction(ctx, missing), biddingerrors.ErrAuctionNotFound)

	all, err := repo.ListAuctions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "auction2", all[0].AuctionID, "latest start first")
}

func TestSQLRepo_ListFilters(t *testing.T) {
	repo := seededSQLRepo(t, 3)
	ctx := context.Background()

	a2, err := repo.GetAuction(ctx, "auction2")
	require.NoError(t, err)
	a2.Status = model.StatusCancelled
	require.NoError(t, repo.UpdateAuction(ctx, a2))

	a3, err := repo.GetAuction(ctx, "auction3")
	require.NoError(t, err)
	a3.Status = model.Status("Closed")
	require.NoError(t, repo.UpdateAuction(ctx, a3))

	open, err := repo.ListOpenAuctions(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, "auction1", open[0].AuctionID)

	// auction1 ends at base+1h1m, auction2 at base+1h2m
	ended, err := repo.ListAuctionsEndedBefore(ctx, base.Add(time.Hour+90*time.Second))
	require.NoError(t, err)
	require.Len(t, ended, 1)
	require.Equal(t, "auction1", ended[0].AuctionID)
}

func TestSQLRepo_Bids(t *testing.T) {
	repo := seededSQLRepo(t, 3)
	ctx := context.Background()

	require.NoError(t, repo.RecordBid(ctx, newBid("bid1", "auction1", "user1", 100, base)))
	require.NoError(t, repo.RecordBid(ctx, newBid("bid2", "auction1", "user2", 150, base.Add(time.Second))))
	require.NoError(t, repo.RecordBid(ctx, newBid("bid3", "auction2", "user1", 70, base)))

	err := repo.RecordBid(ctx, newBid("bid4", "auction1", "user1", 100, base.Add(2*time.Second)))
	require.ErrorIs(t, err, biddingerrors.ErrDuplicateBid)

	err = repo.RecordBid(ctx, newBid("bid5", "auctionX", "user1", 100, base))
	require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)

	bids, err := repo.GetBidsByAuction(ctx, "auction1")
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, "bid2", bids[0].BidID)
	require.True(t, bids[0].Active)

	_, err = repo.GetBidsByAuction(ctx, "auction3")
	require.ErrorIs(t, err, biddingerrors.ErrNoBids)

	winning, err := repo.GetWinningBid(ctx, "auction1")
	require.NoError(t, err)
	require.Equal(t, "bid2", winning.BidID)

	_, err = repo.GetWinningBid(ctx, "auction3")
	require.ErrorIs(t, err, biddingerrors.ErrNoBids)

	count, err := repo.CountBids(ctx, "auction1")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	auctions, err := repo.GetAuctionsByUser(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, auctions, 2)

	_, err = repo.GetAuctionsByUser(ctx, "nobody")
	require.ErrorIs(t, err, biddingerrors.ErrUserNoBids)
}

func TestSQLRepo_WinningBidTieBreak(t *testing.T) {
	repo := seededSQLRepo(t, 1)
	ctx := context.Background()

	require.NoError(t, repo.RecordBid(ctx, newBid("late", "auction1", "userA", 200, base.Add(2*time.Second))))
	require.NoError(t, repo.RecordBid(ctx, newBid("early", "auction1", "userB", 200, base.Add(time.Second))))

	winning, err := repo.GetWinningBid(ctx, "auction1")
	require.NoError(t, err)
	require.Equal(t, "early", winning.BidID)
}

func TestSQLRepo_Messages(t *testing.T) {
	repo := seededSQLRepo(t, 1)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.RecordMessage(ctx, model.ChatMessage{
			MessageID: fmt.Sprintf("m%d", i),
			AuctionID: "auction1",
			SenderID:  []string{"user1", "user2"}[i%2],
			Text:      fmt.Sprintf("msg %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	err := repo.RecordMessage(ctx, model.ChatMessage{MessageID: "mx", AuctionID: "auctionX", SenderID: "user1", Text: "x", CreatedAt: base})
	require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)

	last, err := repo.GetLastMessage(ctx, "auction1", "user1")
	require.NoError(t, err)
	require.Equal(t, "m4", last.MessageID)

	_, err = repo.GetLastMessage(ctx, "auction1", "user9")
	require.ErrorIs(t, err, biddingerrors.ErrNoMessages)

	msgs, err := repo.GetMessages(ctx, "auction1", 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, []string{"m2", "m3", "m4"}, []string{msgs[0].MessageID, msgs[1].MessageID, msgs[2].MessageID})

	empty, err := repo.GetMessages(ctx, "auctionX", 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSQLRepo_DeleteAuctionCascades(t *testing.T) {
	repo := seededSQLRepo(t, 2)
	ctx := context.Background()

	require.NoError(t, repo.RecordBid(ctx, newBid("bid1", "auction1", "user1", 100, base)))
	require.NoError(t, repo.RecordMessage(ctx, model.ChatMessage{MessageID: "m1", AuctionID: "auction1", SenderID: "user1", Text: "hi", CreatedAt: base}))

	require.NoError(t, repo.DeleteAuction(ctx, "auction1"))

	_, err := repo.GetAuction(ctx, "auction1")
	require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)
	count, err := repo.CountBids(ctx, "auction1")
	require.NoError(t, err)
	require.Zero(t, count)

	require.ErrorIs(t, repo.DeleteAuction(ctx, "auction1"), biddingerrors.ErrAuctionNotFound)
}

func TestSQLRepo_ConcurrentBids(t *testing.T) {
	repo := seededSQLRepo(t, 1)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			require.NoError(t, repo.RecordBid(ctx, newBid(fmt.Sprintf("bid-%d", i), "auction1", fmt.Sprintf("user-%d", i), int64(100+i), base)))
		}()
	}
	wg.Wait()

	count, err := repo.CountBids(ctx, "auction1")
	require.NoError(t, err)
	require.Equal(t, 20, count)
}
