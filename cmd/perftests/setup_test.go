package perftests

import (
	"context"
	"fmt"
	"testing"
	"time"

	bidding "auction-house/internal/biddingService"
	"auction-house/internal/events"
	model "auction-house/internal/models"
	repository "auction-house/internal/repository"
)

type discardSink struct{}

func (discardSink) LogEvent(events.Event) {}

// newBenchService returns a service over a memory repo holding numUsers users ("user_<n>")
// and numAuctions auctions that accept bids for the next day, with increment 1.
func newBenchService(tb testing.TB, numUsers, numAuctions int) (*bidding.BiddingService, []string) {
	tb.Helper()
	ctx := context.Background()

	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, bidding.Options{Events: discardSink{}})

	for i := 0; i < numUsers; i++ {
		if err := repo.AddUser(ctx, model.User{UserID: fmt.Sprintf("user_%d", i)}); err != nil {
			tb.Fatalf("add user: %v", err)
		}
	}

	now := time.Now().UTC()
	ids := make([]string, 0, numAuctions)
	for i := 0; i < numAuctions; i++ {
		item := model.Item{
			ItemID:        fmt.Sprintf("item_%d", i),
			Title:         fmt.Sprintf("title_%d", i),
			Description:   "Benchmark item",
			StartingPrice: 50,
		}
		if err := repo.AddItem(ctx, item); err != nil {
			tb.Fatalf("add item: %v", err)
		}
		a, err := svc.CreateAuction(ctx, bidding.NewAuction{
			ItemID:    item.ItemID,
			StartTime: now,
			EndTime:   now.Add(24 * time.Hour),
		}, now)
		if err != nil {
			tb.Fatalf("create auction: %v", err)
		}
		ids = append(ids, a.AuctionID)
	}
	return svc, ids
}
