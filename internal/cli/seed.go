package cli

import (
	"context"
	"time"

	bidding "auction-house/internal/biddingService"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
)

var sampleUsers = []model.User{
	{UserID: "user1", Username: "alice", Email: "alice@example.com"},
	{UserID: "user2", Username: "bob", Email: "bob@example.com"},
	{UserID: "user3", Username: "carol", Email: "carol@example.com"},
}

var sampleItems = []model.Item{
	{ItemID: "item1", Title: "title1", Description: "description1", StartingPrice: 100},
	{ItemID: "item2", Title: "title2", Description: "Description2", StartingPrice: 200},
	{ItemID: "item3", Title: "title3", Description: "Description3", StartingPrice: 150},
}

// seedSampleData adds sample users and items, and opens one auction per item when none exist yet
func seedSampleData(ctx context.Context, catalog repository.CatalogWriter, repo repository.AuctionDB, svc *bidding.BiddingService, now time.Time) error {
	for _, u := range sampleUsers {
		if err := catalog.AddUser(ctx, u); err != nil {
			return err
		}
	}
	for _, item := range sampleItems {
		if err := catalog.AddItem(ctx, item); err != nil {
			return err
		}
	}

	existing, err := repo.ListAuctions(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		utils.Info("sample auctions already present", map[string]any{"count": len(existing)})
		return nil
	}

	for i, item := range sampleItems {
		auction, err := svc.CreateAuction(ctx, bidding.NewAuction{
			ItemID:       item.ItemID,
			StartTime:    now,
			EndTime:      now.Add(time.Duration(i+1) * time.Hour),
			MinIncrement: 10,
		}, now)
		if err != nil {
			return err
		}
		utils.Info("sample auction created", map[string]any{"auction_id": auction.AuctionID, "item_id": item.ItemID})
	}
	return nil
}
