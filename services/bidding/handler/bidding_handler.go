package handler

import (
	"context"
	"net/http"
	"time"

	bidding "auction-house/internal/biddingService"
	model "auction-house/internal/models"
	"auction-house/services/bidding/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=bidding_handler.go -destination=mock_bidding_handler.go -package=handler

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, auctionID, userID string, amount int64, now time.Time, origin string) (model.Bid, error)
	GetBidsForAuction(ctx context.Context, auctionID string, now time.Time) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, auctionID string, now time.Time) (model.Bid, error)
	GetAuctionsByUser(ctx context.Context, userID string) ([]model.Auction, error)

	CreateAuction(ctx context.Context, in bidding.NewAuction, now time.Time) (model.Auction, error)
	ListAuctions(ctx context.Context, now time.Time) ([]model.Auction, error)
	Summary(ctx context.Context, auctionID string, now time.Time) (bidding.AuctionSummary, error)
	RescheduleAuction(ctx context.Context, auctionID string, start, end, now time.Time) (model.Auction, *bidding.StatusChangeEvent, error)
	DeleteAuction(ctx context.Context, auctionID string, now time.Time) error
	AdvanceState(ctx context.Context, auctionID string, now time.Time) (*bidding.StatusChangeEvent, error)
	FinalizeManually(ctx context.Context, auctionID string, now time.Time) (bidding.StatusChangeEvent, error)
	CompleteAuction(ctx context.Context, auctionID string, now time.Time) (bidding.StatusChangeEvent, error)
	CancelAuction(ctx context.Context, auctionID string, now time.Time) (bidding.StatusChangeEvent, error)
	ReleaseWinner(ctx context.Context, auctionID string, now time.Time) (bidding.StatusChangeEvent, error)

	PostMessage(ctx context.Context, auctionID, senderID, text string, now time.Time) (model.ChatMessage, error)
	Messages(ctx context.Context, auctionID string) ([]model.ChatMessage, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
	clock   func() time.Time
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service, clock: time.Now}
}

func (h *BiddingHandler) now() time.Time {
	return h.clock().UTC()
}

// RecordBidHandler handles POST /auctions/:auction_id/bids
func (h *BiddingHandler) RecordBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), auctionID, req.UserID, req.Amount, h.now(), c.ClientIP())
	if err != nil {
		helpers.RespondError(c, "RecordBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"user_id":    req.UserID,
			"amount":     req.Amount,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"user_id":    req.UserID,
		"amount":     bid.Amount,
	})
}

// GetBidsByAuctionHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) GetBidsByAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.service.GetBidsForAuction(c.Request.Context(), auctionID, h.now())
	if err != nil {
		helpers.RespondError(c, "GetBidsByAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, helpers.NewBidResponse(b))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(resp),
	})
}

// GetWinningBidHandler handles GET /auctions/:auction_id/winning
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bid, err := h.service.GetWinningBid(c.Request.Context(), auctionID, h.now())
	if err != nil {
		helpers.RespondError(c, "GetWinningBidHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": auctionID,
		"user_id":    bid.BidderID,
		"amount":     bid.Amount,
	})
}

// GetAuctionsByUserHandler handles GET /users/:user_id/auctions
func (h *BiddingHandler) GetAuctionsByUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	auctions, err := h.service.GetAuctionsByUser(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	if auctions == nil {
		auctions = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
	helpers.LogSuccess("GetAuctionsByUserHandler", "auctions retrieved successfully", map[string]any{
		"user_id":        userID,
		"auctions_count": len(auctions),
	})
}
