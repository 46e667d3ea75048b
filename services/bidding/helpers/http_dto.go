package helpers

import (
	"time"

	model "auction-house/internal/models"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	BidderID  string `json:"bidder_id"`
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}

func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type CreateAuctionRequest struct {
	ItemID        string    `json:"item_id" binding:"required"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required"`
	StartingPrice int64     `json:"starting_price" binding:"gte=0"`
	MinIncrement  int64     `json:"min_increment" binding:"gte=0"`
	ReservePrice  *int64    `json:"reserve_price" binding:"omitempty,gt=0"`
}

type RescheduleRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type PostMessageRequest struct {
	SenderID string `json:"sender_id" binding:"required"`
	Text     string `json:"text" binding:"required,max=500"`
}

type MessageResponse struct {
	MessageID string `json:"message_id"`
	SenderID  string `json:"sender_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func NewMessageResponse(msg model.ChatMessage) MessageResponse {
	return MessageResponse{
		MessageID: msg.MessageID,
		SenderID:  msg.SenderID,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
	}
}
