package handler

import (
	"context"
	"net/http"
	"time"

	bidding "auction-house/internal/biddingService"
	"auction-house/services/bidding/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// CreateAuctionHandler handles POST /auctions
func (h *BiddingHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	auction, err := h.service.CreateAuction(c.Request.Context(), bidding.NewAuction{
		ItemID:        req.ItemID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		StartingPrice: req.StartingPrice,
		MinIncrement:  req.MinIncrement,
		ReservePrice:  req.ReservePrice,
	}, h.now())
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err, map[string]any{"item_id": req.ItemID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, auction, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
		"item_id":    auction.ItemID,
		"status":     auction.Status,
	})
}

// ListAuctionsHandler handles GET /auctions
func (h *BiddingHandler) ListAuctionsHandler(c *gin.Context) {
	auctions, err := h.service.ListAuctions(c.Request.Context(), h.now())
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /auctions/:auction_id and returns the polling summary
func (h *BiddingHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	summary, err := h.service.Summary(c.Request.Context(), auctionID, h.now())
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, summary, "auction retrieved successfully")
}

// RescheduleAuctionHandler handles PUT /auctions/:auction_id/schedule
func (h *BiddingHandler) RescheduleAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RescheduleAuctionHandler", err)
		return
	}

	auction, _, err := h.service.RescheduleAuction(c.Request.Context(), auctionID, req.StartTime, req.EndTime, h.now())
	if err != nil {
		helpers.RespondError(c, "RescheduleAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, auction, "auction rescheduled successfully")
	helpers.LogSuccess("RescheduleAuctionHandler", "auction rescheduled successfully", map[string]any{
		"auction_id": auctionID,
		"status":     auction.Status,
	})
}

// DeleteAuctionHandler handles DELETE /auctions/:auction_id
func (h *BiddingHandler) DeleteAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	if err := h.service.DeleteAuction(c.Request.Context(), auctionID, h.now()); err != nil {
		helpers.RespondError(c, "DeleteAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"auction_id": auctionID}, "auction deleted successfully")
	helpers.LogSuccess("DeleteAuctionHandler", "auction deleted successfully", map[string]any{"auction_id": auctionID})
}

// AdvanceAuctionHandler handles POST /auctions/:auction_id/advance.
// The response data is null when the auction was already up to date.
func (h *BiddingHandler) AdvanceAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	transition, err := h.service.AdvanceState(c.Request.Context(), auctionID, h.now())
	if err != nil {
		helpers.RespondError(c, "AdvanceAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	if transition == nil {
		utils.JSONResponse(c, http.StatusOK, nil, "auction already up to date")
		return
	}
	utils.JSONResponse(c, http.StatusOK, transition, "auction state advanced")
}

type operatorCall func(ctx context.Context, auctionID string, now time.Time) (bidding.StatusChangeEvent, error)

func (h *BiddingHandler) runOperator(c *gin.Context, name, done string, call operatorCall) {
	auctionID := c.Param("auction_id")
	transition, err := call(c.Request.Context(), auctionID, h.now())
	if err != nil {
		helpers.RespondError(c, name, err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, transition, done)
	helpers.LogSuccess(name, done, map[string]any{
		"auction_id": auctionID,
		"from":       transition.From,
		"to":         transition.To,
	})
}

// FinalizeAuctionHandler handles POST /auctions/:auction_id/finalize
func (h *BiddingHandler) FinalizeAuctionHandler(c *gin.Context) {
	h.runOperator(c, "FinalizeAuctionHandler", "auction finalized", h.service.FinalizeManually)
}

// CompleteAuctionHandler handles POST /auctions/:auction_id/complete
func (h *BiddingHandler) CompleteAuctionHandler(c *gin.Context) {
	h.runOperator(c, "CompleteAuctionHandler", "auction completed", h.service.CompleteAuction)
}

// CancelAuctionHandler handles POST /auctions/:auction_id/cancel
func (h *BiddingHandler) CancelAuctionHandler(c *gin.Context) {
	h.runOperator(c, "CancelAuctionHandler", "auction cancelled", h.service.CancelAuction)
}

// ReleaseWinnerHandler handles POST /auctions/:auction_id/release-winner
func (h *BiddingHandler) ReleaseWinnerHandler(c *gin.Context) {
	h.runOperator(c, "ReleaseWinnerHandler", "winner released", h.service.ReleaseWinner)
}
