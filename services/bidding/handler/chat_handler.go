package handler

import (
	"net/http"

	"auction-house/services/bidding/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// PostMessageHandler handles POST /auctions/:auction_id/messages
func (h *BiddingHandler) PostMessageHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PostMessageHandler", err)
		return
	}

	msg, err := h.service.PostMessage(c.Request.Context(), auctionID, req.SenderID, req.Text, h.now())
	if err != nil {
		helpers.RespondError(c, "PostMessageHandler", err, map[string]any{
			"auction_id": auctionID,
			"sender_id":  req.SenderID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewMessageResponse(msg), "message posted successfully")
}

// GetMessagesHandler handles GET /auctions/:auction_id/messages
func (h *BiddingHandler) GetMessagesHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	msgs, err := h.service.Messages(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetMessagesHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	resp := make([]helpers.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, helpers.NewMessageResponse(m))
	}
	utils.JSONResponse(c, http.StatusOK, resp, "messages retrieved successfully")
}
