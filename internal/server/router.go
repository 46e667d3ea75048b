package server

import (
	"net/http"

	"auction-house/internal/metrics"
	handler "auction-house/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

// RouterOptions carries the optional pieces of the HTTP surface.
type RouterOptions struct {
	Metrics     *metrics.Metrics
	MetricsPath string
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService handler.BiddingServiceInterface, opts RouterOptions) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(MetricsMiddleware(opts.Metrics))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}

	biddingHandler := handler.NewBiddingHandler(biddingService)

	auctions := router.Group("/auctions")
	{
		auctions.GET("", biddingHandler.ListAuctionsHandler)
		auctions.POST("", biddingHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", biddingHandler.GetAuctionHandler)
		auctions.DELETE("/:auction_id", biddingHandler.DeleteAuctionHandler)
		auctions.PUT("/:auction_id/schedule", biddingHandler.RescheduleAuctionHandler)

		auctions.POST("/:auction_id/advance", biddingHandler.AdvanceAuctionHandler)
		auctions.POST("/:auction_id/finalize", biddingHandler.FinalizeAuctionHandler)
		auctions.POST("/:auction_id/complete", biddingHandler.CompleteAuctionHandler)
		auctions.POST("/:auction_id/cancel", biddingHandler.CancelAuctionHandler)
		auctions.POST("/:auction_id/release-winner", biddingHandler.ReleaseWinnerHandler)

		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsByAuctionHandler)
		auctions.POST("/:auction_id/bids", biddingHandler.RecordBidHandler)
		auctions.GET("/:auction_id/winning", biddingHandler.GetWinningBidHandler)

		auctions.GET("/:auction_id/messages", biddingHandler.GetMessagesHandler)
		auctions.POST("/:auction_id/messages", biddingHandler.PostMessageHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/auctions", biddingHandler.GetAuctionsByUserHandler)
	}

	return router
}
