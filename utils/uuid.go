package utils

import (
	"github.com/google/uuid"
)

// NewID returns a random identifier for auctions, bids and chat messages
func NewID() string {
	return uuid.NewString()
}
