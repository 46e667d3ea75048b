package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Status is the lifecycle state of an auction
type Status string

const (
	StatusInPreparation Status = "in_preparation"
	StatusActive        Status = "active"
	StatusInReview      Status = "in_review"
	StatusFinalized     Status = "finalized"
	StatusCancelled     Status = "cancelled"
	// StatusDelayed is accepted from storage but never produced by the state machine.
	StatusDelayed Status = "delayed"
)

var terminalKeywords = []string{"cancelled", "finalized", "closed"}

// TerminalKeywords returns the lowercase keywords that mark a status as terminal.
func TerminalKeywords() []string {
	return append([]string(nil), terminalKeywords...)
}

// IsTerminal reports whether the status matches one of the terminal keywords, ignoring case.
func (s Status) IsTerminal() bool {
	norm := strings.ToLower(strings.TrimSpace(string(s)))
	for _, k := range terminalKeywords {
		if strings.Contains(norm, k) {
			return true
		}
	}
	return false
}

// Timestamps is shared bookkeeping composed into persisted entities
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" bun:"created_at,notnull"`
	UpdatedAt time.Time `json:"updated_at" bun:"updated_at,notnull"`
}

// Touch sets UpdatedAt, and CreatedAt when it is still zero.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// User represents a participant in the auction
type User struct {
	bun.BaseModel `bun:"table:users" json:"-"`

	UserID   string `json:"user_id" bun:"user_id,pk"`
	Username string `json:"username" bun:"username,notnull"`
	Email    string `json:"email" bun:"email"`
}

// Item represents the catalog item an auction sells
type Item struct {
	bun.BaseModel `bun:"table:items" json:"-"`

	ItemID        string `json:"item_id" bun:"item_id,pk"`
	Title         string `json:"title" bun:"title,notnull"`
	Description   string `json:"description" bun:"description"`
	StartingPrice int64  `json:"starting_price" bun:"starting_price,notnull"`
}

// Auction is a timed sale of a single item
type Auction struct {
	bun.BaseModel `bun:"table:auctions" json:"-"`

	AuctionID     string    `json:"auction_id" bun:"auction_id,pk"`
	ItemID        string    `json:"item_id" bun:"item_id,notnull"`
	StartTime     time.Time `json:"start_time" bun:"start_time,notnull"`
	EndTime       time.Time `json:"end_time" bun:"end_time,notnull"`
	StartingPrice int64     `json:"starting_price" bun:"starting_price,notnull"`
	MinIncrement  int64     `json:"min_increment" bun:"min_increment,notnull"`
	ReservePrice  *int64    `json:"reserve_price,omitempty" bun:"reserve_price"`
	Status        Status    `json:"status" bun:"status,notnull"`
	WinnerID      string    `json:"winner_id,omitempty" bun:"winner_id,nullzero"`
	Timestamps
}

// HasWinner reports whether a winner is currently recorded.
func (a Auction) HasWinner() bool {
	return a.WinnerID != ""
}

// Bid represents a user's bid on an auction. Bids are never updated.
type Bid struct {
	bun.BaseModel `bun:"table:bids" json:"-"`

	BidID     string    `json:"bid_id" bun:"bid_id,pk"`
	AuctionID string    `json:"auction_id" bun:"auction_id,notnull"`
	BidderID  string    `json:"bidder_id" bun:"bidder_id,notnull"`
	Amount    int64     `json:"amount" bun:"amount,notnull"`
	CreatedAt time.Time `json:"created_at" bun:"created_at,notnull"`
	Origin    string    `json:"origin,omitempty" bun:"origin,nullzero"`
	Active    bool      `json:"active" bun:"active,notnull"`
}

// ChatMessage is a line posted to an auction's chat
type ChatMessage struct {
	bun.BaseModel `bun:"table:chat_messages" json:"-"`

	MessageID string    `json:"message_id" bun:"message_id,pk"`
	AuctionID string    `json:"auction_id" bun:"auction_id,notnull"`
	SenderID  string    `json:"sender_id" bun:"sender_id,notnull"`
	Text      string    `json:"text" bun:"text,notnull"`
	CreatedAt time.Time `json:"created_at" bun:"created_at,notnull"`
}
