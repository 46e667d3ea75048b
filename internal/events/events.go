// Package events records auction domain events as structured log lines.
package events

import (
	"sync"
	"time"

	"auction-house/utils"
)

// Kind names a domain event.
type Kind string

const (
	BidPlaced          Kind = "bid_placed"
	BidRejected        Kind = "bid_rejected"
	StatusChanged      Kind = "status_changed"
	WinnerDetermined   Kind = "winner_determined"
	WinnerReleased     Kind = "winner_released"
	ChatPosted         Kind = "chat_posted"
	ChatRejected       Kind = "chat_rejected"
	AuctionCreated     Kind = "auction_created"
	AuctionRescheduled Kind = "auction_rescheduled"
	AuctionDeleted     Kind = "auction_deleted"
	AuctionPruned      Kind = "auction_pruned"
)

// Event is one log_event call.
type Event struct {
	Kind      Kind
	AuctionID string
	UserID    string
	At        time.Time
	Metadata  map[string]any
}

// Sink receives domain events. Implementations must not block.
type Sink interface {
	LogEvent(e Event)
}

// LogSink writes events through the shared logrus logger.
type LogSink struct{}

func (LogSink) LogEvent(e Event) {
	fields := make(map[string]any, len(e.Metadata)+4)
	for k, v := range e.Metadata {
		fields[k] = v
	}
	fields["event"] = string(e.Kind)
	fields["auction_id"] = e.AuctionID
	if e.UserID != "" {
		fields["user_id"] = e.UserID
	}
	if !e.At.IsZero() {
		fields["at"] = e.At.UTC().Format(time.RFC3339Nano)
	}

	utils.Info("auction event", fields)
}

// Recorder keeps events in memory. Useful in tests and for debugging endpoints.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) LogEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events, optionally filtered by kind.
func (r *Recorder) Events(kinds ...Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		if len(kinds) == 0 {
			out = append(out, e)
			continue
		}
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
