package bidding

import (
	"auction-house/internal/biddingerrors"
	"auction-house/internal/events"
	"auction-house/internal/models"
	"auction-house/internal/statemachine"
	"auction-house/utils"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PostMessage adds a line to the auction chat. Chat is open only while the auction accepts bids,
// and a sender repeating their previous message within the duplicate window is refused.
func (s *BiddingService) PostMessage(ctx context.Context, auctionID, senderID, text string, now time.Time) (models.ChatMessage, error) {
	now = now.UTC()
	text = strings.TrimSpace(text)
	if text == "" {
		s.rejectChat(auctionID, senderID, now, "empty")
		return models.ChatMessage{}, biddingerrors.Validation(biddingerrors.ErrEmptyMessage, "message cannot be empty")
	}
	if _, err := s.lookupUser(ctx, senderID); err != nil {
		return models.ChatMessage{}, err
	}

	// sender lock first, then the auction lock, so a close or cancel cannot slip
	// between the active check and the insert
	unlockSender := s.chatLocks.Lock(auctionID + "\x00" + senderID)
	defer unlockSender()
	unlock := s.auctionLocks.Lock(auctionID)
	auction, transition, err := s.advanceLocked(ctx, auctionID, now)
	if err != nil {
		unlock()
		return models.ChatMessage{}, err
	}
	msg, rejected, err := s.recordMessageLocked(ctx, auction, senderID, text, now)
	unlock()

	s.emit(transition)
	if rejected != "" {
		s.rejectChat(auctionID, senderID, now, rejected)
	}
	if err != nil {
		return models.ChatMessage{}, err
	}

	s.metrics.ChatAttempt("accepted")
	s.events.LogEvent(events.Event{
		Kind:      events.ChatPosted,
		AuctionID: auctionID,
		UserID:    senderID,
		At:        now,
		Metadata:  map[string]any{"message_id": msg.MessageID},
	})
	return msg, nil
}

// recordMessageLocked runs under the auction lock. rejected names the policy that refused the message.
func (s *BiddingService) recordMessageLocked(ctx context.Context, auction models.Auction, senderID, text string, now time.Time) (msg models.ChatMessage, rejected string, err error) {
	auctionID := auction.AuctionID
	if !statemachine.AcceptingBids(auction, now) {
		return models.ChatMessage{}, "inactive", biddingerrors.Validation(biddingerrors.ErrAuctionNotActive,
			"chat is closed while the auction is %s", statemachine.StatusAt(auction, now))
	}

	last, err := s.repo.GetLastMessage(ctx, auctionID, senderID)
	switch {
	case errors.Is(err, biddingerrors.ErrNoMessages):
	case err != nil:
		return models.ChatMessage{}, "", fmt.Errorf("service: failed to read last message of %s in auction %s: %w", senderID, auctionID, err)
	case last.Text == text && now.Sub(last.CreatedAt) < s.chatWindow:
		return models.ChatMessage{}, "duplicate", biddingerrors.Conflict(biddingerrors.ErrDuplicateMessage,
			"duplicate message, wait %s before sending it again", s.chatWindow)
	}

	msg = models.ChatMessage{
		MessageID: utils.NewID(),
		AuctionID: auctionID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: now,
	}
	if err := s.repo.RecordMessage(ctx, msg); err != nil {
		if errors.Is(err, biddingerrors.ErrAuctionNotFound) {
			return models.ChatMessage{}, "", biddingerrors.NotFound(biddingerrors.ErrAuctionNotFound, "auction %s not found", auctionID)
		}
		return models.ChatMessage{}, "", fmt.Errorf("service: failed to record message in auction %s: %w", auctionID, err)
	}
	return msg, "", nil
}

func (s *BiddingService) rejectChat(auctionID, senderID string, now time.Time, reason string) {
	s.metrics.ChatAttempt(reason)
	s.events.LogEvent(events.Event{
		Kind:      events.ChatRejected,
		AuctionID: auctionID,
		UserID:    senderID,
		At:        now,
		Metadata:  map[string]any{"reason": reason},
	})
}

// Messages returns the latest chat messages of an auction in chronological order.
func (s *BiddingService) Messages(ctx context.Context, auctionID string) ([]models.ChatMessage, error) {
	if _, err := s.loadAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	msgs, err := s.repo.GetMessages(ctx, auctionID, s.chatLimit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get messages for auction %s: %w", auctionID, err)
	}
	return msgs, nil
}
