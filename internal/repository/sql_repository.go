package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"auction-house/internal/biddingerrors"
	model "auction-house/internal/models"
)

// SQLRepo implements AuctionDB on top of bun. It works with the postgres and sqlite dialects.
type SQLRepo struct {
	db *bun.DB
}

// NewSQLRepo wires a repository backed by an open bun connection.
func NewSQLRepo(db *bun.DB) *SQLRepo {
	return &SQLRepo{db: db}
}

// AddUser inserts a user or updates its profile fields
func (r *SQLRepo) AddUser(ctx context.Context, user model.User) error {
	_, err := r.db.NewInsert().Model(&user).
		On("CONFLICT (user_id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("email = EXCLUDED.email").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("add user %s: %w", user.UserID, err)
	}
	return nil
}

// AddItem inserts a catalog item or updates it
func (r *SQLRepo) AddItem(ctx context.Context, item model.Item) error {
	_, err := r.db.NewInsert().Model(&item).
		On("CONFLICT (item_id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set("starting_price = EXCLUDED.starting_price").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("add item %s: %w", item.ItemID, err)
	}
	return nil
}

func (r *SQLRepo) GetUser(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	err := r.db.NewSelect().Model(&user).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

func (r *SQLRepo) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	var item model.Item
	err := r.db.NewSelect().Model(&item).Where("item_id = ?", itemID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, fmt.Errorf("get item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("get item %s: %w", itemID, err)
	}
	return item, nil
}

func (r *SQLRepo) CreateAuction(ctx context.Context, auction model.Auction) error {
	if _, err := r.GetItem(ctx, auction.ItemID); err != nil {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, err)
	}

	_, err := r.db.NewInsert().Model(&auction).Exec(ctx)
	if isUniqueViolation(err) {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, biddingerrors.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, err)
	}
	return nil
}

func (r *SQLRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var auction model.Auction
	err := r.db.NewSelect().Model(&auction).Where("auction_id = ?", auctionID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

func (r *SQLRepo) UpdateAuction(ctx context.Context, auction model.Auction) error {
	res, err := r.db.NewUpdate().Model(&auction).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	return nil
}

// DeleteAuction removes an auction with its bids and chat in one transaction
func (r *SQLRepo) DeleteAuction(ctx context.Context, auctionID string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*model.Bid)(nil)).Where("auction_id = ?", auctionID).Exec(ctx); err != nil {
			return fmt.Errorf("delete bids of auction %s: %w", auctionID, err)
		}
		if _, err := tx.NewDelete().Model((*model.ChatMessage)(nil)).Where("auction_id = ?", auctionID).Exec(ctx); err != nil {
			return fmt.Errorf("delete messages of auction %s: %w", auctionID, err)
		}
		res, err := tx.NewDelete().Model((*model.Auction)(nil)).Where("auction_id = ?", auctionID).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete auction %s: %w", auctionID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("delete auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
		}
		return nil
	})
}

func (r *SQLRepo) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	return r.selectAuctions(ctx, func(q *bun.SelectQuery) *bun.SelectQuery { return q })
}

func (r *SQLRepo) ListOpenAuctions(ctx context.Context) ([]model.Auction, error) {
	return r.selectAuctions(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, k := range model.TerminalKeywords() {
			q = q.Where("LOWER(status) NOT LIKE ?", "%"+k+"%")
		}
		return q
	})
}

func (r *SQLRepo) ListAuctionsEndedBefore(ctx context.Context, cutoff time.Time) ([]model.Auction, error) {
	return r.selectAuctions(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("end_time < ?", cutoff)
	})
}

func (r *SQLRepo) selectAuctions(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]model.Auction, error) {
	auctions := make([]model.Auction, 0)
	q := filter(r.db.NewSelect().Model(&auctions)).Order("start_time DESC", "auction_id ASC")
	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return auctions, nil
}

// RecordBid inserts a bid. A repeated (auction, bidder, amount) triple is rejected by the unique index.
func (r *SQLRepo) RecordBid(ctx context.Context, bid model.Bid) error {
	exists, err := r.db.NewSelect().Model((*model.Auction)(nil)).Where("auction_id = ?", bid.AuctionID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
	}
	if !exists {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
	}

	_, err = r.db.NewInsert().Model(&bid).Exec(ctx)
	if isUniqueViolation(err) {
		return fmt.Errorf("record bid for auction %s by user %s: %w", bid.AuctionID, bid.BidderID, biddingerrors.ErrDuplicateBid)
	}
	if err != nil {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
	}
	return nil
}

func (r *SQLRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	var bids []model.Bid
	err := r.db.NewSelect().Model(&bids).
		Where("auction_id = ?", auctionID).
		Order("created_at DESC", "amount DESC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, biddingerrors.ErrNoBids)
	}
	return bids, nil
}

func (r *SQLRepo) GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error) {
	var bid model.Bid
	err := r.db.NewSelect().Model(&bid).
		Where("auction_id = ?", auctionID).
		Order("amount DESC", "created_at ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, biddingerrors.ErrNoBids)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, err)
	}
	return bid, nil
}

func (r *SQLRepo) CountBids(ctx context.Context, auctionID string) (int, error) {
	n, err := r.db.NewSelect().Model((*model.Bid)(nil)).Where("auction_id = ?", auctionID).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count bids for auction %s: %w", auctionID, err)
	}
	return n, nil
}

func (r *SQLRepo) GetAuctionsByUser(ctx context.Context, userID string) ([]model.Auction, error) {
	sub := r.db.NewSelect().Model((*model.Bid)(nil)).Column("auction_id").Where("bidder_id = ?", userID)

	var auctions []model.Auction
	err := r.db.NewSelect().Model(&auctions).
		Where("auction_id IN (?)", sub).
		Order("start_time DESC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get auctions for user %s: %w", userID, err)
	}
	if len(auctions) == 0 {
		return nil, fmt.Errorf("get auctions for user %s: %w", userID, biddingerrors.ErrUserNoBids)
	}
	return auctions, nil
}

func (r *SQLRepo) RecordMessage(ctx context.Context, msg model.ChatMessage) error {
	exists, err := r.db.NewSelect().Model((*model.Auction)(nil)).Where("auction_id = ?", msg.AuctionID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("record message for auction %s: %w", msg.AuctionID, err)
	}
	if !exists {
		return fmt.Errorf("record message for auction %s: %w", msg.AuctionID, biddingerrors.ErrAuctionNotFound)
	}

	if _, err := r.db.NewInsert().Model(&msg).Exec(ctx); err != nil {
		return fmt.Errorf("record message for auction %s: %w", msg.AuctionID, err)
	}
	return nil
}

func (r *SQLRepo) GetLastMessage(ctx context.Context, auctionID, senderID string) (model.ChatMessage, error) {
	var msg model.ChatMessage
	err := r.db.NewSelect().Model(&msg).
		Where("auction_id = ?", auctionID).
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ChatMessage{}, fmt.Errorf("get last message of %s in auction %s: %w", senderID, auctionID, biddingerrors.ErrNoMessages)
	}
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("get last message of %s in auction %s: %w", senderID, auctionID, err)
	}
	return msg, nil
}

// GetMessages returns up to limit most recent messages in chronological order
func (r *SQLRepo) GetMessages(ctx context.Context, auctionID string, limit int) ([]model.ChatMessage, error) {
	msgs := make([]model.ChatMessage, 0)
	q := r.db.NewSelect().Model(&msgs).
		Where("auction_id = ?", auctionID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get messages for auction %s: %w", auctionID, err)
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
