package bidding

import (
	"auction-house/internal/biddingerrors"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func activeAuction() model.Auction {
	return model.Auction{
		AuctionID:     "auction1",
		ItemID:        "item1",
		StartTime:     t0,
		EndTime:       t0.Add(time.Hour),
		StartingPrice: 1000,
		MinIncrement:  100,
		Status:        model.StatusActive,
	}
}

// Tests PlaceBid against a mocked repository
func TestBiddingService_PlaceBid(t *testing.T) {
	t.Parallel()

	user := model.User{UserID: "user1", Username: "ana"}
	now := t0.Add(10 * time.Second)

	// Table-driven test cases
	tests := []struct {
		name          string
		auctionID     string
		userID        string
		amount        int64
		mockSetup     func(m *repository.MockAuctionDB)
		expectError   bool
		expectedError error
		expectedKind  biddingerrors.Kind
	}{
		{
			name:      "valid_first_bid",
			auctionID: "auction1",
			userID:    "user1",
			amount:    1100,
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetUser(gomock.Any(), "user1").Return(user, nil)
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(activeAuction(), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "auction1").Return(model.Bid{}, biddingerrors.ErrNoBids).Times(2)
				m.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:          "empty_auctionID",
			auctionID:     "",
			userID:        "user1",
			amount:        1100,
			mockSetup:     func(m *repository.MockAuctionDB) {},
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
			expectedKind:  biddingerrors.KindValidation,
		},
		{
			name:          "empty_userID",
			auctionID:     "auction1",
			userID:        " ",
			amount:        1100,
			mockSetup:     func(m *repository.MockAuctionDB) {},
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
			expectedKind:  biddingerrors.KindValidation,
		},
		{
			name:      "unknown_user",
			auctionID: "auction1",
			userID:    "ghost",
			amount:    1100,
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetUser(gomock.Any(), "ghost").Return(model.User{}, biddingerrors.ErrUserNotFound)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrUserNotFound,
			expectedKind:  biddingerrors.KindNotFound,
		},
		{
			name:      "unknown_auction",
			auctionID: "nope",
			userID:    "user1",
			amount:    1100,
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetUser(gomock.Any(), "user1").Return(user, nil)
				m.EXPECT().GetAuction(gomock.Any(), "nope").Return(model.Auction{}, biddingerrors.ErrAuctionNotFound)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrAuctionNotFound,
			expectedKind:  biddingerrors.KindNotFound,
		},
		{
			name:      "zero_amount",
			auctionID: "auction1",
			userID:    "user1",
			amount:    0,
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetUser(gomock.Any(), "user1").Return(user, nil)
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(activeAuction(), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "auction1").Return(model.Bid{}, biddingerrors.ErrNoBids)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
			expectedKind:  biddingerrors.KindValidation,
		},
		{
			name:      "bid_too_low",
			auctionID: "auction1",
			userID:    "user1",
			amount:    1150,
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetUser(gomock.Any(), "user1").Return(user, nil)
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(activeAuction(), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "auction1").Return(model.Bid{BidderID: "user2", Amount: 1100}, nil).Times(2)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrBidTooLow,
			expectedKind:  biddingerrors.KindValidation,
		},
		{
			name:      "duplicate_triple_lost_race",
			auctionID: "auction1",
			userID:    "user1",
			amount:    1200,
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetUser(gomock.Any(), "user1").Return(user, nil)
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(activeAuction(), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "auction1").Return(model.Bid{BidderID: "user2", Amount: 1100}, nil).Times(2)
				m.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(biddingerrors.ErrDuplicateBid)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrDuplicateBid,
			expectedKind:  biddingerrors.KindConflict,
		},
		{
			name:      "repo_fails",
			auctionID: "auction1",
			userID:    "user1",
			amount:    1200,
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetUser(gomock.Any(), "user1").Return(user, nil)
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(activeAuction(), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "auction1").Return(model.Bid{BidderID: "user2", Amount: 1100}, nil).Times(2)
				m.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(errors.New("repo write failed"))
			},
			expectError:  true,
			expectedKind: biddingerrors.KindInternal,
		},
		{
			name:      "state_refreshed_before_validation",
			auctionID: "auction1",
			userID:    "user1",
			amount:    1100,
			mockSetup: func(m *repository.MockAuctionDB) {
				stale := activeAuction()
				stale.Status = model.StatusInPreparation
				m.EXPECT().GetUser(gomock.Any(), "user1").Return(user, nil)
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(stale, nil)
				m.EXPECT().UpdateAuction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a model.Auction) error {
					if a.Status != model.StatusActive {
						return errors.New("status was not refreshed before persisting")
					}
					return nil
				})
				m.EXPECT().GetWinningBid(gomock.Any(), "auction1").Return(model.Bid{}, biddingerrors.ErrNoBids).Times(2)
				m.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run tests concurrently

			ctrl := gomock.NewController(t)
			mockRepo := repository.NewMockAuctionDB(ctrl)
			service := NewBiddingService(mockRepo, Options{})
			tc.mockSetup(mockRepo)

			bid, err := service.PlaceBid(context.Background(), tc.auctionID, tc.userID, tc.amount, now, "10.0.0.1")

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
				require.Equal(t, tc.expectedKind, biddingerrors.KindOf(err))
				return
			}
			require.NoError(t, err)

			// Validate generated BidID
			require.NotEmpty(t, bid.BidID)
			_, parseErr := uuid.Parse(bid.BidID)
			require.NoError(t, parseErr, "BidID should be a valid UUID")

			require.Equal(t, tc.auctionID, bid.AuctionID)
			require.Equal(t, tc.userID, bid.BidderID)
			require.Equal(t, tc.amount, bid.Amount)
			require.Equal(t, now, bid.CreatedAt)
			require.Equal(t, "10.0.0.1", bid.Origin)
			require.True(t, bid.Active)
		})
	}
}

// Tests GetWinningBid
func TestBiddingService_GetWinningBid(t *testing.T) {
	t.Parallel()

	now := t0.Add(time.Minute)
	winning := model.Bid{BidID: "bid2", AuctionID: "auction1", BidderID: "user2", Amount: 1500}

	tests := []struct {
		name          string
		mockSetup     func(m *repository.MockAuctionDB)
		expectedBid   model.Bid
		expectedError error
	}{
		{
			name: "auction_with_bids",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(activeAuction(), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "auction1").Return(winning, nil)
			},
			expectedBid: winning,
		},
		{
			name: "auction_no_bids",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(activeAuction(), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "auction1").Return(model.Bid{}, biddingerrors.ErrNoBids)
			},
			expectedError: biddingerrors.ErrNoBids,
		},
		{
			name: "auction_not_found",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(model.Auction{}, biddingerrors.ErrAuctionNotFound)
			},
			expectedError: biddingerrors.ErrAuctionNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockRepo := repository.NewMockAuctionDB(ctrl)
			service := NewBiddingService(mockRepo, Options{})
			tc.mockSetup(mockRepo)

			bid, err := service.GetWinningBid(context.Background(), "auction1", now)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				require.Equal(t, biddingerrors.KindNotFound, biddingerrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectedBid, bid)
		})
	}
}

// Tests GetAuctionsByUser
func TestBiddingService_GetAuctionsByUser(t *testing.T) {
	t.Parallel()

	auctions := []model.Auction{activeAuction()}

	tests := []struct {
		name          string
		userID        string
		mockSetup     func(m *repository.MockAuctionDB)
		expected      []model.Auction
		expectError   bool
		expectedError error
	}{
		{
			name:   "user_with_bids",
			userID: "user1",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetAuctionsByUser(gomock.Any(), "user1").Return(auctions, nil)
			},
			expected: auctions,
		},
		{
			name:   "user_without_bids",
			userID: "user2",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetAuctionsByUser(gomock.Any(), "user2").Return(nil, biddingerrors.ErrUserNoBids)
			},
			expected: []model.Auction{},
		},
		{
			name:          "empty_userID",
			userID:        "",
			mockSetup:     func(m *repository.MockAuctionDB) {},
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:   "repo_fails",
			userID: "user3",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetAuctionsByUser(gomock.Any(), "user3").Return(nil, errors.New("db down"))
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockRepo := repository.NewMockAuctionDB(ctrl)
			service := NewBiddingService(mockRepo, Options{})
			tc.mockSetup(mockRepo)

			got, err := service.GetAuctionsByUser(context.Background(), tc.userID)
			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.ErrorIs(t, err, tc.expectedError)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestBiddingService_AdvanceState_PersistFailureLeavesNoEvent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewBiddingService(mockRepo, Options{})

	mockRepo.EXPECT().GetAuction(gomock.Any(), "auction1").Return(activeAuction(), nil)
	mockRepo.EXPECT().GetWinningBid(gomock.Any(), "auction1").Return(model.Bid{BidderID: "user2", Amount: 1500}, nil)
	mockRepo.EXPECT().UpdateAuction(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	ev, err := service.AdvanceState(context.Background(), "auction1", t0.Add(2*time.Hour))
	require.Error(t, err)
	require.Nil(t, ev)
	require.Equal(t, biddingerrors.KindInternal, biddingerrors.KindOf(err))
}

func TestBiddingService_AdvanceState_InvalidScheduleIsInvariant(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewBiddingService(mockRepo, Options{})

	broken := activeAuction()
	broken.EndTime = broken.StartTime
	mockRepo.EXPECT().GetAuction(gomock.Any(), "auction1").Return(broken, nil)

	_, err := service.AdvanceState(context.Background(), "auction1", t0)
	require.ErrorIs(t, err, biddingerrors.ErrInvalidSchedule)
	require.Equal(t, biddingerrors.KindStateInvariant, biddingerrors.KindOf(err))
	require.False(t, biddingerrors.IsRejection(err))
}
