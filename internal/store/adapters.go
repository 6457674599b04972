package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jaydbrown/bidit/internal/model"
)

// ItemStore adapts the item queries to the auction engine's interfaces.
type ItemStore struct {
	DB *sql.DB
}

func (s ItemStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	return GetItem(ctx, s.DB, id)
}

func (s ItemStore) SettleExpired(ctx context.Context, now time.Time) (int64, error) {
	return SettleExpiredAuctions(ctx, s.DB, now)
}

// BidStore adapts the bid ledger queries to the auction engine's interfaces.
type BidStore struct {
	DB *sql.DB
}

func (s BidStore) HighestBid(ctx context.Context, itemID int64) (int64, bool, error) {
	return GetHighestBid(ctx, s.DB, itemID)
}

func (s BidStore) Append(ctx context.Context, itemID, bidderID, amount int64) (*model.Bid, error) {
	return AppendBid(ctx, s.DB, itemID, bidderID, amount)
}

func (s BidStore) ListByItem(ctx context.Context, itemID int64) ([]model.Bid, error) {
	return ListBidsByItem(ctx, s.DB, itemID)
}

func (s BidStore) CountByBidder(ctx context.Context, bidderID int64) (int64, error) {
	return CountBidsByBidder(ctx, s.DB, bidderID)
}
