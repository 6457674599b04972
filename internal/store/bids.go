package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jaydbrown/bidit/internal/model"
)

// AppendBid appends a bid to an item's ledger in a single transaction.
// The strictly-increasing invariant is re-checked inside the transaction, so
// the ledger stays consistent even if another process writes to the same
// database.
func AppendBid(ctx context.Context, db *sql.DB, itemID, bidderID, amount int64) (*model.Bid, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Acquire the write lock early so the max-read and insert are atomic.
	if _, err := tx.ExecContext(ctx, "SELECT 1"); err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}

	var highest sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT MAX(amount) FROM bids WHERE item_id = ?`, itemID,
	).Scan(&highest)
	if err != nil {
		return nil, fmt.Errorf("checking highest bid: %w", err)
	}
	if highest.Valid && amount <= highest.Int64 {
		return nil, fmt.Errorf("bid %d does not exceed current highest %d", amount, highest.Int64)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO bids (item_id, bidder_id, amount) VALUES (?, ?, ?)`,
		itemID, bidderID, amount,
	)
	if err != nil {
		return nil, fmt.Errorf("appending bid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing bid: %w", err)
	}

	bidID, _ := result.LastInsertId()
	return GetBid(ctx, db, bidID)
}

// GetBid returns a bid by ID with the bidder's username.
func GetBid(ctx context.Context, db *sql.DB, id int64) (*model.Bid, error) {
	b := &model.Bid{}
	var username sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT b.id, b.item_id, b.bidder_id, b.amount, b.placed_at, u.username
		 FROM bids b LEFT JOIN users u ON u.id = b.bidder_id
		 WHERE b.id = ?`, id,
	).Scan(&b.ID, &b.ItemID, &b.BidderID, &b.Amount, &b.PlacedAt, &username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting bid: %w", err)
	}
	b.BidderUsername = username.String
	return b, nil
}

// GetHighestBid returns the maximum bid amount for an item.
// ok is false if the item has no bids.
func GetHighestBid(ctx context.Context, db *sql.DB, itemID int64) (int64, bool, error) {
	var highest sql.NullInt64
	err := db.QueryRowContext(ctx,
		`SELECT MAX(amount) FROM bids WHERE item_id = ?`, itemID,
	).Scan(&highest)
	if err != nil {
		return 0, false, fmt.Errorf("getting highest bid: %w", err)
	}
	return highest.Int64, highest.Valid, nil
}

// ListBidsByItem returns an item's bids, newest first. Ties on placement time
// fall back to insertion order.
func ListBidsByItem(ctx context.Context, db *sql.DB, itemID int64) ([]model.Bid, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT b.id, b.item_id, b.bidder_id, b.amount, b.placed_at, u.username
		 FROM bids b LEFT JOIN users u ON u.id = b.bidder_id
		 WHERE b.item_id = ?
		 ORDER BY b.placed_at DESC, b.id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing bids: %w", err)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		var username sql.NullString
		if err := rows.Scan(&b.ID, &b.ItemID, &b.BidderID, &b.Amount, &b.PlacedAt, &username); err != nil {
			return nil, fmt.Errorf("scanning bid: %w", err)
		}
		b.BidderUsername = username.String
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// CountBidsByBidder returns how many bids a user has placed across all items.
func CountBidsByBidder(ctx context.Context, db *sql.DB, bidderID int64) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bids WHERE bidder_id = ?`, bidderID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting bids: %w", err)
	}
	return count, nil
}
