package model

import "time"

// Bid is one entry in an item's append-only bid ledger. Bids are created
// exactly once at admission and never mutated or deleted.
type Bid struct {
	ID       int64     `json:"id"`
	ItemID   int64     `json:"item_id"`
	BidderID int64     `json:"bidder_id"`
	Amount   int64     `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`

	// Joined fields (not always populated).
	BidderUsername string `json:"bidder_username,omitempty"`
}
