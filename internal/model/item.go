package model

import "time"

// Item represents a marketplace listing. Monetary amounts are integers in the
// smallest unit of the configured currency.
type Item struct {
	ID             int64      `json:"id"`
	SellerID       int64      `json:"seller_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Institution    string     `json:"institution"`
	StartingPrice  int64      `json:"starting_price"`
	IsAuction      bool       `json:"is_auction"`
	AuctionEndTime *time.Time `json:"auction_end_time,omitempty"`
	Sold           bool       `json:"sold"`
	FinalPrice     *int64     `json:"final_price,omitempty"`
	ImageMime      string     `json:"image_mime,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Joined fields (not always populated).
	SellerUsername string `json:"seller_username,omitempty"`
}

// ItemFilter holds the optional search filters for listing items.
type ItemFilter struct {
	IsAuction   *bool
	Institution string
	Category    string
	Search      string
}

// ItemUpdate holds the allow-listed editable fields of an item. Auction flag,
// seller and sold state are deliberately absent: they are immutable or
// system-managed.
type ItemUpdate struct {
	Title          string
	Description    string
	Category       string
	StartingPrice  int64
	AuctionEndTime *time.Time
}
