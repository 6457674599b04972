package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. All prices are integers in the smallest
// unit of the configured currency.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id                  INTEGER PRIMARY KEY,
    username            TEXT NOT NULL,
    email               TEXT NOT NULL UNIQUE,
    password_hash       TEXT NOT NULL,
    institution         TEXT NOT NULL,
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    reset_token         TEXT,
    reset_token_expires DATETIME
);

CREATE TABLE IF NOT EXISTS items (
    id               INTEGER PRIMARY KEY,
    seller_id        INTEGER NOT NULL REFERENCES users(id),
    title            TEXT NOT NULL,
    description      TEXT NOT NULL,
    category         TEXT NOT NULL,
    institution      TEXT NOT NULL,
    starting_price   INTEGER NOT NULL CHECK (starting_price > 0),
    is_auction       INTEGER NOT NULL DEFAULT 0,
    auction_end_time DATETIME,
    sold             INTEGER NOT NULL DEFAULT 0,
    final_price      INTEGER,
    image            BLOB,
    image_mime       TEXT,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_seller ON items(seller_id);

CREATE TABLE IF NOT EXISTS bids (
    id        INTEGER PRIMARY KEY,
    item_id   INTEGER NOT NULL REFERENCES items(id),
    bidder_id INTEGER NOT NULL REFERENCES users(id),
    amount    INTEGER NOT NULL CHECK (amount > 0),
    placed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_bids_item ON bids(item_id);
CREATE INDEX IF NOT EXISTS idx_bids_bidder ON bids(bidder_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
