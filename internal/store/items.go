package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jaydbrown/bidit/internal/model"
)

// ErrItemHasBids is returned when deleting an item whose ledger is non-empty.
var ErrItemHasBids = errors.New("cannot delete an item with bids")

const itemColumns = `i.id, i.seller_id, i.title, i.description, i.category, i.institution,
	        i.starting_price, i.is_auction, i.auction_end_time, i.sold, i.final_price,
	        i.image_mime, i.created_at, i.updated_at, u.username AS seller_username`

// CreateItem creates a new listing. The institution is copied from the seller
// so listings stay searchable by campus even if the seller later edits their
// profile. endTime must be non-nil iff the item is an auction.
func CreateItem(ctx context.Context, db *sql.DB, sellerID int64, title, description, category string, startingPrice int64, isAuction bool, endTime *time.Time) (*model.Item, error) {
	var institution string
	err := db.QueryRowContext(ctx,
		`SELECT institution FROM users WHERE id = ?`, sellerID,
	).Scan(&institution)
	if err != nil {
		return nil, fmt.Errorf("getting seller institution: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (seller_id, title, description, category, institution,
		                    starting_price, is_auction, auction_end_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sellerID, title, description, category, institution, startingPrice, isAuction, endTime,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID with its seller's username.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i LEFT JOIN users u ON u.id = i.seller_id
		 WHERE i.id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// SearchItems returns listings matching the filter, newest first.
func SearchItems(ctx context.Context, db *sql.DB, f model.ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + `
	          FROM items i LEFT JOIN users u ON u.id = i.seller_id
	          WHERE 1=1`
	var args []any

	if f.IsAuction != nil {
		query += ` AND i.is_auction = ?`
		args = append(args, *f.IsAuction)
	}
	if f.Institution != "" {
		query += ` AND i.institution LIKE ? COLLATE NOCASE`
		args = append(args, "%"+f.Institution+"%")
	}
	if f.Category != "" {
		query += ` AND i.category LIKE ? COLLATE NOCASE`
		args = append(args, "%"+f.Category+"%")
	}
	if f.Search != "" {
		query += ` AND (i.title LIKE ? COLLATE NOCASE OR i.description LIKE ? COLLATE NOCASE)`
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListItemsBySeller returns all listings by a seller, newest first.
func ListItemsBySeller(ctx context.Context, db *sql.DB, sellerID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i LEFT JOIN users u ON u.id = i.seller_id
		 WHERE i.seller_id = ?
		 ORDER BY i.created_at DESC, i.id DESC`, sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items by seller: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpdateItem updates a listing's editable fields. The auction flag, seller and
// sold state are never updatable. endTime is only applied when non-nil.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, upd model.ItemUpdate) error {
	query := `UPDATE items SET title = ?, description = ?, category = ?,
	              starting_price = ?, updated_at = CURRENT_TIMESTAMP`
	args := []any{upd.Title, upd.Description, upd.Category, upd.StartingPrice}

	if upd.AuctionEndTime != nil {
		query += `, auction_end_time = ?`
		args = append(args, *upd.AuctionEndTime)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem removes a listing. Items with bids cannot be deleted: the bid
// ledger is append-only.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var bidCount int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bids WHERE item_id = ?`, id,
	).Scan(&bidCount)
	if err != nil {
		return fmt.Errorf("checking item bids: %w", err)
	}
	if bidCount > 0 {
		return ErrItemHasBids
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item deletion: %w", err)
	}
	return nil
}

// ItemHasBids reports whether any bid references the item.
func ItemHasBids(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bids WHERE item_id = ?`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking item bids: %w", err)
	}
	return count > 0, nil
}

// SetItemImage sets a listing's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns a listing's image data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// SettleExpiredAuctions finalizes every expired, unsold auction that has at
// least one bid: sold and final_price are set together from the ledger in a
// single statement, so the transition happens exactly once. Returns the
// number of settled auctions.
func SettleExpiredAuctions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET
		     sold = 1,
		     final_price = (SELECT MAX(amount) FROM bids WHERE item_id = items.id),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE is_auction = 1
		   AND sold = 0
		   AND auction_end_time IS NOT NULL
		   AND auction_end_time <= ?
		   AND EXISTS (SELECT 1 FROM bids WHERE item_id = items.id)`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("settling expired auctions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting settled auctions: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var endTime sql.NullTime
	var finalPrice sql.NullInt64
	var imageMime, sellerUsername sql.NullString
	err := row.Scan(&item.ID, &item.SellerID, &item.Title, &item.Description, &item.Category,
		&item.Institution, &item.StartingPrice, &item.IsAuction, &endTime, &item.Sold,
		&finalPrice, &imageMime, &item.CreatedAt, &item.UpdatedAt, &sellerUsername)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		t := endTime.Time
		item.AuctionEndTime = &t
	}
	if finalPrice.Valid {
		p := finalPrice.Int64
		item.FinalPrice = &p
	}
	item.ImageMime = imageMime.String
	item.SellerUsername = sellerUsername.String
	return item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
