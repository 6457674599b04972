package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jaydbrown/bidit/internal/db"
	"github.com/jaydbrown/bidit/internal/model"
)

func testUser(t *testing.T, database *sql.DB, username, institution string) *model.User {
	t.Helper()
	user, err := CreateUser(context.Background(), database, username, username+"@example.com", "hash", institution)
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
	return user
}

func testAuction(t *testing.T, database *sql.DB, sellerID, startingPrice int64, end time.Time) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, sellerID,
		"Mountain Bike", "Front suspension", "sports", startingPrice, true, &end)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

func testSale(t *testing.T, database *sql.DB, sellerID, price int64, title, category string) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, sellerID,
		title, "Good condition", category, price, false, nil)
	if err != nil {
		t.Fatalf("CreateItem(%q): %v", title, err)
	}
	return item
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return db.NewTestDB(t)
}
