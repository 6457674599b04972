package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaydbrown/bidit/internal/model"
)

func TestCreateItemCopiesSellerInstitution(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", "UNILAG")
	item := testSale(t, database, seller.ID, 500, "Desk Lamp", "furniture")

	if item.Institution != "UNILAG" {
		t.Errorf("expected institution UNILAG, got %q", item.Institution)
	}
	if item.SellerUsername != "seller" {
		t.Errorf("expected seller_username joined, got %q", item.SellerUsername)
	}

	// Listings keep the campus they were posted from.
	if err := UpdateUser(ctx, database, seller.ID, "", "", "UI"); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	again, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if again.Institution != "UNILAG" {
		t.Errorf("expected listing institution unchanged, got %q", again.Institution)
	}
}

func TestCreateAuctionItem(t *testing.T) {
	database := newTestDB(t)

	seller := testUser(t, database, "seller", "UNILAG")
	end := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	item := testAuction(t, database, seller.ID, 1000, end)

	if !item.IsAuction {
		t.Error("expected auction item")
	}
	if item.AuctionEndTime == nil || !item.AuctionEndTime.Equal(end) {
		t.Errorf("expected end time %v, got %v", end, item.AuctionEndTime)
	}
	if item.Sold {
		t.Error("new item must not be sold")
	}
	if item.FinalPrice != nil {
		t.Error("new item must not have a final price")
	}
}

func TestGetItemMissing(t *testing.T) {
	database := newTestDB(t)

	item, err := GetItem(context.Background(), database, 42)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil for unknown item, got %+v", item)
	}
}

func TestSearchItems(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	lagos := testUser(t, database, "lagos_seller", "UNILAG")
	ibadan := testUser(t, database, "ibadan_seller", "UI")

	testSale(t, database, lagos.ID, 500, "Desk Lamp", "furniture")
	testSale(t, database, lagos.ID, 2500, "Physics Textbook", "books")
	testSale(t, database, ibadan.ID, 900, "Study Lamp", "furniture")
	testAuction(t, database, lagos.ID, 1000, time.Now().Add(time.Hour))

	all, err := SearchItems(ctx, database, model.ItemFilter{})
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 items, got %d", len(all))
	}

	auctions := true
	onlyAuctions, err := SearchItems(ctx, database, model.ItemFilter{IsAuction: &auctions})
	if err != nil {
		t.Fatalf("SearchItems(auctions): %v", err)
	}
	if len(onlyAuctions) != 1 || !onlyAuctions[0].IsAuction {
		t.Errorf("expected 1 auction, got %d", len(onlyAuctions))
	}

	byCampus, err := SearchItems(ctx, database, model.ItemFilter{Institution: "ui"})
	if err != nil {
		t.Fatalf("SearchItems(institution): %v", err)
	}
	if len(byCampus) != 1 || byCampus[0].Institution != "UI" {
		t.Errorf("expected 1 UI item, got %d", len(byCampus))
	}

	byCategory, err := SearchItems(ctx, database, model.ItemFilter{Category: "furniture"})
	if err != nil {
		t.Fatalf("SearchItems(category): %v", err)
	}
	if len(byCategory) != 2 {
		t.Errorf("expected 2 furniture items, got %d", len(byCategory))
	}

	bySearch, err := SearchItems(ctx, database, model.ItemFilter{Search: "lamp"})
	if err != nil {
		t.Fatalf("SearchItems(search): %v", err)
	}
	if len(bySearch) != 2 {
		t.Errorf("expected 2 lamp matches, got %d", len(bySearch))
	}

	combined, err := SearchItems(ctx, database, model.ItemFilter{Search: "lamp", Institution: "UNILAG"})
	if err != nil {
		t.Fatalf("SearchItems(combined): %v", err)
	}
	if len(combined) != 1 || combined[0].Title != "Desk Lamp" {
		t.Errorf("expected only the UNILAG lamp, got %d matches", len(combined))
	}
}

func TestListItemsBySeller(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", "UNILAG")
	other := testUser(t, database, "other", "UNILAG")
	testSale(t, database, seller.ID, 500, "Desk Lamp", "furniture")
	testSale(t, database, seller.ID, 900, "Kettle", "kitchen")
	testSale(t, database, other.ID, 100, "Notebook", "books")

	items, err := ListItemsBySeller(ctx, database, seller.ID)
	if err != nil {
		t.Fatalf("ListItemsBySeller: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, item := range items {
		if item.SellerID != seller.ID {
			t.Errorf("unexpected seller %d on item %d", item.SellerID, item.ID)
		}
	}
}

func TestUpdateItem(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", "UNILAG")
	item := testSale(t, database, seller.ID, 500, "Desk Lamp", "furniture")

	err := UpdateItem(ctx, database, item.ID, model.ItemUpdate{
		Title:         "Desk Lamp (white)",
		Description:   "Good condition",
		Category:      "furniture",
		StartingPrice: 450,
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	updated, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if updated.Title != "Desk Lamp (white)" || updated.StartingPrice != 450 {
		t.Errorf("unexpected item after update: %+v", updated)
	}
	if updated.AuctionEndTime != nil {
		t.Error("nil end time in update must not set one")
	}
}

func TestDeleteItemWithBids(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", "UNILAG")
	bidder := testUser(t, database, "bidder", "UNILAG")
	item := testAuction(t, database, seller.ID, 1000, time.Now().Add(time.Hour))

	if _, err := AppendBid(ctx, database, item.ID, bidder.ID, 1000); err != nil {
		t.Fatalf("AppendBid: %v", err)
	}

	if err := DeleteItem(ctx, database, item.ID); !errors.Is(err, ErrItemHasBids) {
		t.Errorf("expected ErrItemHasBids, got %v", err)
	}

	// Still there.
	still, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if still == nil {
		t.Error("item with bids must not be deleted")
	}
}

func TestDeleteItemWithoutBids(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", "UNILAG")
	item := testSale(t, database, seller.ID, 500, "Desk Lamp", "furniture")

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	gone, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if gone != nil {
		t.Errorf("expected nil after delete, got %+v", gone)
	}
}

func TestItemImageRoundTrip(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", "UNILAG")
	item := testSale(t, database, seller.ID, 500, "Desk Lamp", "furniture")

	data := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	if err := SetItemImage(ctx, database, item.ID, data, "image/jpeg"); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}

	got, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", mime)
	}
	if len(got) != len(data) {
		t.Errorf("expected %d bytes, got %d", len(data), len(got))
	}
}

func TestSettleExpiredAuctions(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", "UNILAG")
	bidder := testUser(t, database, "bidder", "UNILAG")

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expiredWithBids := testAuction(t, database, seller.ID, 1000, past)
	expiredNoBids := testAuction(t, database, seller.ID, 1000, past)
	stillOpen := testAuction(t, database, seller.ID, 1000, future)
	plainSale := testSale(t, database, seller.ID, 500, "Desk Lamp", "furniture")

	for _, amount := range []int64{1000, 1200, 1500} {
		if _, err := AppendBid(ctx, database, expiredWithBids.ID, bidder.ID, amount); err != nil {
			t.Fatalf("AppendBid(%d): %v", amount, err)
		}
	}
	if _, err := AppendBid(ctx, database, stillOpen.ID, bidder.ID, 1000); err != nil {
		t.Fatalf("AppendBid(open): %v", err)
	}

	n, err := SettleExpiredAuctions(ctx, database, time.Now())
	if err != nil {
		t.Fatalf("SettleExpiredAuctions: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 settled auction, got %d", n)
	}

	settled, err := GetItem(ctx, database, expiredWithBids.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if !settled.Sold {
		t.Error("expired auction with bids must be sold")
	}
	if settled.FinalPrice == nil || *settled.FinalPrice != 1500 {
		t.Errorf("expected final price 1500, got %v", settled.FinalPrice)
	}

	for _, tc := range []struct {
		name string
		id   int64
	}{
		{"expired without bids", expiredNoBids.ID},
		{"still open", stillOpen.ID},
		{"plain sale", plainSale.ID},
	} {
		item, err := GetItem(ctx, database, tc.id)
		if err != nil {
			t.Fatalf("GetItem(%s): %v", tc.name, err)
		}
		if item.Sold || item.FinalPrice != nil {
			t.Errorf("%s must stay unsold, got sold=%v final=%v", tc.name, item.Sold, item.FinalPrice)
		}
	}

	// A second sweep finds nothing: the transition happens exactly once.
	again, err := SettleExpiredAuctions(ctx, database, time.Now())
	if err != nil {
		t.Fatalf("SettleExpiredAuctions(again): %v", err)
	}
	if again != 0 {
		t.Errorf("expected idempotent sweep, got %d", again)
	}
}

func TestItemHasBids(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", "UNILAG")
	bidder := testUser(t, database, "bidder", "UNILAG")
	item := testAuction(t, database, seller.ID, 1000, time.Now().Add(time.Hour))

	has, err := ItemHasBids(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ItemHasBids: %v", err)
	}
	if has {
		t.Error("expected no bids yet")
	}

	if _, err := AppendBid(ctx, database, item.ID, bidder.ID, 1000); err != nil {
		t.Fatalf("AppendBid: %v", err)
	}

	has, err = ItemHasBids(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ItemHasBids: %v", err)
	}
	if !has {
		t.Error("expected bids after append")
	}
}
