package store

import (
	"context"
	"testing"
	"time"
)

func TestCreateAndGetUser(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	created := testUser(t, database, "jadesola", "UNILAG")

	user, err := GetUser(ctx, database, created.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Username != "jadesola" || user.Email != "jadesola@example.com" || user.Institution != "UNILAG" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestGetUserByEmail(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	testUser(t, database, "jadesola", "UNILAG")

	user, err := GetUserByEmail(ctx, database, "jadesola@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user == nil || user.Username != "jadesola" {
		t.Errorf("expected jadesola, got %+v", user)
	}

	missing, err := GetUserByEmail(ctx, database, "nobody@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown email, got %+v", missing)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	testUser(t, database, "jadesola", "UNILAG")

	_, err := CreateUser(ctx, database, "other", "jadesola@example.com", "hash", "UI")
	if err == nil {
		t.Error("expected error for duplicate email")
	}
}

func TestUpdateUserKeepsEmptyFields(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	user := testUser(t, database, "jadesola", "UNILAG")

	if err := UpdateUser(ctx, database, user.ID, "", "", "UI"); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	updated, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if updated.Username != "jadesola" || updated.Email != "jadesola@example.com" {
		t.Errorf("empty fields should be kept, got %+v", updated)
	}
	if updated.Institution != "UI" {
		t.Errorf("expected institution UI, got %q", updated.Institution)
	}
}

func TestResetTokenFlow(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	user := testUser(t, database, "jadesola", "UNILAG")
	expires := time.Now().Add(time.Hour)

	if err := SetResetToken(ctx, database, user.ID, "tok-123", expires); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}

	byToken, err := GetUserByResetToken(ctx, database, "tok-123")
	if err != nil {
		t.Fatalf("GetUserByResetToken: %v", err)
	}
	if byToken == nil || byToken.ID != user.ID {
		t.Fatalf("expected user %d by token, got %+v", user.ID, byToken)
	}
	if byToken.ResetTokenExpires == nil {
		t.Fatal("expected reset token expiry to be set")
	}

	if err := ResetPassword(ctx, database, user.ID, "newhash"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	after, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if after.PasswordHash != "newhash" {
		t.Errorf("expected new password hash, got %q", after.PasswordHash)
	}
	if after.ResetToken != "" || after.ResetTokenExpires != nil {
		t.Error("expected reset token to be cleared")
	}

	// The used token must not resolve anymore.
	gone, err := GetUserByResetToken(ctx, database, "tok-123")
	if err != nil {
		t.Fatalf("GetUserByResetToken: %v", err)
	}
	if gone != nil {
		t.Error("expected nil for cleared token")
	}
}

func TestDeleteUser(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	user := testUser(t, database, "jadesola", "UNILAG")

	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	deleted, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if deleted != nil {
		t.Errorf("expected nil after delete, got %+v", deleted)
	}
}

func TestGetProfileSellerStats(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", "UNILAG")
	buyer := testUser(t, database, "buyer", "UNILAG")

	// One settled auction, one still open.
	past := time.Now().Add(-time.Hour)
	sold := testAuction(t, database, seller.ID, 1000, past)
	open := testAuction(t, database, seller.ID, 500, time.Now().Add(time.Hour))

	if _, err := AppendBid(ctx, database, sold.ID, buyer.ID, 1500); err != nil {
		t.Fatalf("AppendBid: %v", err)
	}
	if _, err := AppendBid(ctx, database, open.ID, buyer.ID, 600); err != nil {
		t.Fatalf("AppendBid: %v", err)
	}
	if _, err := SettleExpiredAuctions(ctx, database, time.Now()); err != nil {
		t.Fatalf("SettleExpiredAuctions: %v", err)
	}

	profile, err := GetProfile(ctx, database, seller.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.ItemsSold != 1 {
		t.Errorf("expected 1 item sold, got %d", profile.ItemsSold)
	}
	if profile.Balance != 1500 {
		t.Errorf("expected balance 1500, got %d", profile.Balance)
	}
}

func TestGetProfileMissingUser(t *testing.T) {
	database := newTestDB(t)

	profile, err := GetProfile(context.Background(), database, 42)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile != nil {
		t.Errorf("expected nil profile for unknown user, got %+v", profile)
	}
}
