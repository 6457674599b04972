package model

import "time"

// User represents a registered marketplace account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Institution  string    `json:"institution"`
	CreatedAt    time.Time `json:"created_at"`

	// Password reset state, never serialized.
	ResetToken        string     `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
}

// Profile is the authenticated user's own view, including seller stats
// derived from their sold items.
type Profile struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Institution string    `json:"institution"`
	CreatedAt   time.Time `json:"created_at"`
	ItemsSold   int64     `json:"items_sold"`
	Balance     int64     `json:"balance"`
}
