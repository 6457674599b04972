package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jaydbrown/bidit/internal/model"
)

// CreateUser creates a new user account.
func CreateUser(ctx context.Context, db *sql.DB, username, email, passwordHash, institution string) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, institution) VALUES (?, ?, ?, ?)`,
		username, email, passwordHash, institution,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return getUserWhere(ctx, db, "id = ?", id)
}

// GetUserByEmail returns a user by email (for login and signup checks).
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	return getUserWhere(ctx, db, "email = ?", email)
}

// GetUserByResetToken returns the user holding a password reset token.
func GetUserByResetToken(ctx context.Context, db *sql.DB, token string) (*model.User, error) {
	return getUserWhere(ctx, db, "reset_token = ?", token)
}

func getUserWhere(ctx context.Context, db *sql.DB, where string, arg any) (*model.User, error) {
	u := &model.User{}
	var resetToken sql.NullString
	var resetExpires sql.NullTime
	err := db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, institution, created_at, reset_token, reset_token_expires
		 FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Institution, &u.CreatedAt, &resetToken, &resetExpires)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	u.ResetToken = resetToken.String
	if resetExpires.Valid {
		t := resetExpires.Time
		u.ResetTokenExpires = &t
	}
	return u, nil
}

// UpdateUser updates a user's editable profile fields. Empty values keep the
// current field. Only username, email and institution are updatable.
func UpdateUser(ctx context.Context, db *sql.DB, id int64, username, email, institution string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET
		     username    = COALESCE(NULLIF(?, ''), username),
		     email       = COALESCE(NULLIF(?, ''), email),
		     institution = COALESCE(NULLIF(?, ''), institution)
		 WHERE id = ?`,
		username, email, institution, id,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// SetResetToken stores a password reset token with its expiry.
func SetResetToken(ctx context.Context, db *sql.DB, id int64, token string, expires time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET reset_token = ?, reset_token_expires = ? WHERE id = ?`,
		token, expires, id,
	)
	if err != nil {
		return fmt.Errorf("setting reset token: %w", err)
	}
	return nil
}

// ResetPassword updates the password hash and clears any reset token.
func ResetPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expires = NULL
		 WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("resetting password: %w", err)
	}
	return nil
}

// DeleteUser removes a user account.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// GetProfile returns a user's own profile with seller stats: how many of
// their items have sold and the sum of the final prices.
func GetProfile(ctx context.Context, db *sql.DB, id int64) (*model.Profile, error) {
	user, err := GetUser(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	p := &model.Profile{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Institution: user.Institution,
		CreatedAt:   user.CreatedAt,
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(final_price), 0)
		 FROM items WHERE seller_id = ? AND sold = 1`,
		id,
	).Scan(&p.ItemsSold, &p.Balance)
	if err != nil {
		return nil, fmt.Errorf("getting seller stats: %w", err)
	}

	return p, nil
}
