package auction

import (
	"errors"
	"fmt"
)

// Admission failures. All are recoverable validation errors that map to 4xx
// responses; storage failures are returned separately, wrapped with context.
var (
	ErrItemNotFound    = errors.New("item not found")
	ErrNotAuctionable  = errors.New("item is not up for auction")
	ErrInvalidAmount   = errors.New("bid amount must be positive")
	ErrAuctionClosed   = errors.New("auction has ended")
	ErrInvalidDuration = errors.New("invalid auction duration (allowed: 2h, 1d, 1.5d)")
)

// BidTooLowError reports a bid below the current floor. Floor is the minimum
// acceptable amount, so callers can tell the bidder the exact value to beat.
type BidTooLowError struct {
	Floor int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be at least %d", e.Floor)
}
