package auction

import (
	"context"
	"log/slog"
	"time"
)

// SettlementStore finalizes expired auctions.
type SettlementStore interface {
	// SettleExpired marks every expired, unsold auction that has at least one
	// bid as sold at its highest bid. Returns the number of settled auctions.
	// Must be idempotent.
	SettleExpired(ctx context.Context, now time.Time) (int64, error)
}

// DefaultSettleInterval is how often the settler sweeps for expired auctions.
const DefaultSettleInterval = time.Minute

// Settler periodically settles expired auctions: sold and final_price are set
// together, exactly once, from the bid ledger. Auctions that expire without a
// bid stay unsold.
type Settler struct {
	store    SettlementStore
	interval time.Duration
	now      func() time.Time
}

// NewSettler creates a settler sweeping at the given interval.
// A non-positive interval falls back to DefaultSettleInterval.
func NewSettler(store SettlementStore, interval time.Duration) *Settler {
	if interval <= 0 {
		interval = DefaultSettleInterval
	}
	return &Settler{store: store, interval: interval, now: time.Now}
}

// Run sweeps until ctx is cancelled. One sweep runs immediately on start.
func (s *Settler) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("auction settler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Settler) sweep(ctx context.Context) {
	n, err := s.store.SettleExpired(ctx, s.now())
	if err != nil {
		slog.Error("settling expired auctions", "error", err)
		return
	}
	if n > 0 {
		slog.Info("settled expired auctions", "count", n)
	}
}
