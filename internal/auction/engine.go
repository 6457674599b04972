package auction

import (
	"context"
	"sync"
	"time"

	"github.com/jaydbrown/bidit/internal/model"
)

// ItemGetter looks up listings for admission checks.
type ItemGetter interface {
	GetItem(ctx context.Context, id int64) (*model.Item, error)
}

// BidLedger is the append-only bid store for auction items. Append must be
// atomic: a rejected bid never touches the ledger.
type BidLedger interface {
	HighestBid(ctx context.Context, itemID int64) (amount int64, ok bool, err error)
	Append(ctx context.Context, itemID, bidderID, amount int64) (*model.Bid, error)
	ListByItem(ctx context.Context, itemID int64) ([]model.Bid, error)
	CountByBidder(ctx context.Context, bidderID int64) (int64, error)
}

// Engine validates and admits bids. Admission is serialized per item so that
// the read-highest-then-append sequence is atomic: concurrent bidders on the
// same item cannot both win against the same floor. Bids on different items
// proceed in parallel.
type Engine struct {
	items ItemGetter
	bids  BidLedger
	now   func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewEngine creates a bid admission engine over the given stores.
func NewEngine(items ItemGetter, bids BidLedger) *Engine {
	return &Engine{
		items: items,
		bids:  bids,
		now:   time.Now,
		locks: make(map[int64]*sync.Mutex),
	}
}

// lockItem acquires the mutex for a single item, creating it on first use.
// Returns the unlock function.
func (e *Engine) lockItem(itemID int64) func() {
	e.mu.Lock()
	l, ok := e.locks[itemID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[itemID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// PlaceBid validates a proposed bid and appends it to the ledger.
//
// Preconditions are checked in order, each with a distinct failure:
// the item must exist (ErrItemNotFound), be an auction (ErrNotAuctionable),
// the amount must be positive (ErrInvalidAmount), the auction must still be
// open (ErrAuctionClosed), and the amount must meet the floor: the highest
// bid plus one currency unit, or the starting price if no bid exists yet
// (*BidTooLowError carrying the floor).
func (e *Engine) PlaceBid(ctx context.Context, itemID, bidderID, amount int64) (*model.Bid, error) {
	unlock := e.lockItem(itemID)
	defer unlock()

	item, err := e.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if !item.IsAuction {
		return nil, ErrNotAuctionable
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if item.AuctionEndTime != nil && !e.now().Before(*item.AuctionEndTime) {
		return nil, ErrAuctionClosed
	}

	floor := item.StartingPrice
	if highest, ok, err := e.bids.HighestBid(ctx, itemID); err != nil {
		return nil, err
	} else if ok {
		floor = highest + 1
	}

	if amount < floor {
		return nil, &BidTooLowError{Floor: floor}
	}

	return e.bids.Append(ctx, itemID, bidderID, amount)
}

// BidsForItem returns the item's bids, newest first.
// Fails with ErrItemNotFound if the item does not exist.
func (e *Engine) BidsForItem(ctx context.Context, itemID int64) ([]model.Bid, error) {
	item, err := e.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return e.bids.ListByItem(ctx, itemID)
}

// HighestBid returns the current highest bid amount for an item.
// ok is false if the item has no bids.
func (e *Engine) HighestBid(ctx context.Context, itemID int64) (int64, bool, error) {
	return e.bids.HighestBid(ctx, itemID)
}

// BidCountForBidder returns how many bids a user has placed, across all items.
func (e *Engine) BidCountForBidder(ctx context.Context, bidderID int64) (int64, error) {
	return e.bids.CountByBidder(ctx, bidderID)
}
