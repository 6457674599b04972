package api

import (
	"net/http"
	"strconv"

	"github.com/jaydbrown/bidit/internal/auction"
	"github.com/jaydbrown/bidit/internal/model"
)

// BidsHandler exposes the bid admission engine.
type BidsHandler struct {
	Engine *auction.Engine
}

type placeBidRequest struct {
	ItemID int64 `json:"item_id"`
	Amount int64 `json:"amount"`
}

// PlaceBid handles POST /api/bids.
func (h *BidsHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req placeBidRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == 0 {
		jsonError(w, http.StatusBadRequest, "item_id and amount are required")
		return
	}

	bid, err := h.Engine.PlaceBid(r.Context(), req.ItemID, claims.UserID, req.Amount)
	if err != nil {
		auctionError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, bid)
}

// ListForItem handles GET /api/bids/item/{id}.
func (h *BidsHandler) ListForItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	bids, err := h.Engine.BidsForItem(r.Context(), id)
	if err != nil {
		auctionError(w, err)
		return
	}
	if bids == nil {
		bids = []model.Bid{}
	}
	jsonResponse(w, http.StatusOK, bids)
}

// MyCount handles GET /api/bids/my-count.
func (h *BidsHandler) MyCount(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	count, err := h.Engine.BidCountForBidder(r.Context(), claims.UserID)
	if err != nil {
		auctionError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]int64{"count": count})
}
