package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jaydbrown/bidit/internal/auction"
	"github.com/jaydbrown/bidit/internal/imaging"
	"github.com/jaydbrown/bidit/internal/model"
	"github.com/jaydbrown/bidit/internal/store"
)

// ItemsHandler handles listing endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type itemRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	StartingPrice   int64  `json:"starting_price"`
	IsAuction       bool   `json:"is_auction"`
	AuctionDuration string `json:"auction_duration"`
}

func (req *itemRequest) validate() string {
	if req.Title == "" || req.Description == "" || req.Category == "" {
		return "title, description and category required"
	}
	if req.StartingPrice <= 0 {
		return "starting price must be positive"
	}
	return ""
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter model.ItemFilter
	if v := q.Get("is_auction"); v != "" {
		isAuction := v == "true"
		filter.IsAuction = &isAuction
	}
	filter.Institution = q.Get("university")
	filter.Category = q.Get("category")
	filter.Search = q.Get("search")

	items, err := store.SearchItems(r.Context(), h.DB, filter)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// My handles GET /api/items/my.
func (h *ItemsHandler) My(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	items, err := store.ListItemsBySeller(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items. Auction listings get their end time from
// the duration code; the auction flag is immutable afterwards.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	var endTime *time.Time
	if req.IsAuction {
		if req.AuctionDuration == "" {
			jsonError(w, http.StatusBadRequest, "auction duration must be specified for auction items")
			return
		}
		t, err := auction.EndTime(req.AuctionDuration, time.Now())
		if err != nil {
			auctionError(w, err)
			return
		}
		endTime = &t
	}

	item, err := store.CreateItem(r.Context(), h.DB, claims.UserID,
		req.Title, req.Description, req.Category, req.StartingPrice, req.IsAuction, endTime)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PATCH /api/items/{id}. Seller only. The auction end time can
// only be rescheduled while the item has no bids.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	upd := model.ItemUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		StartingPrice: req.StartingPrice,
	}

	if item.IsAuction && req.AuctionDuration != "" {
		hasBids, err := store.ItemHasBids(r.Context(), h.DB, item.ID)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to check item bids")
			return
		}
		if hasBids {
			jsonError(w, http.StatusBadRequest, "cannot change auction end time after bidding has started")
			return
		}
		t, err := auction.EndTime(req.AuctionDuration, time.Now())
		if err != nil {
			auctionError(w, err)
			return
		}
		upd.AuctionEndTime = &t
	}

	if err := store.UpdateItem(r.Context(), h.DB, item.ID, upd); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	updated, err := store.GetItem(r.Context(), h.DB, item.ID)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get updated item")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}. Seller only; items with bids stay.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, item.ID); err != nil {
		if errors.Is(err, store.ErrItemHasBids) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, item.ID, photo.Data, photo.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// ownedItem loads the item from the path and verifies the caller is its
// seller. Writes the error response itself when returning ok=false.
func (h *ItemsHandler) ownedItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return nil, false
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}

	claims := GetClaims(r.Context())
	if item.SellerID != claims.UserID {
		jsonError(w, http.StatusForbidden, "not authorized to modify this item")
		return nil, false
	}

	return item, true
}
