package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jaydbrown/bidit/internal/auction"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// auctionError maps the admission taxonomy to client responses. Every
// validation failure gets a distinct 4xx; anything else is an infrastructure
// error and surfaces as a generic 500.
func auctionError(w http.ResponseWriter, err error) {
	var tooLow *auction.BidTooLowError
	switch {
	case errors.Is(err, auction.ErrItemNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, auction.ErrNotAuctionable):
		jsonError(w, http.StatusBadRequest, "this item is not up for auction")
	case errors.Is(err, auction.ErrInvalidAmount):
		jsonError(w, http.StatusBadRequest, "bid amount must be positive")
	case errors.Is(err, auction.ErrAuctionClosed):
		jsonError(w, http.StatusConflict, "this auction has ended")
	case errors.Is(err, auction.ErrInvalidDuration):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &tooLow):
		jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":          tooLow.Error(),
			"min_acceptable": tooLow.Floor,
		})
	default:
		slog.Error("auction operation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
