package api

import (
	"log/slog"
	"net/http"

	"github.com/jaydbrown/bidit/internal/payments"
)

// PaymentsHandler verifies gateway transactions for the frontend checkout.
type PaymentsHandler struct {
	Client *payments.Client
}

// Verify handles POST /api/payments/verify.
func (h *PaymentsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference string `json:"reference"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reference == "" {
		jsonError(w, http.StatusBadRequest, "reference is required")
		return
	}

	v, err := h.Client.Verify(r.Context(), req.Reference)
	if err != nil {
		slog.Error("verifying payment", "reference", req.Reference, "error", err)
		jsonError(w, http.StatusInternalServerError, "error verifying payment with gateway")
		return
	}

	if !v.Verified {
		jsonResponse(w, http.StatusBadRequest, map[string]any{
			"verified": false,
			"error":    "payment not successful",
		})
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"verified": true,
		"details":  v,
	})
}
