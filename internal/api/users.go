package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jaydbrown/bidit/internal/store"
)

// UsersHandler handles profile endpoints.
type UsersHandler struct {
	DB *sql.DB
}

type updateProfileRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Institution string `json:"institution"`
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	profile, err := store.GetProfile(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if profile == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonResponse(w, http.StatusOK, profile)
}

// MyStats handles GET /api/users/me/stats.
func (h *UsersHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	profile, err := store.GetProfile(r.Context(), h.DB, claims.UserID)
	if err != nil || profile == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]int64{
		"items_sold": profile.ItemsSold,
		"balance":    profile.Balance,
	})
}

// UpdateMe handles PATCH /api/users/me. Only username, email and institution
// are updatable.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	h.update(w, r, claims.UserID)
}

// DeleteMe handles DELETE /api/users/me.
func (h *UsersHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	if err := store.DeleteUser(r.Context(), h.DB, claims.UserID); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	slog.Info("account deleted", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonResponse(w, http.StatusOK, user)
}

// Update handles PATCH /api/users/{id}. Users may only edit themselves.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	claims := GetClaims(r.Context())
	if claims.UserID != id {
		jsonError(w, http.StatusForbidden, "not authorized to edit this user")
		return
	}

	h.update(w, r, id)
}

// Delete handles DELETE /api/users/{id}. Users may only delete themselves.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	claims := GetClaims(r.Context())
	if claims.UserID != id {
		jsonError(w, http.StatusForbidden, "not authorized to delete this user")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

func (h *UsersHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" && req.Email == "" && req.Institution == "" {
		jsonError(w, http.StatusBadRequest, "no updatable fields provided")
		return
	}

	if err := store.UpdateUser(r.Context(), h.DB, id, req.Username, req.Email, req.Institution); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get updated user")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}
