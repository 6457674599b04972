package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jaydbrown/bidit/internal/auth"
	"github.com/jaydbrown/bidit/internal/mail"
	"github.com/jaydbrown/bidit/internal/store"
)

// ResetTokenExpiry is how long a password reset link stays valid.
const ResetTokenExpiry = time.Hour

// AuthHandler handles signup, login and password reset endpoints.
type AuthHandler struct {
	DB           *sql.DB
	JWTSecret    string
	Mailer       mail.Mailer
	ResetBaseURL string
}

type signupRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Institution string `json:"institution"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Institution string `json:"institution"`
	Token       string `json:"token"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" || req.Institution == "" {
		jsonError(w, http.StatusBadRequest, "username, email, password and institution required")
		return
	}

	existing, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusBadRequest, "user already exists with this email")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, req.Email, string(hash), req.Institution)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, user.Institution)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	// Welcome mail is best-effort: a broken relay must not block signup.
	subject, body := mail.WelcomeBody(user.Username)
	if err := h.Mailer.Send(user.Email, subject, body); err != nil {
		slog.Warn("sending welcome mail", "email", user.Email, "error", err)
	}

	slog.Info("user signed up", "user", user.Username, "institution", user.Institution)
	jsonResponse(w, http.StatusCreated, authResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Institution: user.Institution,
		Token:       token,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, user.Institution)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("user logged in", "user", user.Username)
	jsonResponse(w, http.StatusOK, authResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Institution: user.Institution,
		Token:       token,
	})
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		jsonError(w, http.StatusBadRequest, "email required")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "no account found with this email")
		return
	}

	token := uuid.NewString()
	expires := time.Now().Add(ResetTokenExpiry)
	if err := store.SetResetToken(r.Context(), h.DB, user.ID, token, expires); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create reset token")
		return
	}

	resetLink := h.ResetBaseURL + "/reset-password/" + token
	subject, body := mail.PasswordResetBody(user.Username, resetLink)
	if err := h.Mailer.Send(user.Email, subject, body); err != nil {
		slog.Error("sending reset mail", "email", user.Email, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to send reset email")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset email sent"})
}

// ResetPassword handles POST /api/auth/reset-password/{token}.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		jsonError(w, http.StatusBadRequest, "password required")
		return
	}

	user, err := store.GetUserByResetToken(r.Context(), h.DB, token)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || user.ResetTokenExpires == nil || user.ResetTokenExpires.Before(time.Now()) {
		jsonError(w, http.StatusBadRequest, "invalid or expired password reset token")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := store.ResetPassword(r.Context(), h.DB, user.ID, string(hash)); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	slog.Info("password reset", "user", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password has been reset"})
}
