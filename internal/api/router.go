package api

import (
	"database/sql"
	"net/http"

	"github.com/jaydbrown/bidit/internal/auction"
	"github.com/jaydbrown/bidit/internal/mail"
	"github.com/jaydbrown/bidit/internal/payments"
	"github.com/jaydbrown/bidit/internal/store"
)

// Config carries the router's collaborators.
type Config struct {
	DB        *sql.DB
	JWTSecret string
	Mailer    mail.Mailer
	Payments  *payments.Client

	// ResetBaseURL is the frontend base for password reset links.
	ResetBaseURL string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	engine := auction.NewEngine(store.ItemStore{DB: cfg.DB}, store.BidStore{DB: cfg.DB})

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret, Mailer: cfg.Mailer, ResetBaseURL: cfg.ResetBaseURL}
	usersHandler := &UsersHandler{DB: cfg.DB}
	itemsHandler := &ItemsHandler{DB: cfg.DB}
	bidsHandler := &BidsHandler{Engine: engine}
	paymentsHandler := &PaymentsHandler{Client: cfg.Payments}

	authMW := AuthMiddleware(cfg.JWTSecret)

	// Auth (public).
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password/{token}", authHandler.ResetPassword)

	// Users (authenticated).
	mux.Handle("GET /api/users/me", authMW(http.HandlerFunc(usersHandler.Me)))
	mux.Handle("GET /api/users/me/stats", authMW(http.HandlerFunc(usersHandler.MyStats)))
	mux.Handle("PATCH /api/users/me", authMW(http.HandlerFunc(usersHandler.UpdateMe)))
	mux.Handle("DELETE /api/users/me", authMW(http.HandlerFunc(usersHandler.DeleteMe)))
	mux.Handle("GET /api/users/{id}", authMW(http.HandlerFunc(usersHandler.Get)))
	mux.Handle("PATCH /api/users/{id}", authMW(http.HandlerFunc(usersHandler.Update)))
	mux.Handle("DELETE /api/users/{id}", authMW(http.HandlerFunc(usersHandler.Delete)))

	// Items: browsing is public, listing management requires auth.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/items/{id}/image", itemsHandler.GetImage)
	mux.Handle("GET /api/items/my", authMW(http.HandlerFunc(itemsHandler.My)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PATCH /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))

	// Bids: placing requires auth, an item's bid history is public.
	mux.Handle("POST /api/bids", authMW(http.HandlerFunc(bidsHandler.PlaceBid)))
	mux.HandleFunc("GET /api/bids/item/{id}", bidsHandler.ListForItem)
	mux.Handle("GET /api/bids/my-count", authMW(http.HandlerFunc(bidsHandler.MyCount)))

	// Payments (authenticated).
	mux.Handle("POST /api/payments/verify", authMW(http.HandlerFunc(paymentsHandler.Verify)))

	return mux
}
