package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jaydbrown/bidit/internal/api"
	"github.com/jaydbrown/bidit/internal/auction"
	"github.com/jaydbrown/bidit/internal/db"
	"github.com/jaydbrown/bidit/internal/mail"
	"github.com/jaydbrown/bidit/internal/payments"
	"github.com/jaydbrown/bidit/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// newMailer builds the outgoing mailer from SMTP_* environment variables,
// falling back to log-only delivery when no relay is configured.
func newMailer() mail.Mailer {
	addr := os.Getenv("SMTP_ADDR")
	if addr == "" {
		return mail.LogMailer{}
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@bidit.local"
	}
	return &mail.SMTPMailer{
		Addr:     addr,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     from,
	}
}

func main() {
	fs := flag.NewFlagSet("bidit", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "bidit.sqlite3", "")
	fs.StringVar(&dbPath, "d", "bidit.sqlite3", "")

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var origins string
	fs.StringVar(&origins, "origins", "", "")

	var resetBaseURL string
	fs.StringVar(&resetBaseURL, "reset-base-url", "http://localhost:8080", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: bidit [flags]

Flags:
  -d, -db <path>            SQLite database path (default: bidit.sqlite3)
  -a, -addr <host:port>     listen address (default: :8080)
  -l, -log <path>           log file path (default: no file, stdout/stderr only)
  -origins <list>           comma-separated CORS origins (default: none)
  -reset-base-url <url>     frontend base for password reset links
  -h, -help                 show this help and exit

Environment:
  PAYSTACK_SECRET_KEY       payment gateway secret key
  SMTP_ADDR, SMTP_USER,
  SMTP_PASS, SMTP_FROM      outgoing mail relay (log-only if unset)
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	// Open database, creating the schema on first run.
	database, err := db.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", dbPath)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		slog.Error("failed to get JWT secret", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.Config{
		DB:           database,
		JWTSecret:    jwtSecret,
		Mailer:       newMailer(),
		Payments:     payments.NewClient(os.Getenv("PAYSTACK_SECRET_KEY")),
		ResetBaseURL: strings.TrimRight(resetBaseURL, "/"),
	})

	var allowedOrigins []string
	if origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}

	handler := api.LoggingMiddleware(api.SecurityHeaders(api.CORS(allowedOrigins)(router)))

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Settle expired auctions in the background until shutdown.
	settlerCtx, stopSettler := context.WithCancel(context.Background())
	defer stopSettler()
	settler := auction.NewSettler(store.ItemStore{DB: database}, auction.DefaultSettleInterval)
	go settler.Run(settlerCtx)

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())
		stopSettler()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}
