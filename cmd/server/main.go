package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jredh-dev/hochzeit/config"
	"github.com/jredh-dev/hochzeit/internal/database"
	"github.com/jredh-dev/hochzeit/internal/notify"
	"github.com/jredh-dev/hochzeit/internal/rsvp"
	"github.com/jredh-dev/hochzeit/internal/sheets"
	"github.com/jredh-dev/hochzeit/internal/token"
	"github.com/jredh-dev/hochzeit/internal/web/handlers"
	"github.com/jredh-dev/hochzeit/internal/wishlist"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hochzeit-server %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", buildDate)
		os.Exit(0)
	}

	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Wishlist ledger.
	store, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:            cfg.Sheets.SpreadsheetID,
		WishlistWorksheet:        cfg.Sheets.WishlistWorksheet,
		LogWorksheet:             cfg.Sheets.LogWorksheet,
		ServiceAccountEmail:      cfg.Sheets.ServiceAccountEmail,
		ServiceAccountPrivateKey: cfg.Sheets.ServiceAccountPrivateKey,
		CredentialsPath:          cfg.Sheets.CredentialsPath,
	})
	if err != nil {
		logger.Fatal("init wishlist sheet", zap.Error(err))
	}

	opts := []wishlist.Option{}
	if store.HasLog() {
		opts = append(opts, wishlist.WithAuditLog(store))
	} else {
		logger.Warn("no contribution log worksheet configured")
	}

	mailer, err := notify.New(notify.Config{
		Host:          cfg.Mail.Host,
		Port:          cfg.Mail.Port,
		Username:      cfg.Mail.Username,
		Password:      cfg.Mail.Password,
		From:          cfg.Mail.From,
		BCC:           cfg.Mail.BCC,
		Couple:        cfg.Event.Couple,
		EventDate:     cfg.Event.Date,
		BankHolder:    cfg.Event.BankHolder,
		BankIBAN:      cfg.Event.BankIBAN,
		BankReference: cfg.Event.BankReference,
	})
	if err != nil {
		logger.Warn("contribution e-mails disabled", zap.Error(err))
	} else {
		opts = append(opts, wishlist.WithNotifier(mailer))
	}

	wl := wishlist.NewService(store, logger.Named("wishlist"), opts...)

	// RSVP store.
	var reg *rsvp.Service
	if cfg.Firebase.ProjectID != "" {
		db, err := database.NewRegistrationDB(ctx, database.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsPath: cfg.Firebase.CredentialsPath,
			Database:        cfg.Firebase.FirestoreDatabase,
			Collection:      cfg.Firebase.Collection,
		})
		if err != nil {
			logger.Fatal("init registration store", zap.Error(err))
		}
		defer db.Close()
		reg = rsvp.NewService(db, logger.Named("rsvp"))
	} else {
		logger.Warn("FIREBASE_PROJECT_ID is empty, registrations are unavailable")
	}

	// Site gate.
	if cfg.Gate.SigningKey == "" {
		key, err := token.GenerateSigningKey()
		if err != nil {
			logger.Fatal("generate gate signing key", zap.Error(err))
		}
		cfg.Gate.SigningKey = key
		if cfg.Gate.Password != "" {
			logger.Warn("GATE_SIGNING_KEY is empty, gate cookies will not survive a restart")
		}
	}
	gate := token.New(cfg.Gate.SigningKey, "hochzeit")

	h := handlers.New(cfg, logger, wl, reg, gate)

	// Initialize router.
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(handlers.GateMiddleware(cfg.Gate.Password, gate))

	r.Get("/health", h.Health)

	// Static file serving.
	staticDir := "static"
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(filepath.Join(staticDir, "images")))))
	r.Handle("/robots.txt", http.FileServer(http.Dir(staticDir)))

	// Pages.
	r.Get("/", h.Home)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/anmeldung", h.RegisterPage)
	r.Get("/wunschliste", h.WishlistPage)
	r.Get("/wunschliste/korb", h.BasketPage)
	r.Get("/events.ics", h.Calendar)

	// JSON API.
	r.Get("/wishlist", h.ListGifts)
	r.Post("/wishlist", h.Reserve)
	r.Route("/api", func(r chi.Router) {
		r.Get("/wishlist", h.ListGifts)
		r.Post("/wishlist", h.Reserve)
		r.Post("/wishlist/basket", h.Basket)
		r.Post("/register", h.Register)
	})

	// Start server.
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("hochzeit server starting",
		zap.String("addr", addr),
		zap.String("env", cfg.Server.Env),
		zap.Bool("gate", cfg.Gate.Password != ""),
		zap.Bool("registration", cfg.Features.RegistrationEnabled))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
