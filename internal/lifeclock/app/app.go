package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/q8244654-ui/lifeclock/internal/lifeclock/http"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/observability"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/report"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/store"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/store/drivers/sqlite"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/stripe"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	metrics *observability.Metrics

	checkoutService *service.CheckoutService
	paymentService  *service.PaymentService
	libraryService  *service.LibraryService
	reportService   *service.ReportService
	statsService    *service.StatsService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// Provider and cookie secrets are read once here and passed by reference;
// nothing re-reads the environment per request.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lifeclock",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: observability.New(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	warnMissingConfig(app.logger, cfg)

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("lifeclock starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down lifeclock...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("lifeclock stopped")
	return nil
}

// initDatabase opens the purchase ledger and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	var provider service.CheckoutProvider
	if app.cfg.StripeSecretKey != "" {
		provider = stripe.New(app.cfg.StripeSecretKey)
	}
	// A nil provider leaves checkout/confirm failing closed with a 500,
	// matching the missing-secret contract.

	app.checkoutService = &service.CheckoutService{
		Provider: provider,
		PriceID:  app.cfg.PriceID,
		BaseURL:  app.cfg.BaseURL,
	}

	app.paymentService = &service.PaymentService{
		Provider:     provider,
		Store:        app.db,
		CookieSecret: []byte(app.cfg.CookieSecret),
	}

	app.libraryService = &service.LibraryService{
		BooksDir: app.cfg.BooksDir,
		DocsDir:  app.cfg.DocsDir,
	}

	app.reportService = &service.ReportService{
		Renderer: report.PDFRenderer{},
	}

	app.statsService = &service.StatsService{Store: app.db}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		[]byte(app.cfg.CookieSecret),
		app.cfg.SecureCookies(),
		app.cfg.BaseURL,
		BuildVersion,
		app.db,
		app.metrics,
		app.logger,
	)

	router.CheckoutService = app.checkoutService
	router.PaymentService = app.paymentService
	router.LibraryService = app.libraryService
	router.ReportService = app.reportService
	router.StatsService = app.statsService
	router.AdminPasswordHash = app.cfg.AdminPasswordHash
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// warnMissingConfig logs which payment features are disabled. The process
// still starts: the public library and health endpoints work without any
// provider configuration, and the dependent endpoints fail closed.
func warnMissingConfig(logger *slog.Logger, cfg Config) {
	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY is not set; checkout and confirmation are disabled")
	}
	if cfg.PriceID == "" {
		logger.Warn("LIFECLOCK_PRICE_ID is not set; checkout is disabled")
	}
	if cfg.CookieSecret == "" {
		logger.Warn("PAY_COOKIE_SECRET is not set; gated routes will deny all access")
	}
}
