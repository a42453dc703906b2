package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/atmcore/ledger/internal/audit"
	"github.com/atmcore/ledger/internal/config"
	"github.com/atmcore/ledger/internal/domain"
	"github.com/atmcore/ledger/internal/handler"
	"github.com/atmcore/ledger/internal/ledger"
	"github.com/atmcore/ledger/internal/logging"
	"github.com/atmcore/ledger/internal/middleware"
	"github.com/atmcore/ledger/internal/store"
	"github.com/atmcore/ledger/internal/timedeposit"
)

// Sample accounts provisioned at startup.
var seedAccounts = []struct {
	number string
	cents  int64
}{
	{"123456", 100_000},
	{"789012", 50_000},
	{"555444", 0},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("atm-ledger", cfg.LogLevel, cfg.AppEnv)

	accounts, db, err := buildStore(cfg)
	if err != nil {
		slog.Error("failed to initialize account store", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	if err := seed(accounts); err != nil {
		slog.Error("failed to seed accounts", "error", err)
		os.Exit(1)
	}

	recorder := audit.NewLogRecorder()
	ledgerSvc := ledger.NewService(accounts, recorder, cfg)
	depositSvc := timedeposit.NewService(ledgerSvc, accounts, timedeposit.DefaultRates(), cfg)

	accountHandler := handler.NewAccountHandler(ledgerSvc)
	depositHandler := handler.NewTimeDepositHandler(depositSvc)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /ready", healthHandler.Readiness)

	mux.HandleFunc("GET /api/v1/accounts/{account}/balance", accountHandler.GetBalance)
	mux.HandleFunc("POST /api/v1/accounts/{account}/deposit", accountHandler.Deposit)
	mux.HandleFunc("POST /api/v1/accounts/{account}/withdraw", accountHandler.Withdraw)
	mux.HandleFunc("POST /api/v1/accounts/{account}/transfer", accountHandler.Transfer)

	mux.HandleFunc("POST /api/v1/time-deposits", depositHandler.Create)
	mux.HandleFunc("POST /api/v1/time-deposits/{deposit}/mature", depositHandler.Mature)
	mux.HandleFunc("GET /api/v1/time-deposits/{account}", depositHandler.List)

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func buildStore(cfg *config.Config) (store.AccountStore, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		slog.Info("using in-memory account store")
		return store.NewMemoryStore(), nil, nil
	}

	db, err := connectDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("using postgres account store")
	return store.NewPostgresStore(db), db, nil
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)

	for i := range 30 {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}

func seed(accounts store.AccountStore) error {
	ctx := context.Background()
	for _, sa := range seedAccounts {
		_, err := accounts.Get(ctx, sa.number)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return fmt.Errorf("seed: %w", err)
		}

		if err := accounts.Create(ctx, &domain.Account{
			Number:    sa.number,
			Balance:   domain.MoneyFromCents(sa.cents),
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		slog.Info("seeded account", "account", sa.number, "balance", domain.MoneyFromCents(sa.cents).String())
	}
	return nil
}
