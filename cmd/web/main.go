package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/torvi/internal/auth"
	"github.com/AdamBeresnev/torvi/internal/broadcast"
	"github.com/AdamBeresnev/torvi/internal/config"
	"github.com/AdamBeresnev/torvi/internal/db"
	"github.com/AdamBeresnev/torvi/internal/middleware"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	middleware.InitAuth(cfg)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	tokens, err := auth.NewTokenService(auth.Config{
		Secret:       cfg.JWTSecret,
		AccessTTL:    cfg.AccessTokenTTL,
		AnonymousTTL: cfg.AnonymousTokenTTL,
	})
	if err != nil {
		log.Fatal("Failed to set up tokens: ", err)
	}

	broadcaster := broadcast.New(cfg.BroadcastBuffer)
	scheduler, err := broadcast.ScheduleCleanup(broadcaster, cfg.CleanupInterval)
	if err != nil {
		log.Fatal("Failed to schedule room cleanup: ", err)
	}

	app := newApplication(database, tokens, broadcaster, sessionManager, cfg.HeartbeatInterval)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		// Live connections are hijacked, so Shutdown does not wait for them.
		// Closing the broadcaster ends their loops.
		broadcaster.Close()
		if err := scheduler.Shutdown(); err != nil {
			slog.Warn("scheduler shutdown failed", "error", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
