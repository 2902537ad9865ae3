package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/n0ya6101/hangman-game/internal/game"
	"github.com/n0ya6101/hangman-game/internal/handlers"
	"github.com/n0ya6101/hangman-game/internal/logging"
	"github.com/n0ya6101/hangman-game/internal/storage"
)

func main() {
	_ = godotenv.Load()

	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()
	logging.Debug = *debug

	handlers.SetVersion(commit)

	// Pick the session store: postgres when configured, in-memory otherwise.
	var store game.SessionStore
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := storage.New(dsn)
		if err != nil {
			logging.Warnf("database connection failed: %v", err)
			os.Exit(1)
		}
		store = storage.NewStore(db)
		logging.Infof("using postgres session store")
	} else {
		store = storage.NewMemStore()
		logging.Infof("DATABASE_URL not set, using in-memory session store")
	}

	hub := game.NewHub()
	ctl := game.NewController(store, hub)
	h := handlers.NewHandler(ctl, hub, store)

	// Reclamation sweep: inactive sessions are deleted outright.
	reaper := game.NewReaper(store, hub)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go reaper.Run(sweepCtx, getEnvDuration("RECLAIM_INTERVAL", 10*time.Minute))

	router := gin.Default()
	h.Register(router)

	startServer(router, stopSweep)
}

func startServer(router *gin.Engine, stopSweep context.CancelFunc) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // SSE streams stay open
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logging.Infof("shutdown signal received, shutting down gracefully...")
		stopSweep()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logging.Warnf("HTTP server shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logging.Infof("Hangman hub %s listening on http://localhost:%s", commit, port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Warnf("server failed to start: %v", err)
		os.Exit(1)
	}
	<-idleConnsClosed
	logging.Infof("server shutdown complete")
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		logging.Warnf("invalid duration for %s: %v, using default %v", key, err, fallback)
		return fallback
	}
	return d
}
