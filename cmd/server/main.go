package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Rajangupta9/tasktracker/config"
	"github.com/Rajangupta9/tasktracker/handlers"
	"github.com/Rajangupta9/tasktracker/store"
)

func main() {
	logger := config.NewLogger(os.Stderr, os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	logger = config.NewLogger(os.Stderr, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	taskStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store unavailable", "store", cfg.Store, "err", err)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Store:       taskStore,
		Logger:      logger,
		AuthEnabled: cfg.AuthEnabled,
		JWTSecret:   []byte(cfg.JWTSecret),
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr, "store", cfg.Store, "auth", cfg.AuthEnabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	if err := taskStore.Close(shutdownCtx); err != nil {
		logger.Error("store close", "err", err)
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (store.TaskStore, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store, tasks are lost on restart")
		return store.NewMemoryStore(), nil
	}

	client, err := config.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to MongoDB", "db", cfg.MongoDB)

	s := store.NewMongoStore(client, cfg.MongoDB)
	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.EnsureIndexes(indexCtx); err != nil {
		// the list query still works without the index, just slower
		logger.Warn("index setup failed", "err", err)
	}
	return s, nil
}
