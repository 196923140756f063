package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/halcyonforge/bookvault/internal/books"
	"github.com/halcyonforge/bookvault/internal/config"
	"github.com/halcyonforge/bookvault/internal/server"
	"github.com/halcyonforge/bookvault/internal/store"
	"github.com/halcyonforge/bookvault/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("BookVault server starting", zap.String("version", version.Short()))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	bookStore, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open book store", zap.Error(err))
	}
	defer closeStore()

	svc := books.NewService(bookStore, cfg.GetInt("books.max_limit"), logger)

	addr := fmt.Sprintf("%s:%d", cfg.GetString("server.host"), cfg.GetInt("server.port"))
	srv := server.New(addr, svc, logger, server.Options{
		RateLimit: cfg.GetFloat64("server.rate.rps"),
		RateBurst: cfg.GetInt("server.rate.burst"),
	})

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("BookVault server ready", zap.String("addr", addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("BookVault server stopped")
}

// openStore picks the persistence backend from storage.driver: "json"
// (default), "sqlite", or "memory".
func openStore(cfg *config.Config, logger *zap.Logger) (books.Store, func(), error) {
	driver := cfg.GetString("storage.driver")
	path := cfg.GetString("storage.path")

	switch driver {
	case "", "json":
		s := store.NewJSONFile(path, logger)
		return s, func() { _ = s.Close() }, nil
	case "sqlite":
		s, err := store.NewSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "memory":
		return store.NewMemory(nil), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
