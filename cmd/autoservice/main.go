// Package main запускает HTTP-сервер сервиса автосервиса.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/avtomir/autoservice-system/internal/config"
	"github.com/avtomir/autoservice-system/internal/handler"
	"github.com/avtomir/autoservice-system/internal/kv"
	"github.com/avtomir/autoservice-system/internal/middleware"
	"github.com/avtomir/autoservice-system/internal/storage"
	"github.com/avtomir/autoservice-system/internal/wizard"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	store, err := openStore(cfg, sugar)
	if err != nil {
		sugar.Fatalw("storage initialization error", "error", err.Error())
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := storage.NewSession(ctx, store)
	cart := storage.NewCart(ctx, store)
	accounts := storage.NewAccount(store)
	wizards := wizard.NewManager(accounts, cart)

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	h := handler.NewHandler(session, cart, accounts, wizards, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting autoservice server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

// openStore выбирает key-value бэкенд: PostgreSQL при заданном DSN, затем
// Redis, затем файловое хранилище.
func openStore(cfg *config.Config, sugar *zap.SugaredLogger) (kv.Store, error) {
	if cfg.DatabaseURI != "" {
		sugar.Infow("using postgres storage", "uri", cfg.DatabaseURI)
		return kv.NewPostgres(cfg.DatabaseURI)
	}
	if cfg.RedisAddress != "" {
		sugar.Infow("using redis storage", "addr", cfg.RedisAddress)
		return kv.NewRedis(cfg.RedisAddress)
	}
	if cfg.StorageFile != "" {
		sugar.Infow("using file storage", "path", cfg.StorageFile)
		return kv.NewFile(cfg.StorageFile), nil
	}
	return kv.NewMemory(), nil
}
