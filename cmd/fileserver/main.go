package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hwstudio/product-catalog/internal/config"
	httpDelivery "github.com/hwstudio/product-catalog/internal/delivery/http"
	"github.com/hwstudio/product-catalog/internal/delivery/http/handler"
	"github.com/hwstudio/product-catalog/internal/pkg/logger"
)

func main() {
	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Infof("Starting static file server on port %s, root %s", cfg.FileServer.Port, cfg.FileServer.Root)

	static := handler.NewStaticHandler(cfg.FileServer.Root, appLogger)
	router := httpDelivery.NewRouter(static, cfg, appLogger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.FileServer.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.FileServer.ReadTimeout,
		WriteTimeout: cfg.FileServer.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("File server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down file server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.FileServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", err)
	}
	appLogger.Info("File server stopped")
}
