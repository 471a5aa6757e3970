package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/menuflow/dashboard-gateway/internal/api"
	"github.com/menuflow/dashboard-gateway/internal/config"
	"github.com/menuflow/dashboard-gateway/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("starting dashboard gateway", "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)

	server := api.NewServer(cfg, l)

	go func() {
		l.Info(fmt.Sprintf("listening on port %d", cfg.Port))
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			l.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		l.Error("forced shutdown", "error", err)
	} else {
		l.Info("server exited")
	}
}
