package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/config"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/logging"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/providers"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/server"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main starts the quote/swap API with graceful shutdown
func main() {
	bootLogger := logging.New("info")

	// load .env BEFORE anything reads os.Getenv
	loadEnv(bootLogger)

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	provider, err := providers.New(cfg.Provider, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create provider")
	}
	defer func() {
		if err := provider.Close(); err != nil {
			logger.WithError(err).Warn("provider close failed")
		}
	}()

	h := &server.Handlers{
		Provider:    provider,
		DevMode:     cfg.DevMode,
		Logger:      logger,
		SwapTimeout: cfg.ConfirmTimeout + 30*time.Second,
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithFields(logrus.Fields{
		"addr":     cfg.APIAddr,
		"provider": provider.Name(),
		"auth":     cfg.APIKey != "",
	}).Info("api server starting")

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("api server failed")
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.WaitClosed(waitCtx); err != nil {
		logger.WithError(err).Warn("server did not close cleanly")
	}
}
