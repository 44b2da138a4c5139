package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickchat/internal/assets"
	"quickchat/internal/config"
	"quickchat/internal/httpserver"
	"quickchat/internal/security"
	"quickchat/internal/store/sqlite"
	"quickchat/internal/ws"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := sqlite.Migrate(db); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(0)

	encryptor, err := security.NewEncryptor([]byte(cfg.EncryptKey))
	if err != nil {
		log.Error("failed to initialize encryptor", "error", err)
		os.Exit(1)
	}

	// Asset uploads go to the configured host, or to local disk without one.
	var uploader assets.Uploader
	if cfg.AssetHostURL != "" {
		uploader = assets.NewHostUploader(cfg.AssetHostURL, cfg.AssetUploadTimeout)
	} else {
		uploader = assets.NewDiskUploader(cfg.UploadDir)
	}

	// Presence registry and notification relay
	registry := ws.NewRegistry(log)
	relay := ws.NewRelay(registry, log)

	router := httpserver.NewRouter(cfg, db, registry, relay, tokenSvc, passwordHasher, encryptor, uploader, log)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting quickchat server", "addr", cfg.HTTPAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
