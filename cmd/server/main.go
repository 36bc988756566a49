package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"jobportal/internal/app"
	"jobportal/internal/config"
	"jobportal/internal/ratelimit"
	"jobportal/internal/server"
	"jobportal/internal/util"
)

// Credential endpoints get a fixed-window quota per client address.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	pollInterval, err := config.ParsePollInterval(cfg.PollInterval)
	if err != nil {
		log.Fatalf("failed to parse poll interval: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := app.New(app.Config{
		Storage:       cfg.Storage,
		DataDir:       cfg.DataDir,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		DatabaseURL:   cfg.DatabaseURL,
		BookmarkMode:  config.ResolveBookmarkMode(cfg),
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    sessionTTL,
		PollInterval:  pollInterval,
		SeedDemoJobs:  cfg.SeedDemoJobs,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}
	defer appCore.Close()

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" {
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, loginRateLimit, loginRateWindow)
	} else {
		limiter, err = ratelimit.NewFixedWindowLimiter(loginRateLimit, loginRateWindow)
	}
	if err != nil {
		log.Fatalf("failed to init rate limiter: %v", err)
	}

	httpServer := server.New(server.Config{App: appCore, LoginLimiter: limiter})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr, "storage", cfg.Storage)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
