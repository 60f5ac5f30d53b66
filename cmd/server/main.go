package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hirewire/hirewire/internal/api"
	"github.com/hirewire/hirewire/internal/app"
	"github.com/hirewire/hirewire/internal/auth"
	"github.com/hirewire/hirewire/internal/cache"
	"github.com/hirewire/hirewire/internal/database"
	"github.com/hirewire/hirewire/internal/handlers"
	"github.com/hirewire/hirewire/internal/notify"
	"github.com/hirewire/hirewire/internal/services"
	"github.com/hirewire/hirewire/internal/verification"
	"github.com/hirewire/hirewire/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hirewire: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.WithModule("server")

	db, err := database.Open(cfg.DatabaseConfig())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	store, err := buildCacheStore(cfg, db)
	if err != nil {
		return fmt.Errorf("build cache store: %w", err)
	}

	mailer, err := notify.NewMailer(cfg.SMTPConfig())
	if err != nil {
		return fmt.Errorf("build mailer: %w", err)
	}

	smsSender, err := notify.NewSNSSender(ctx, notify.SNSConfig{Region: cfg.SMS.Region})
	if err != nil {
		return fmt.Errorf("build sms sender: %w", err)
	}

	codes, err := verification.NewCodeStore(db)
	if err != nil {
		return err
	}

	limiter, err := verification.NewResendLimiter(store,
		verification.WithResendWindow(cfg.Verification.ResendWindow),
		verification.WithRetention(cfg.Verification.Retention),
	)
	if err != nil {
		return err
	}

	issuer, err := verification.NewIssuer(codes, limiter, mailer, smsSender,
		verification.WithCodeTTL(cfg.Verification.CodeTTL),
	)
	if err != nil {
		return err
	}

	gate, err := verification.NewGate(codes)
	if err != nil {
		return err
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Auth.JWTSecret,
		Issuer:         cfg.Auth.JWTIssuer,
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
	})
	if err != nil {
		return err
	}

	sessionService, err := auth.NewSessionService(db, jwtService, auth.SessionConfig{
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		RefreshLength:   cfg.Auth.RefreshLength,
		Cache:           auth.NewStoreSessionCache(store),
	})
	if err != nil {
		return err
	}

	accountService, err := services.NewAccountService(db, gate)
	if err != nil {
		return err
	}

	accountHandler, err := handlers.NewAccountHandler(accountService, sessionService, issuer)
	if err != nil {
		return err
	}
	sessionHandler, err := handlers.NewSessionHandler(sessionService)
	if err != nil {
		return err
	}
	profileHandler, err := handlers.NewProfileHandler(accountService)
	if err != nil {
		return err
	}

	router, err := api.NewRouter(api.RouterConfig{
		Accounts:         accountHandler,
		Sessions:         sessionHandler,
		Profile:          profileHandler,
		JWT:              jwtService,
		Cache:            store,
		RateLimitMax:     cfg.RateLimit.MaxRequests,
		RateLimitWindow:  cfg.RateLimit.Window,
		EnableRequestLog: cfg.Server.RequestLog,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func buildCacheStore(cfg *app.Config, db *gorm.DB) (cache.Store, error) {
	switch cfg.Cache.Driver {
	case "redis":
		return cache.NewRedisStore(cache.RedisConfig{
			Address:  cfg.Cache.Redis.Addr,
			Username: cfg.Cache.Redis.Username,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TLS:      cfg.Cache.Redis.TLS,
		})
	case "database":
		return cache.NewDatabaseStore(db), nil
	case "memory", "":
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.Cache.Driver)
	}
}
