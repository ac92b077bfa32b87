package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authsvc/internal/config"
	"authsvc/internal/email"
	"authsvc/internal/observability/logging"
	"authsvc/internal/observability/metrics"
	"authsvc/internal/scheduler"
	impl "authsvc/internal/service/impl"
	"authsvc/internal/store"
	"authsvc/internal/store/redisstore"
	httpx "authsvc/internal/transport/http"
	"authsvc/pkg/db"

	"github.com/redis/go-redis/v9"
)

const serviceName = "authsvc"

func main() {
	cfg := config.MustLoad()

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)
	metrics.MustRegister(serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting service")

	// 1) DB
	gdb, err := db.OpenGorm(db.Config{
		DSN:             cfg.DatabaseURL,
		LogSQL:          cfg.DBLogSQL,
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	st := store.New(gdb)
	if cfg.AutoMigrate {
		if err := st.Migrate(ctx); err != nil {
			logger.Error("migrate", "error", err)
			os.Exit(1)
		}
	}

	// 2) Login-attempt counters: Redis when configured, Postgres otherwise
	var attempts impl.AttemptCounter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis ping", "error", err)
			os.Exit(1)
		}
		attempts = redisstore.NewLoginAttemptStore(rdb, serviceName)
		logger.Info("login attempts tracked in redis")
	}

	// 3) Services
	pw := impl.NewPasswordServiceArgon2id()
	ts, err := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:         cfg.Issuer,
		Audience:       cfg.Audience,
		AccessSecret:   []byte(cfg.AccessTokenSecret),
		RefreshSecret:  []byte(cfg.RefreshTokenSecret),
		AccessTTL:      cfg.AccessTTL.Duration(),
		RefreshTTL:     cfg.RefreshTTL.Duration(),
		AccessTTLLong:  cfg.AccessTTLLong.Duration(),
		RefreshTTLLong: cfg.RefreshTTLLong.Duration(),
	})
	if err != nil {
		logger.Error("token service", "error", err)
		os.Exit(1)
	}

	var transport email.Transport = email.LogTransport{Logger: logger}
	if cfg.SMTP.Host != "" {
		transport = email.NewSMTPTransport(email.SMTPConfig{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
		})
	}
	mailer := email.NewMailer(transport, email.Config{From: cfg.SMTP.From, FrontendURL: cfg.FrontendURL})

	as := impl.NewAuthServiceImpl(st, attempts, pw, ts, mailer)
	acc := impl.NewAccountServiceImpl(st, pw, mailer)
	authn := impl.NewAuthenticatorImpl(st, ts)

	// 4) Maintenance
	worker := scheduler.NewCleanupWorker(cfg.CleanupInterval.Duration(), as, st)
	worker.Start(ctx)
	defer worker.Stop()

	// 5) HTTP
	handler := httpx.NewRouter(as, acc, authn, httpx.Options{
		CORSOrigins:        cfg.CORSOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		TrustProxy:         cfg.TrustProxy,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Cookies: httpx.CookieConfig{
			Production:     cfg.Production(),
			Domain:         cfg.CookieDomain,
			RefreshTTL:     cfg.RefreshTTL.Duration(),
			RefreshTTLLong: cfg.RefreshTTLLong.Duration(),
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("auth service listening", "addr", srv.Addr, "issuer", cfg.Issuer)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
