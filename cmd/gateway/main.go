package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"guru-gateway/middleware/admission"
	"guru-gateway/middleware/admission/application"
	"guru-gateway/middleware/admission/domain"
	"guru-gateway/middleware/admission/infra"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.logLevel)
	slog.SetDefault(logger)

	target, err := url.Parse(cfg.upstreamURL)
	if err != nil {
		logger.Error("invalid UPSTREAM_URL", "error", err)
		os.Exit(1)
	}

	classes, fallback, err := loadLimits(cfg.limitsFile)
	if err != nil {
		logger.Error("limits file error", "error", err)
		os.Exit(1)
	}

	trusted, err := admission.TrustedRanger(cfg.trustedProxies)
	if err != nil {
		logger.Error("trusted proxies error", "error", err)
		os.Exit(1)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("proxy error", "error", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		windows   domain.WindowStore
		cooldowns domain.CooldownStore
		events    domain.EventStore
	)

	if cfg.redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancelPing()
		if err != nil {
			logger.Error("redis ping error", "error", err)
			os.Exit(1)
		}

		windows = infra.NewRedisWindowStore(rdb)
		cooldowns = infra.NewRedisCooldownStore(rdb)
		if cfg.eventsEnabled {
			events = infra.NewRedisEventStore(
				rdb,
				infra.WithEventPrefix(cfg.eventsPrefix),
				infra.WithEventTTL(cfg.eventsTTL),
				infra.WithEventBucket(cfg.eventsBucket),
				infra.WithEventTrackKeysRedis(cfg.eventsTrackKeys),
			)
		}
	} else {
		memWindows := infra.NewMemoryWindowStore()
		memWindows.StartJanitor(ctx)
		windows = memWindows

		memCooldowns := infra.NewMemoryCooldownStore()
		memCooldowns.StartJanitor(ctx)
		cooldowns = memCooldowns

		if cfg.eventsEnabled {
			events = infra.NewMemoryEventStore(infra.WithEventTrackKeys(cfg.eventsTrackKeys))
		}
	}

	history := infra.NewMemoryHistoryStore()
	history.StartJanitor(ctx)

	h := http.Handler(proxy)
	h = admission.Middleware(admission.Options{
		Windows:       windows,
		Cooldowns:     cooldowns,
		Resolver:      application.NewResolver(classes, fallback),
		FingerprintFn: admission.Fingerprint(trusted),
		Detector:      &application.Detector{History: history},
		OnBotDetected: func(domain.Key) time.Duration { return cfg.botCooldown },
		Filter:        application.NewFilter(infra.DefaultRules()),
		Events:        events,
		Logger:        logger,
	})(h)
	h = admission.ConcurrencyMiddleware(admission.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
		Events:         events,
	})(h)
	h = admission.ShieldMiddleware(admission.ShieldOptions{
		RPS:    cfg.shieldRPS,
		Burst:  cfg.shieldBurst,
		Events: events,
	})(h)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("gateway listening", "addr", cfg.listenAddr, "upstream", target.String())
	logger.Info("admission",
		"classes", len(classes),
		"redis", cfg.redisAddr != "",
		"trustedProxies", len(cfg.trustedProxies),
		"botCooldown", cfg.botCooldown,
	)
	logger.Info("capacity", "shieldRPS", cfg.shieldRPS, "concurrencyMax", cfg.concurrencyMax, "acquireTimeout", cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
