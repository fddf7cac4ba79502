package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/snapstash/internal/config"
	"github.com/MrSnakeDoc/snapstash/internal/domain"
	"github.com/MrSnakeDoc/snapstash/internal/httpserver"
	"github.com/MrSnakeDoc/snapstash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snapstash/internal/index"
	"github.com/MrSnakeDoc/snapstash/internal/logger"
	"github.com/MrSnakeDoc/snapstash/internal/metrics"
	"github.com/MrSnakeDoc/snapstash/internal/recordstore"
	"github.com/MrSnakeDoc/snapstash/internal/redis"
	"github.com/MrSnakeDoc/snapstash/internal/scheduler"
	filestore "github.com/MrSnakeDoc/snapstash/internal/store/file"
	"github.com/MrSnakeDoc/snapstash/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/snapstash/internal/store/redis"
	"github.com/MrSnakeDoc/snapstash/internal/store/sqlite"
	"github.com/MrSnakeDoc/snapstash/internal/utils"
	"github.com/MrSnakeDoc/snapstash/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	store    *recordstore.Store
	reloader *scheduler.CategoryReloader
	pruner   *scheduler.HistoryPruner
}

// New loads the configuration, opens the backend and the record store, and
// builds the HTTP server. ctx bounds the startup work (redis retries).
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	backend, err := openBackend(ctx, cfg, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	loggerClient.Info("backend initialized", logger.String("backend", cfg.Backend))

	// Built-in categories until the file (if any) is loaded
	categories := index.NewCategoryIndex(domain.DefaultCategories())

	store, err := recordstore.Open(ctx, backend, recordstore.Options{
		AcceptCategory: categories.Contains,
		MaxHistory:     cfg.MaxHistory,
		Logger:         loggerClient.With(logger.String("component", "recordstore")),
	})
	if err != nil {
		utils.Close(backend)
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	loggerClient.Info("record store loaded",
		logger.Int("items", store.Len()),
		logger.Int("history_depth", store.HistoryDepth()))

	metrics.SetState(store.Len(), store.HistoryDepth())
	metrics.Categories.Set(float64(categories.Count()))

	// Category reloader (if a category file is configured)
	var reloader *scheduler.CategoryReloader
	var reloadTrigger chan struct{}
	if cfg.CategoryFile != "" {
		loggerClient.Info("category file configured, initializing category reloader",
			logger.String("file", cfg.CategoryFile))
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewCategoryReloader(
			cfg.CategoryFile,
			categories,
			loggerClient,
			cfg.ReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("category file not configured, using built-in categories")
	}

	// History pruner (if entries expire)
	var pruner *scheduler.HistoryPruner
	if cfg.HistoryMaxAge > 0 {
		pruner = scheduler.NewHistoryPruner(
			store,
			loggerClient,
			cfg.PruneInterval,
			cfg.HistoryMaxAge,
			time.Now,
		)
	}

	d := deps.Deps{
		Logger:           loggerClient,
		StartTime:        time.Now(),
		Version:          version.Version,
		Commit:           version.Commit,
		BuildDate:        version.BuildDate,
		GoVersion:        version.GoVersion,
		TimeNow:          time.Now,
		AllowedHosts:     cfg.AllowedHosts,
		AllowedCIDRS:     cfg.AllowedCIDRS,
		AllowedOrigins:   cfg.AllowedOrigins,
		TrustProxy:       cfg.TrustProxy,
		Store:            store,
		Categories:       categories,
		BackendName:      cfg.Backend,
		CategoryFile:     cfg.CategoryFile,
		MaxPreviewLength: cfg.MaxPreviewLength,
		RequestTimeout:   cfg.RequestTimeout,
		RateLimitBurst:   cfg.RateLimitBurst,
		RateLimitPerMin:  cfg.RateLimitPerMinute,
		ReloadTrigger:    reloadTrigger,
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   httpserver.New(cfg, loggerClient, d),
		store:    store,
		reloader: reloader,
		pruner:   pruner,
	}, nil
}

// openBackend builds the persistence backend named by cfg.Backend.
func openBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (recordstore.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("memory backend selected, saved items are lost on restart")
		return memory.NewBackend(), nil

	case config.BackendRedis:
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, err
		}
		return redisstore.NewBackend(client, cfg.RedisKeyPrefix), nil

	case config.BackendSQLite:
		b, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return b, nil

	case config.BackendFile:
		return filestore.NewBackend(cfg.DataFile), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Run starts the schedulers and the HTTP server, and blocks until ctx is
// cancelled (SIGINT/SIGTERM) or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting SnapStash v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	// Closed last, after the server drained in-flight requests
	defer utils.MustClose(a.store, "record store", a.logger)

	// Start category reloader (loads the file and starts periodic refresh)
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start category reloader: %w", err)
		}
		a.logger.Info("category reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	// Start history pruner
	if a.pruner != nil {
		if err := a.pruner.Start(ctx); err != nil {
			return fmt.Errorf("failed to start history pruner: %w", err)
		}
		a.logger.Info("history pruner started",
			logger.Duration("interval", a.cfg.PruneInterval),
			logger.Duration("max_age", a.cfg.HistoryMaxAge))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}
	if a.pruner != nil {
		a.pruner.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if runErr == nil {
		a.logger.Info("✅ SnapStash stopped cleanly")
	}
	return runErr
}
