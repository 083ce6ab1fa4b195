package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/MolScope/internal/application/ingestion"
	"github.com/turtacn/MolScope/internal/application/visualization"
	"github.com/turtacn/MolScope/internal/config"
	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/infrastructure/database/redis"
	"github.com/turtacn/MolScope/internal/infrastructure/depiction"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolScope/internal/infrastructure/session"
	httpserver "github.com/turtacn/MolScope/internal/interfaces/http"
	"github.com/turtacn/MolScope/internal/interfaces/http/handlers"
	"github.com/turtacn/MolScope/internal/interfaces/http/middleware"
)

// sessionGaugeInterval is how often the active session gauge is refreshed.
const sessionGaugeInterval = 30 * time.Second

// app is the assembled API server.
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	server  *httpserver.Server
	store   session.Store
	memory  *session.MemoryStore
	redis   *redis.Client
	limiter *middleware.TokenBucketLimiter
}

func newApp(cfg *config.Config, logger logging.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	collector, err := newCollector(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.metrics = prometheus.NewAppMetrics(collector)

	base, err := a.newStore()
	if err != nil {
		return nil, err
	}
	a.store = session.NewInstrumented(base, a.metrics)

	if cfg.RateLimit.Enabled {
		a.limiter = middleware.NewTokenBucketLimiter(cfg.RateLimit.HoverRPS, cfg.RateLimit.HoverBurst, time.Minute)
	}

	calc := molecule.NewCalculator(logger.Named("molecule"))
	renderer := depiction.NewRenderer(depiction.Options{
		Size:        cfg.Depiction.ImageSize,
		MaxFontSize: cfg.Depiction.FontSize,
	}, logger.Named("depiction"))
	ingest := ingestion.NewService(calc, a.metrics, logger.Named("ingestion"))
	hover := visualization.NewService(renderer, cfg.Depiction.TooltipWidth, a.metrics, logger.Named("hover"))

	routerCfg := httpserver.RouterConfig{
		PageHandler: handlers.NewPageHandler(ingest, handlers.PageConfig{
			MaxBytes:          cfg.Upload.MaxBytes,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
			PlotlyURL:         cfg.Plot.PlotlyURL,
		}, a.metrics, logger.Named("pages")),
		APIHandler: handlers.NewAPIHandler(hover, handlers.PlotSize{
			Width:  cfg.Plot.StaticWidth,
			Height: cfg.Plot.StaticHeight,
		}, a.metrics, logger.Named("api")),
		HealthHandler: handlers.NewHealthHandler(version,
			&sessionHealthAdapter{store: a.store},
			newRendererHealthAdapter(renderer)),
		SessionStore: a.store,
		SessionConfig: middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.CookieSecure,
		},
		HoverLimiter: a.limiter,
		MaxUpload:    cfg.Upload.MaxBytes,
		Logging:      middleware.DefaultLoggingConfig(),
		Logger:       logger.Named("http"),
		Metrics:      a.metrics,
		Mode:         cfg.Server.Mode,
	}
	if cfg.Metrics.Enabled {
		routerCfg.Collector = collector
		routerCfg.MetricsPath = cfg.Metrics.Path
		routerCfg.Logging.SkipPaths = append(routerCfg.Logging.SkipPaths, cfg.Metrics.Path)
	}

	router, err := httpserver.NewRouter(routerCfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.server = httpserver.NewServer(cfg.Server, router, logger.Named("http"))
	return a, nil
}

func newCollector(cfg *config.Config, logger logging.Logger) (prometheus.MetricsCollector, error) {
	if !cfg.Metrics.Enabled {
		return prometheus.NewNoopCollector(), nil
	}
	return prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger.Named("metrics"))
}

func (a *app) newStore() (session.Store, error) {
	switch a.cfg.Session.Backend {
	case session.BackendRedis:
		rc := a.cfg.Redis
		client, err := redis.NewClient(&redis.RedisConfig{
			Addr:         rc.Addr,
			Password:     rc.Password,
			DB:           rc.DB,
			PoolSize:     rc.PoolSize,
			MinIdleConns: rc.MinIdleConns,
			DialTimeout:  rc.DialTimeout,
			ReadTimeout:  rc.ReadTimeout,
			WriteTimeout: rc.WriteTimeout,
		}, a.logger.Named("redis"))
		if err != nil {
			return nil, err
		}
		a.redis = client
		return session.NewRedisStore(client, rc.KeyPrefix, a.cfg.Session.TTL), nil
	default:
		a.memory = session.NewMemoryStore(a.cfg.Session.TTL, a.logger.Named("session"))
		return a.memory, nil
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *app) Run(ctx context.Context) error {
	defer a.close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(a.server.Start)
	g.Go(func() error {
		<-ctx.Done()
		return a.server.Shutdown(context.Background())
	})
	if a.memory != nil {
		g.Go(func() error { return a.memory.Run(ctx, a.cfg.Session.SweepInterval) })
	}
	g.Go(func() error { return a.refreshSessionGauge(ctx) })

	return g.Wait()
}

// refreshSessionGauge samples the store size for the active_sessions gauge.
func (a *app) refreshSessionGauge(ctx context.Context) error {
	ticker := time.NewTicker(sessionGaugeInterval)
	defer ticker.Stop()
	for {
		if _, err := a.store.Count(ctx); err != nil && ctx.Err() == nil {
			a.logger.Warn("session count failed", logging.Err(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// applyReload applies the settings that may change at runtime.
func (a *app) applyReload(next *config.Config) {
	if lc, ok := a.logger.(logging.LevelController); ok && next.Log.Level != "" {
		if err := lc.SetLevel(next.Log.Level); err != nil {
			a.logger.Warn("log level not applied", logging.Err(err))
			a.metrics.ConfigReloadsTotal.WithLabelValues("error").Inc()
			return
		}
	}
	if a.limiter != nil && next.RateLimit.HoverRPS > 0 {
		a.limiter.SetRate(next.RateLimit.HoverRPS, next.RateLimit.HoverBurst)
	}
	a.metrics.ConfigReloadsTotal.WithLabelValues("ok").Inc()
	a.logger.Info("configuration reloaded",
		logging.String("log_level", next.Log.Level),
		logging.Float64("hover_rps", next.RateLimit.HoverRPS),
		logging.Int("hover_burst", next.RateLimit.HoverBurst))
}

func (a *app) close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close failed", logging.Err(err))
		}
	}
}
