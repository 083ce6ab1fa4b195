package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolScope/internal/application/ingestion"
	"github.com/turtacn/MolScope/internal/application/visualization"
	"github.com/turtacn/MolScope/internal/config"
	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/infrastructure/depiction"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolScope/internal/infrastructure/session"
	httpserver "github.com/turtacn/MolScope/internal/interfaces/http"
	"github.com/turtacn/MolScope/internal/interfaces/http/handlers"
	"github.com/turtacn/MolScope/internal/interfaces/http/middleware"
)

// Stack is an in-process MolScope server wired the way cmd/apiserver wires
// it, with default configuration and a caller-chosen session store.
type Stack struct {
	Server  *httptest.Server
	Store   session.Store
	Metrics *prometheus.AppMetrics
	Logger  *MockLogger
	Config  *config.Config
}

// URL is the base URL of the running server.
func (s *Stack) URL() string { return s.Server.URL }

// NewStack starts a server over store, or over a fresh memory store when
// store is nil.  The server is closed when the test ends.
func NewStack(t testing.TB, store session.Store) *Stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	logger := NewMockLogger()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "molscope_test"}, logger.Named("metrics"))
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	if store == nil {
		store = session.NewMemoryStore(cfg.Session.TTL, logger.Named("session"))
	}
	store = session.NewInstrumented(store, metrics)

	calc := molecule.NewCalculator(logger.Named("molecule"))
	renderer := depiction.NewRenderer(depiction.Options{
		Size:        cfg.Depiction.ImageSize,
		MaxFontSize: cfg.Depiction.FontSize,
	}, logger.Named("depiction"))
	ingest := ingestion.NewService(calc, metrics, logger.Named("ingestion"))
	hover := visualization.NewService(renderer, cfg.Depiction.TooltipWidth, metrics, logger.Named("hover"))

	router, err := httpserver.NewRouter(httpserver.RouterConfig{
		PageHandler: handlers.NewPageHandler(ingest, handlers.PageConfig{
			MaxBytes:          cfg.Upload.MaxBytes,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
			PlotlyURL:         cfg.Plot.PlotlyURL,
		}, metrics, logger.Named("pages")),
		APIHandler: handlers.NewAPIHandler(hover, handlers.PlotSize{
			Width:  cfg.Plot.StaticWidth,
			Height: cfg.Plot.StaticHeight,
		}, metrics, logger.Named("api")),
		HealthHandler: handlers.NewHealthHandler("test", handlers.CheckerFunc{N: "session", Fn: store.Ping}),
		SessionStore:  store,
		SessionConfig: middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
		},
		MaxUpload:   cfg.Upload.MaxBytes,
		Logging:     middleware.DefaultLoggingConfig(),
		Logger:      logger.Named("http"),
		Metrics:     metrics,
		Collector:   collector,
		MetricsPath: cfg.Metrics.Path,
		Mode:        gin.TestMode,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &Stack{Server: srv, Store: store, Metrics: metrics, Logger: logger, Config: cfg}
}
