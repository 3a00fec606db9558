package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"k8s.io/client-go/kubernetes"

	"superset-embed/cmd/app"
	"superset-embed/internal/api/v1/handler"
	"superset-embed/internal/api/v1/middleware"
	"superset-embed/internal/common"
	"superset-embed/internal/features/superset"
	supersethttp "superset-embed/internal/features/superset/adapter/http"
)

// Options are the command line overrides for Run
type Options struct {
	ConfigPath string
	LogLevel   string
}

// Run loads the configuration, serves the API and blocks until ctx is done or a signal arrives
func Run(ctx context.Context, opts Options) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration
	cfg, err := app.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.App.LogLevel = opts.LogLevel
	}

	// 2. Logger
	logger := common.NewLogger(common.LoggerConfig{
		Level:     common.ParseLogLevel(cfg.App.LogLevel),
		Output:    os.Stdout,
		Format:    cfg.App.LogFormat,
		Component: cfg.App.Component,
	})
	slog.SetDefault(logger)
	ctx = common.ContextWithLogger(ctx, logger)

	// 3. Kubernetes client, only for the kubernetes store
	var clientset kubernetes.Interface
	if strings.EqualFold(cfg.Store.Driver, superset.DriverKubernetes) {
		clientset, err = app.NewKubeClient(&cfg.Kubernetes)
		if err != nil {
			return err
		}
	}

	// 4. Parameter store
	storeConfig := superset.StoreConfig{
		Driver:     cfg.Store.Driver,
		SQLitePath: cfg.Store.SQLitePath,
		Namespace:  cfg.Store.Namespace,
		SecretName: cfg.Store.SecretName,
		Seed:       cfg.Superset.Seed(),
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	store, closer, err := superset.NewParameterStore(initCtx, storeConfig, clientset)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to open %s parameter store: %w", cfg.Store.Driver, err)
	}
	defer closer.Close()

	// 5. Services
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpClientConfig := supersethttp.DefaultClientConfig()
	httpClientConfig.InsecureSkipVerify = cfg.Superset.InsecureSkipVerify

	services, err := superset.NewSupersetServices(
		store,
		superset.NewEventRecorder(storeConfig, clientset, cfg.App.Component),
		registry,
		superset.Config{
			CacheTTL:       cfg.Superset.CacheTTL,
			ProbeWorkers:   cfg.Superset.ProbeWorkers,
			DefaultGuest:   cfg.Superset.GuestUser(),
			DefaultTimeout: time.Duration(cfg.Superset.Timeout) * time.Second,
			HTTPClient:     httpClientConfig,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to initialize superset services: %w", err)
	}

	loaded, err := services.Settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read superset settings: %w", err)
	}
	if problems := loaded.Validate(); len(problems) > 0 {
		logger.Warn("superset is not configured yet, use PUT /api/v1/settings", "problems", problems)
	}

	// 6. Serve
	router, err := NewRouter(logger, registry, services, cfg.Server, cfg.Auth)
	if err != nil {
		return err
	}
	return serve(ctx, logger, router, cfg.Server)
}

// NewRouter builds the gin engine with every API route and /metrics.
// Health probes and /metrics are open; everything else needs a bearer token.
func NewRouter(
	logger *slog.Logger,
	gatherer prometheus.Gatherer,
	services *superset.Services,
	serverConfig app.ServerConfig,
	authConfig app.AuthConfig,
) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	if err := router.SetTrustedProxies(serverConfig.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(
		middleware.Logging(logger),
		middleware.Recovery(),
		middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: serverConfig.RateLimit,
			Burst:             serverConfig.RateBurst,
		}),
	)

	access := handler.NewAccess(middleware.AuthConfig{
		SigningKey: []byte(authConfig.SigningKey),
		Issuer:     authConfig.Issuer,
		Audience:   authConfig.Audience,
		Leeway:     authConfig.Leeway,
	})

	handler.NewHealthHandler(services.Settings).SetupRoutes(router)
	handler.NewDashboardHandler(services.Settings, services.Dashboards).SetupRoutes(router, access)
	handler.NewTokenHandler(services.Settings, services.Auth, services.Dashboards, services.Events).SetupRoutes(router, access)
	handler.NewSettingsHandler(services.Settings, services.Auth, services.Events).SetupRoutes(router, access)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return router, nil
}

// serve runs the HTTP server until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, logger *slog.Logger, router http.Handler, serverConfig app.ServerConfig) error {
	srv := &http.Server{
		Addr:              serverConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", serverConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server", "timeout", serverConfig.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
