package superset

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/client-go/kubernetes"

	"superset-embed/internal/features/superset/adapter/http"
	ks "superset-embed/internal/features/superset/adapter/kubernetes"
	"superset-embed/internal/features/superset/adapter/memory"
	"superset-embed/internal/features/superset/adapter/sqlite"
	"superset-embed/internal/features/superset/domain"
	"superset-embed/internal/features/superset/usecase"
)

// Store drivers
const (
	DriverMemory     = "memory"
	DriverSQLite     = "sqlite"
	DriverKubernetes = "kubernetes"
)

// StoreConfig selects and configures the parameter store
type StoreConfig struct {
	Driver     string
	SQLitePath string
	Namespace  string
	SecretName string

	// Seed values are written for keys the store does not hold yet
	Seed map[string]string
}

// Config holds the configuration for the superset package
type Config struct {
	CacheTTL       time.Duration
	ProbeWorkers   int
	DefaultGuest   domain.GuestUser
	DefaultTimeout time.Duration
	HTTPClient     http.ClientConfig
}

// Services contains all the services provided by the superset package
type Services struct {
	Settings   domain.ConfigSource
	Auth       domain.AuthProvider
	Dashboards domain.DashboardProvider
	Events     domain.EventRecorder
	Cache      *usecase.TokenCache
	Metrics    *usecase.MetricsCollector
}

// NewSupersetServices creates and initializes all superset services over store.
// A nil events recorder logs events instead.
func NewSupersetServices(
	store domain.ParameterStore,
	events domain.EventRecorder,
	reg prometheus.Registerer,
	config Config,
) (*Services, error) {
	if store == nil {
		return nil, fmt.Errorf("parameter store cannot be nil")
	}
	if events == nil {
		events = usecase.NewLogEventRecorder()
	}

	httpClientConfig := config.HTTPClient
	if httpClientConfig == (http.ClientConfig{}) {
		httpClientConfig = http.DefaultClientConfig()
	}
	httpClient, err := http.NewClient(httpClientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	metrics := usecase.NewMetricsCollector(reg)
	cache := usecase.NewTokenCache()

	authService := usecase.NewAuthService(usecase.AuthServiceConfig{
		CacheTTL:     config.CacheTTL,
		ExpiryMargin: usecase.DefaultAuthServiceConfig().ExpiryMargin,
	}, cache, httpClient, metrics)

	dashboardService := usecase.NewDashboardService(usecase.DashboardServiceConfig{
		ProbeWorkers: config.ProbeWorkers,
		DefaultGuest: config.DefaultGuest,
	}, authService, httpClient, metrics)

	providerConfig := usecase.DefaultConfigProviderConfig()
	if config.DefaultTimeout > 0 {
		providerConfig.DefaultTimeout = config.DefaultTimeout
	}

	return &Services{
		Settings:   usecase.NewConfigProvider(providerConfig, store),
		Auth:       authService,
		Dashboards: dashboardService,
		Events:     events,
		Cache:      cache,
		Metrics:    metrics,
	}, nil
}

// NewParameterStore opens the store selected by config.Driver and applies the seed.
// The returned closer releases the store and is never nil.
func NewParameterStore(ctx context.Context, config StoreConfig, clientset kubernetes.Interface) (domain.ParameterStore, io.Closer, error) {
	var (
		store  domain.ParameterStore
		closer io.Closer = nopCloser{}
	)

	switch strings.ToLower(strings.TrimSpace(config.Driver)) {
	case "", DriverMemory:
		return memory.NewStore(config.Seed), closer, nil

	case DriverSQLite:
		db, err := sqlite.Open(ctx, config.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, closer = db, db

	case DriverKubernetes:
		if clientset == nil {
			return nil, nil, fmt.Errorf("kubernetes client cannot be nil")
		}
		if config.Namespace == "" || config.SecretName == "" {
			return nil, nil, fmt.Errorf("kubernetes store requires namespace and secret name")
		}
		store = ks.NewSecretStore(clientset, config.Namespace, config.SecretName)

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", config.Driver)
	}

	if err := seedMissing(ctx, store, config.Seed); err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("failed to seed parameter store: %w", err)
	}

	return store, closer, nil
}

// NewEventRecorder returns a Kubernetes event recorder for the kubernetes driver and a log recorder otherwise
func NewEventRecorder(config StoreConfig, clientset kubernetes.Interface, component string) domain.EventRecorder {
	if !strings.EqualFold(strings.TrimSpace(config.Driver), DriverKubernetes) || clientset == nil {
		return usecase.NewLogEventRecorder()
	}

	recorderConfig := ks.DefaultEventRecorderConfig()
	recorderConfig.Namespace = config.Namespace
	recorderConfig.SecretName = config.SecretName
	if component != "" {
		recorderConfig.Component = component
	}
	return ks.NewEventRecorder(clientset, recorderConfig)
}

// seedMissing writes seed values whose keys are absent, leaving saved settings alone
func seedMissing(ctx context.Context, store domain.ParameterStore, seed map[string]string) error {
	if len(seed) == 0 {
		return nil
	}

	keys := make([]string, 0, len(seed))
	for key := range seed {
		keys = append(keys, key)
	}

	existing, err := store.GetParams(ctx, keys)
	if err != nil {
		return err
	}

	missing := make(map[string]string)
	for key, value := range seed {
		if _, ok := existing[key]; !ok && value != "" {
			missing[key] = value
		}
	}
	if len(missing) == 0 {
		return nil
	}

	return store.SetParams(ctx, missing)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
