package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"superset-embed/internal/common"
	"superset-embed/internal/features/superset/domain"
)

// ConfigProviderConfig holds the defaults applied to absent parameters
type ConfigProviderConfig struct {
	DefaultTimeout      time.Duration
	DefaultCacheEnabled bool
}

// DefaultConfigProviderConfig returns the default config provider configuration
func DefaultConfigProviderConfig() ConfigProviderConfig {
	return ConfigProviderConfig{
		DefaultTimeout:      30 * time.Second,
		DefaultCacheEnabled: true,
	}
}

// ConfigProvider implements domain.ConfigSource over a parameter store
type ConfigProvider struct {
	config ConfigProviderConfig
	store  domain.ParameterStore
}

// NewConfigProvider creates a new config provider
func NewConfigProvider(config ConfigProviderConfig, store domain.ParameterStore) domain.ConfigSource {
	if store == nil {
		panic("parameter store cannot be nil")
	}

	return &ConfigProvider{
		config: config,
		store:  store,
	}
}

// Load reads the Superset settings. Values that cannot be coerced are zeroed so validation reports them.
func (p *ConfigProvider) Load(ctx context.Context) (domain.Config, error) {
	values, err := p.store.GetParams(ctx, domain.ParameterKeys)
	if err != nil {
		return domain.Config{}, common.ConfigUnavailableError(err)
	}

	return domain.Config{
		BaseURL:      strings.TrimSpace(values[domain.KeyURL]),
		Username:     strings.TrimSpace(values[domain.KeyUsername]),
		Password:     values[domain.KeyPassword],
		Timeout:      parseTimeout(values[domain.KeyTimeout], p.config.DefaultTimeout),
		Debug:        parseBool(values[domain.KeyDebugMode], false),
		CacheEnabled: parseBool(values[domain.KeyCacheEnabled], p.config.DefaultCacheEnabled),
	}, nil
}

// Save validates cfg and writes every parameter
func (p *ConfigProvider) Save(ctx context.Context, cfg domain.Config) error {
	if err := domain.ValidateConfig(cfg); err != nil {
		return err
	}

	values := map[string]string{
		domain.KeyURL:          strings.TrimSpace(cfg.BaseURL),
		domain.KeyUsername:     strings.TrimSpace(cfg.Username),
		domain.KeyPassword:     cfg.Password,
		domain.KeyTimeout:      strconv.Itoa(int(cfg.Timeout / time.Second)),
		domain.KeyDebugMode:    strconv.FormatBool(cfg.Debug),
		domain.KeyCacheEnabled: strconv.FormatBool(cfg.CacheEnabled),
	}

	if err := p.store.SetParams(ctx, values); err != nil {
		return common.ConfigUnavailableError(fmt.Errorf("failed to save superset settings: %w", err))
	}

	common.LoggerFromContext(ctx).Info("superset settings saved",
		"url", values[domain.KeyURL],
		"username", values[domain.KeyUsername])
	return nil
}

// parseTimeout accepts whole seconds ("30") or a duration ("30s")
func parseTimeout(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return 0
}

func parseBool(raw string, fallback bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return fallback
}
