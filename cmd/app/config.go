package app

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"superset-embed/internal/features/superset/domain"
)

// EnvPrefix prefixes every environment override, e.g. SUPERSET_EMBED_SERVER_PORT
const EnvPrefix = "SUPERSET_EMBED"

// Config holds the complete application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Kubernetes configuration
	Kubernetes KubernetesConfig `mapstructure:"kubernetes"`

	// Store configuration
	Store StoreConfig `mapstructure:"store"`

	// Superset configuration
	Superset SupersetConfig `mapstructure:"superset"`

	// Auth configuration
	Auth AuthConfig `mapstructure:"auth"`

	// Application configuration
	App AppConfig `mapstructure:"app"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server listen address
	Port string `mapstructure:"port"`

	// ShutdownTimeout is the timeout for server shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RateLimit is the sustained requests per second per client; zero disables it
	RateLimit float64 `mapstructure:"rate_limit"`

	// RateBurst is the burst allowed above RateLimit
	RateBurst int `mapstructure:"rate_burst"`

	// TrustedProxies lists the IPs or CIDRs whose forwarding headers name the client
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// KubernetesConfig holds Kubernetes client configuration
type KubernetesConfig struct {
	// ConfigPath is the path to the kubeconfig file
	ConfigPath string `mapstructure:"config_path"`

	// MasterURL is the Kubernetes API server URL
	MasterURL string `mapstructure:"master_url"`
}

// StoreConfig selects where the Superset settings live
type StoreConfig struct {
	// Driver is one of memory, sqlite or kubernetes
	Driver string `mapstructure:"driver"`

	// SQLitePath is the database file for the sqlite driver
	SQLitePath string `mapstructure:"sqlite_path"`

	// Namespace and SecretName locate the secret for the kubernetes driver
	Namespace  string `mapstructure:"namespace"`
	SecretName string `mapstructure:"secret_name"`
}

// SupersetConfig holds the seed settings and the tuning of the embedding client
type SupersetConfig struct {
	// URL, Username, Password, Timeout, DebugMode and CacheEnabled seed the
	// parameter store; values saved through the settings API take precedence
	URL          string `mapstructure:"url"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Timeout      int    `mapstructure:"timeout"`
	DebugMode    bool   `mapstructure:"debug_mode"`
	CacheEnabled bool   `mapstructure:"cache_enabled"`

	// CacheTTL is the lifetime of a cached access token
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// ProbeWorkers bounds concurrent embedding probes
	ProbeWorkers int `mapstructure:"probe_workers"`

	// InsecureSkipVerify disables TLS verification; development only
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`

	// Guest is the identity used when a caller supplies none
	Guest GuestConfig `mapstructure:"guest"`
}

// GuestConfig holds the default guest identity
type GuestConfig struct {
	Username  string `mapstructure:"username"`
	FirstName string `mapstructure:"first_name"`
	LastName  string `mapstructure:"last_name"`
}

// AuthConfig holds the verification settings for bearer tokens minted by the host application
type AuthConfig struct {
	// SigningKey is the shared HMAC key, at least MinSigningKeyLength bytes
	SigningKey string `mapstructure:"signing_key"`

	// Issuer and Audience are enforced when set
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`

	// Leeway absorbs clock skew between the host application and this service
	Leeway time.Duration `mapstructure:"leeway"`
}

// MinSigningKeyLength is the shortest accepted HMAC key
const MinSigningKeyLength = 32

// AppConfig holds application configuration
type AppConfig struct {
	// Component is the name of the component
	Component string `mapstructure:"component"`

	// LogLevel is the log level
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is json or text
	LogFormat string `mapstructure:"log_format"`
}

// Seed returns the parameter store seed for the Superset settings
func (s SupersetConfig) Seed() map[string]string {
	return map[string]string{
		domain.KeyURL:          strings.TrimSpace(s.URL),
		domain.KeyUsername:     strings.TrimSpace(s.Username),
		domain.KeyPassword:     s.Password,
		domain.KeyTimeout:      strconv.Itoa(s.Timeout),
		domain.KeyDebugMode:    strconv.FormatBool(s.DebugMode),
		domain.KeyCacheEnabled: strconv.FormatBool(s.CacheEnabled),
	}
}

// GuestUser returns the default guest identity
func (s SupersetConfig) GuestUser() domain.GuestUser {
	return domain.GuestUser{
		Username:  s.Guest.Username,
		FirstName: s.Guest.FirstName,
		LastName:  s.Guest.LastName,
	}
}

// Load loads configuration from files and environment.
// An explicit path must exist; otherwise the standard search paths are tried.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure paths and file types
	configureViper(v, path)

	// Read configs file
	if err := readConfigs(v, path); err != nil {
		return nil, err
	}

	// Load environment variables from app.env
	loadEnvVars(v)

	// Unmarshal configuration
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configs: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// configureViper sets up Viper configuration paths and types
func configureViper(v *viper.Viper, path string) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/superset-embed/")
	}

	// Enable environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// readConfigs attempts to read the configuration file
func readConfigs(v *viper.Viper, path string) error {
	if err := v.ReadInConfig(); err != nil {
		// Only a missing file in the search paths is tolerated
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read configs file: %w", err)
		}
	}
	return nil
}

// loadEnvVars merges ./configs/app.env into the configuration when present
func loadEnvVars(v *viper.Viper) {
	envViper := viper.New()
	envViper.SetConfigName("app")
	envViper.SetConfigType("env")
	envViper.AddConfigPath("./configs")

	if err := envViper.ReadInConfig(); err == nil {
		for _, key := range envViper.AllKeys() {
			v.Set(key, envViper.Get(key))
		}
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if cfg.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit cannot be negative")
	}
	for _, proxy := range cfg.Server.TrustedProxies {
		if _, _, err := net.ParseCIDR(proxy); err != nil && net.ParseIP(proxy) == nil {
			return fmt.Errorf("server.trusted_proxies: %q is not an IP or CIDR", proxy)
		}
	}

	if len(cfg.Auth.SigningKey) < MinSigningKeyLength {
		return fmt.Errorf("auth.signing_key must be at least %d bytes", MinSigningKeyLength)
	}
	if cfg.Auth.Leeway < 0 {
		return fmt.Errorf("auth.leeway cannot be negative")
	}

	switch strings.ToLower(cfg.Store.Driver) {
	case "memory":
	case "sqlite":
		if cfg.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	case "kubernetes":
		if cfg.Store.Namespace == "" || cfg.Store.SecretName == "" {
			return fmt.Errorf("store.namespace and store.secret_name are required for the kubernetes driver")
		}
	default:
		return fmt.Errorf("store.driver must be one of memory, sqlite, kubernetes")
	}

	if cfg.Superset.CacheTTL <= 0 {
		return fmt.Errorf("superset.cache_ttl must be positive")
	}
	if cfg.Superset.ProbeWorkers <= 0 {
		return fmt.Errorf("superset.probe_workers must be positive")
	}

	// Superset connection settings are checked per operation so an
	// unconfigured service can still start and be configured at runtime.
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.trusted_proxies", []string{})

	// Auth defaults; the signing key has none
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.leeway", 30*time.Second)

	// Kubernetes defaults
	v.SetDefault("kubernetes.config_path", "")
	v.SetDefault("kubernetes.master_url", "")

	// Store defaults
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.sqlite_path", "superset-embed.db")
	v.SetDefault("store.namespace", "default")
	v.SetDefault("store.secret_name", "superset-embed")

	// Superset defaults
	v.SetDefault("superset.url", "")
	v.SetDefault("superset.username", "")
	v.SetDefault("superset.password", "")
	v.SetDefault("superset.timeout", 30)
	v.SetDefault("superset.debug_mode", false)
	v.SetDefault("superset.cache_enabled", true)
	v.SetDefault("superset.cache_ttl", 4*time.Minute)
	v.SetDefault("superset.probe_workers", 4)
	v.SetDefault("superset.insecure_skip_verify", false)
	v.SetDefault("superset.guest.username", "guest")
	v.SetDefault("superset.guest.first_name", "Guest")
	v.SetDefault("superset.guest.last_name", "User")

	// App defaults
	v.SetDefault("app.component", "superset-embed")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")
}
