package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superset-embed/internal/features/superset/domain"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

// writeConfig writes content to a temp file and provides a valid signing key through the environment
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	t.Setenv("SUPERSET_EMBED_AUTH_SIGNING_KEY", testSigningKey)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  component: embedder\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 30, cfg.Superset.Timeout)
	assert.True(t, cfg.Superset.CacheEnabled)
	assert.Equal(t, 4*time.Minute, cfg.Superset.CacheTTL)
	assert.Equal(t, 4, cfg.Superset.ProbeWorkers)
	assert.Equal(t, "guest", cfg.Superset.Guest.Username)
	assert.Equal(t, "embedder", cfg.App.Component)
	assert.Equal(t, "json", cfg.App.LogFormat)
	assert.Empty(t, cfg.Server.TrustedProxies, "No proxy should be trusted by default")
	assert.Equal(t, 30*time.Second, cfg.Auth.Leeway)
	assert.Equal(t, testSigningKey, cfg.Auth.SigningKey)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":9090"
  rate_limit: 0
store:
  driver: sqlite
  sqlite_path: /var/lib/superset-embed/settings.db
superset:
  url: https://superset.example.com
  username: admin
  password: secret
  timeout: 60
  cache_ttl: 2m
  guest:
    username: viewer
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Zero(t, cfg.Server.RateLimit)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/var/lib/superset-embed/settings.db", cfg.Store.SQLitePath)
	assert.Equal(t, 2*time.Minute, cfg.Superset.CacheTTL)
	assert.Equal(t, domain.GuestUser{Username: "viewer", FirstName: "Guest", LastName: "User"}, cfg.Superset.GuestUser())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SUPERSET_EMBED_SERVER_PORT", ":7070")
	t.Setenv("SUPERSET_EMBED_SUPERSET_PASSWORD", "from-env")
	t.Setenv("SUPERSET_EMBED_APP_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "superset:\n  password: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Superset.Password, "Environment should override the file")
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err, "An explicit config path must exist")

	cases := map[string]string{
		"unknown driver":      "store:\n  driver: etcd\n",
		"sqlite without path": "store:\n  driver: sqlite\n  sqlite_path: \"\"\n",
		"kubernetes secret":   "store:\n  driver: kubernetes\n  secret_name: \"\"\n",
		"zero ttl":            "superset:\n  cache_ttl: 0s\n",
		"zero workers":        "superset:\n  probe_workers: 0\n",
		"negative rate":       "server:\n  rate_limit: -1\n",
		"empty port":          "server:\n  port: \"\"\n",
		"negative leeway":     "auth:\n  leeway: -1s\n",
		"bad trusted proxy":   "server:\n  trusted_proxies: [\"not-an-ip\"]\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoadRequiresSigningKey(t *testing.T) {
	path := writeConfig(t, "app:\n  component: embedder\n")

	for _, key := range []string{"", "too-short"} {
		t.Setenv("SUPERSET_EMBED_AUTH_SIGNING_KEY", key)

		_, err := Load(path)
		require.Error(t, err, "The API must not start without a way to verify callers")
		assert.Contains(t, err.Error(), "auth.signing_key")
	}
}

func TestLoadAuthAndProxies(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  trusted_proxies: ["10.0.0.0/8", "192.0.2.1"]
auth:
  issuer: host-app
  audience: superset-embed
  leeway: 5s
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)
	assert.Equal(t, "host-app", cfg.Auth.Issuer)
	assert.Equal(t, "superset-embed", cfg.Auth.Audience)
	assert.Equal(t, 5*time.Second, cfg.Auth.Leeway)
}

func TestSupersetSeed(t *testing.T) {
	seed := SupersetConfig{
		URL:          " https://superset.example.com ",
		Username:     "admin",
		Password:     "secret",
		Timeout:      45,
		CacheEnabled: true,
	}.Seed()

	assert.Equal(t, map[string]string{
		domain.KeyURL:          "https://superset.example.com",
		domain.KeyUsername:     "admin",
		domain.KeyPassword:     "secret",
		domain.KeyTimeout:      "45",
		domain.KeyDebugMode:    "false",
		domain.KeyCacheEnabled: "true",
	}, seed)
}

func TestDetermineKubeconfigPath(t *testing.T) {
	assert.Equal(t, "/tmp/explicit", determineKubeconfigPath("/tmp/explicit"))

	t.Setenv("KUBECONFIG", "/tmp/from-env")
	assert.Equal(t, "/tmp/from-env", determineKubeconfigPath(""))

	assert.True(t, shouldUseInClusterConfig(""))
	assert.True(t, shouldUseInClusterConfig(filepath.Join(t.TempDir(), "missing")))

	existing := writeConfig(t, "apiVersion: v1\n")
	assert.False(t, shouldUseInClusterConfig(existing))
}
