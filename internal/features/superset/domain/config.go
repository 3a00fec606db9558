package domain

import (
	"fmt"
	"strings"
	"time"

	"superset-embed/internal/common"
)

// Timeout bounds accepted for upstream calls
const (
	MinTimeout = 5 * time.Second
	MaxTimeout = 300 * time.Second
)

// Parameter store keys holding the Superset connection settings
const (
	KeyURL          = "superset.url"
	KeyUsername     = "superset.username"
	KeyPassword     = "superset.password"
	KeyTimeout      = "superset.timeout"
	KeyDebugMode    = "superset.debug_mode"
	KeyCacheEnabled = "superset.cache_enabled"
)

// ParameterKeys lists every key read by the config provider
var ParameterKeys = []string{
	KeyURL,
	KeyUsername,
	KeyPassword,
	KeyTimeout,
	KeyDebugMode,
	KeyCacheEnabled,
}

// Config holds the Superset connection settings
type Config struct {
	BaseURL      string        `json:"base_url"`
	Username     string        `json:"username"`
	Password     string        `json:"password"`
	Timeout      time.Duration `json:"timeout"`
	Debug        bool          `json:"debug"`
	CacheEnabled bool          `json:"cache_enabled"`
}

// Validate returns every violated rule, or nil when the config is usable
func (c Config) Validate() []string {
	var problems []string

	url := strings.TrimSpace(c.BaseURL)
	switch {
	case url == "":
		problems = append(problems, "superset url is required")
	case !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://"):
		problems = append(problems, "superset url must start with http:// or https://")
	}

	if strings.TrimSpace(c.Username) == "" {
		problems = append(problems, "username is required")
	}
	if c.Password == "" {
		problems = append(problems, "password is required")
	}

	if c.Timeout < MinTimeout || c.Timeout > MaxTimeout {
		problems = append(problems, fmt.Sprintf(
			"timeout must be between %d and %d seconds",
			int(MinTimeout.Seconds()), int(MaxTimeout.Seconds()),
		))
	}

	return problems
}

// Configured reports whether the config passes validation
func (c Config) Configured() bool {
	return len(c.Validate()) == 0
}

// ValidateConfig returns a config error listing every problem, or nil
func ValidateConfig(c Config) error {
	if problems := c.Validate(); len(problems) > 0 {
		return common.NewConfigError(problems)
	}
	return nil
}

// URL joins path onto the base URL
func (c Config) URL(path string) string {
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/") + path
}

// CacheKeySource is the credential identity the token cache is keyed by.
// The NUL separator keeps url and username boundaries unambiguous.
func (c Config) CacheKeySource() string {
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/") + "\x00" + strings.TrimSpace(c.Username)
}

// Redacted returns a copy safe for logging and display
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "********"
	}
	return c
}
