// Package config loads and validates the vlansync configuration.
//
// Configuration is read once at startup into an immutable Config value
// and passed explicitly to the orchestrator; nothing reads ambient
// state afterwards. The primary format is a single YAML file; a legacy
// environment-variable mode (see env.go) remains for older deployments.
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vlansync/vlansync/pkg/util"
)

// Cache backends accepted in cache.backend.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
)

// FortiGateDevice describes one FortiGate controller to query.
type FortiGateDevice struct {
	Name         string `yaml:"name"`
	Host         string `yaml:"host"`
	APIToken     string `yaml:"api_token"`
	APITokenFile string `yaml:"api_token_file"`
	VerifySSL    *bool  `yaml:"verify_ssl"` // nil defaults to true
}

// VerifyTLS returns the effective TLS verification setting.
func (d *FortiGateDevice) VerifyTLS() bool {
	return d.VerifySSL == nil || *d.VerifySSL
}

// NetBoxConfig holds NetBox API connection settings.
type NetBoxConfig struct {
	URL          string `yaml:"url"`
	APIToken     string `yaml:"api_token"`
	APITokenFile string `yaml:"api_token_file"`
	Timeout      int    `yaml:"timeout"` // seconds, default 120
}

// RuntimeConfig holds run-mode flags and paths.
type RuntimeConfig struct {
	LogLevel      string `yaml:"log_level"`
	TestSwitch    string `yaml:"test_switch"` // single-switch mode when set
	DataDir       string `yaml:"data_dir"`    // snapshot store directory
	CacheDir      string `yaml:"cache_dir"`
	UseCachedData bool   `yaml:"use_cached_data"`

	// FlagNetboxOnlyPorts also reports NetBox interfaces absent from
	// the FortiGate side instead of the default one-directional check.
	FlagNetboxOnlyPorts bool `yaml:"flag_netbox_only_ports"`
}

// CacheConfig selects the API response cache backend.
type CacheConfig struct {
	Backend   string `yaml:"backend"` // "file" (default) or "redis"
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

// Config is the complete, validated configuration for one run.
type Config struct {
	Fortigates       []FortiGateDevice `yaml:"fortigates"`
	Netbox           NetBoxConfig      `yaml:"netbox"`
	Runtime          RuntimeConfig     `yaml:"runtime"`
	Cache            CacheConfig       `yaml:"cache"`
	VlanTranslations map[string]string `yaml:"vlan_translations"`
}

// Option adjusts how configuration is loaded.
type Option func(*loadOptions)

type loadOptions struct {
	tokenPrompt func() (string, error)
}

// WithNetboxTokenPrompt supplies an interactive fallback for the NetBox
// API token, consulted only when neither api_token nor api_token_file
// yields one.
func WithNetboxTokenPrompt(prompt func() (string, error)) Option {
	return func(o *loadOptions) { o.tokenPrompt = prompt }
}

// Load reads, resolves and validates a YAML config file.
func Load(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	lo := loadOptions{}
	for _, opt := range opts {
		opt(&lo)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	if cfg.Netbox.APIToken == "" && lo.tokenPrompt != nil {
		token, err := lo.tokenPrompt()
		if err != nil {
			return nil, fmt.Errorf("prompting for netbox token: %w", err)
		}
		cfg.Netbox.APIToken = strings.TrimSpace(token)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve fills defaults and pulls secrets out of *_file references.
func (c *Config) resolve() error {
	if c.Runtime.LogLevel == "" {
		c.Runtime.LogLevel = "info"
	}
	if c.Runtime.DataDir == "" {
		c.Runtime.DataDir = "/var/lib/vlansync/data"
	}
	if c.Runtime.CacheDir == "" {
		c.Runtime.CacheDir = "/var/lib/vlansync/cache"
	}
	if c.Netbox.Timeout <= 0 {
		c.Netbox.Timeout = 120
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendFile
	}
	if c.VlanTranslations == nil {
		c.VlanTranslations = map[string]string{}
	}
	c.Runtime.TestSwitch = strings.TrimSpace(c.Runtime.TestSwitch)

	if c.Netbox.URL != "" {
		u, err := NormalizeURL(c.Netbox.URL)
		if err != nil {
			return err
		}
		c.Netbox.URL = u
	}

	if c.Netbox.APIToken == "" && c.Netbox.APITokenFile != "" {
		token, err := readSecretFile(c.Netbox.APITokenFile)
		if err != nil {
			return fmt.Errorf("netbox api token: %w", err)
		}
		c.Netbox.APIToken = token
	}

	for i := range c.Fortigates {
		fg := &c.Fortigates[i]
		fg.Name = strings.TrimSpace(fg.Name)
		fg.Host = strings.TrimSpace(fg.Host)
		if fg.APIToken == "" && fg.APITokenFile != "" {
			token, err := readSecretFile(fg.APITokenFile)
			if err != nil {
				return fmt.Errorf("fortigate %q api token: %w", fg.Name, err)
			}
			fg.APIToken = token
		}
	}
	return nil
}

// Validate checks that required fields are present and coherent.
func (c *Config) Validate() error {
	v := &util.ValidationBuilder{}

	if len(c.Fortigates) == 0 {
		v.AddError("fortigates must be a non-empty list")
	}
	seen := make(map[string]bool, len(c.Fortigates))
	for _, fg := range c.Fortigates {
		if fg.Name == "" {
			v.AddError("each fortigate needs a non-empty name")
			continue
		}
		if seen[fg.Name] {
			v.AddErrorf("duplicate fortigate name %q", fg.Name)
		}
		seen[fg.Name] = true
		if fg.Host == "" {
			v.AddErrorf("fortigate %q is missing host", fg.Name)
		}
		if fg.APIToken == "" {
			v.AddErrorf("fortigate %q is missing api_token/api_token_file", fg.Name)
		}
	}

	if c.Netbox.URL == "" {
		v.AddError("netbox.url is required")
	}
	if c.Netbox.APIToken == "" {
		v.AddError("netbox.api_token (or netbox.api_token_file) is required")
	}

	switch c.Cache.Backend {
	case CacheBackendFile:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			v.AddError("cache.redis_addr is required with the redis backend")
		}
	default:
		v.AddErrorf("cache.backend must be %q or %q, got %q",
			CacheBackendFile, CacheBackendRedis, c.Cache.Backend)
	}

	if v.HasErrors() {
		return fmt.Errorf("%w: %v", util.ErrInvalidConfig, v.Build())
	}
	return nil
}

// schemeSlashes collapses extra slashes after the scheme, e.g.
// "https:///host" -> "https://host".
var schemeSlashes = regexp.MustCompile(`(https?):///+`)

// NormalizeURL trims a base URL, collapses duplicate slashes after the
// scheme, strips any trailing slash and verifies the URL has a host.
func NormalizeURL(raw string) (string, error) {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	u = schemeSlashes.ReplaceAllString(u, "$1://")
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("%w: URL %q has no host", util.ErrInvalidConfig, raw)
	}
	return u, nil
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading secret file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
