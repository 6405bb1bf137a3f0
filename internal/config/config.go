package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	API     APIConfig     `yaml:"api"`
	OIDC    OIDCConfig    `yaml:"oidc"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	UI      UIConfig      `yaml:"ui"`
}

type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	BaseURL        string        `yaml:"base_url"`
	CookieName     string        `yaml:"cookie_name"`
	CookieDomain   string        `yaml:"cookie_domain"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	CookieHTTPOnly bool          `yaml:"cookie_http_only"`
	CookieSameSite string        `yaml:"cookie_same_site"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
}

// APIConfig points at the DNS server's REST API.
type APIConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type CacheConfig struct {
	Type  string       `yaml:"type"`
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

type RedisConfig struct {
	Address    string `yaml:"address"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	PoolSize   int    `yaml:"pool_size"`
	MaxRetries int    `yaml:"max_retries"`
	// KeyPrefix namespaces every key when the instance is shared with
	// the DNS server.
	KeyPrefix string `yaml:"key_prefix"`
}

// OIDCConfig describes a Keycloak-style identity provider. Endpoints are
// derived from Authority and Realm.
type OIDCConfig struct {
	Authority             string        `yaml:"authority"`
	Realm                 string        `yaml:"realm"`
	ClientID              string        `yaml:"client_id"`
	RedirectURI           string        `yaml:"redirect_uri"`
	PostLogoutRedirectURI string        `yaml:"post_logout_redirect_uri"`
	Scopes                []string      `yaml:"scopes"`
	PKCETTL               time.Duration `yaml:"pkce_ttl"`
	CallbackErrorDelay    time.Duration `yaml:"callback_error_delay"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type UIConfig struct {
	Title              string `yaml:"title"`
	DefaultTheme       string `yaml:"default_theme"`
	ZonesPageSize      int    `yaml:"zones_page_size"`
	RecordsPageSize    int    `yaml:"records_page_size"`
	ZoneDetailPageSize int    `yaml:"zone_detail_page_size"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML, applies defaults and then environment overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.loadFromEnv()

	if err := cfg.setDefaults(); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() error {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 14200
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:14200"
	}
	if c.Server.CookieName == "" {
		c.Server.CookieName = "godns-session"
	}
	if !c.Server.CookieHTTPOnly {
		c.Server.CookieHTTPOnly = true
	}
	if c.Server.CookieSameSite == "" {
		c.Server.CookieSameSite = "lax"
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = 24 * time.Hour
	}

	if c.API.URL == "" {
		c.API.URL = "http://localhost:14000"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 15 * time.Second
	}

	if c.OIDC.Authority == "" {
		c.OIDC.Authority = "http://localhost:14101"
	}
	if c.OIDC.Realm == "" {
		c.OIDC.Realm = "godns"
	}
	if c.OIDC.ClientID == "" {
		c.OIDC.ClientID = "godns-web"
	}
	if c.OIDC.RedirectURI == "" {
		c.OIDC.RedirectURI = c.Server.BaseURL + "/auth/callback"
	}
	if c.OIDC.PostLogoutRedirectURI == "" {
		c.OIDC.PostLogoutRedirectURI = c.Server.BaseURL
	}
	if len(c.OIDC.Scopes) == 0 {
		c.OIDC.Scopes = []string{"openid", "profile", "email"}
	}
	if c.OIDC.PKCETTL == 0 {
		c.OIDC.PKCETTL = 10 * time.Minute
	}
	if c.OIDC.CallbackErrorDelay == 0 {
		c.OIDC.CallbackErrorDelay = 3 * time.Second
	}

	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}

	if c.Cache.Type == "redis" && c.Cache.Redis != nil {
		if c.Cache.Redis.PoolSize == 0 {
			c.Cache.Redis.PoolSize = 10
		}
		if c.Cache.Redis.MaxRetries == 0 {
			c.Cache.Redis.MaxRetries = 3
		}
		if c.Cache.Redis.KeyPrefix == "" {
			c.Cache.Redis.KeyPrefix = "godnsweb:"
		}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	if c.UI.Title == "" {
		c.UI.Title = "GoDNS"
	}
	if c.UI.DefaultTheme == "" {
		c.UI.DefaultTheme = "dark"
	}
	if c.UI.ZonesPageSize == 0 {
		c.UI.ZonesPageSize = 10
	}
	if c.UI.RecordsPageSize == 0 {
		c.UI.RecordsPageSize = 15
	}
	if c.UI.ZoneDetailPageSize == 0 {
		c.UI.ZoneDetailPageSize = 15
	}

	return nil
}

// loadFromEnv applies the environment-supplied settings. They win over the
// file so the same image can be deployed to several environments.
func (c *Config) loadFromEnv() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"GODNS_API_URL", &c.API.URL},
		{"GODNS_KEYCLOAK_URL", &c.OIDC.Authority},
		{"GODNS_KEYCLOAK_REALM", &c.OIDC.Realm},
		{"GODNS_KEYCLOAK_CLIENT_ID", &c.OIDC.ClientID},
		{"GODNS_REDIRECT_URI", &c.OIDC.RedirectURI},
		{"GODNS_POST_LOGOUT_REDIRECT_URI", &c.OIDC.PostLogoutRedirectURI},
		{"GODNS_BASE_URL", &c.Server.BaseURL},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}

	if c.Cache.Type == "redis" && c.Cache.Redis != nil {
		if envPassword := os.Getenv("REDIS_PASSWORD"); envPassword != "" {
			c.Cache.Redis.Password = envPassword
		}
	}
}
