package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.validateAPI(); err != nil {
		return fmt.Errorf("api config: %w", err)
	}

	if err := c.validateOIDC(); err != nil {
		return fmt.Errorf("oidc config: %w", err)
	}

	if err := c.validateCache(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.validateUI(); err != nil {
		return fmt.Errorf("ui config: %w", err)
	}

	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if err := validateAbsoluteURL("base_url", c.Server.BaseURL); err != nil {
		return err
	}

	sameSite := strings.ToLower(c.Server.CookieSameSite)
	if sameSite != "lax" && sameSite != "strict" && sameSite != "none" {
		return fmt.Errorf("invalid cookie_same_site: %s (must be lax, strict, or none)", c.Server.CookieSameSite)
	}

	if c.Server.SessionTTL < time.Minute {
		return fmt.Errorf("session_ttl must be at least 1 minute")
	}

	return nil
}

func (c *Config) validateAPI() error {
	if err := validateAbsoluteURL("url", c.API.URL); err != nil {
		return err
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

func (c *Config) validateOIDC() error {
	if err := validateAbsoluteURL("authority", c.OIDC.Authority); err != nil {
		return err
	}

	if c.OIDC.Realm == "" {
		return fmt.Errorf("realm is required")
	}

	if c.OIDC.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}

	if err := validateAbsoluteURL("redirect_uri", c.OIDC.RedirectURI); err != nil {
		return err
	}

	if err := validateAbsoluteURL("post_logout_redirect_uri", c.OIDC.PostLogoutRedirectURI); err != nil {
		return err
	}

	if !slices.Contains(c.OIDC.Scopes, "openid") {
		return fmt.Errorf("'openid' scope is required")
	}

	if c.OIDC.PKCETTL < time.Minute {
		return fmt.Errorf("pkce_ttl must be at least 1 minute")
	}

	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("invalid type: %s (must be memory or redis)", c.Cache.Type)
	}

	if c.Cache.Type == "redis" {
		if c.Cache.Redis == nil {
			return fmt.Errorf("redis config is required when type is redis")
		}
		if c.Cache.Redis.Address == "" {
			return fmt.Errorf("redis address is required")
		}
	}

	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	if level != "debug" && level != "info" && level != "warn" && level != "error" {
		return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format: %s (must be json or text)", c.Logging.Format)
	}

	output := strings.ToLower(c.Logging.Output)
	if output != "stdout" && output != "stderr" {
		return fmt.Errorf("invalid output: %s (must be stdout or stderr)", c.Logging.Output)
	}

	return nil
}

func (c *Config) validateUI() error {
	if c.UI.DefaultTheme != "light" && c.UI.DefaultTheme != "dark" {
		return fmt.Errorf("invalid default_theme: %s (must be light or dark)", c.UI.DefaultTheme)
	}

	if c.UI.ZonesPageSize < 1 || c.UI.RecordsPageSize < 1 || c.UI.ZoneDetailPageSize < 1 {
		return fmt.Errorf("page sizes must be positive")
	}

	return nil
}

func validateAbsoluteURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https", field)
	}

	return nil
}
