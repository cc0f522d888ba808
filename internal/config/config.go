// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation failure so callers can map
// configuration problems to a dedicated exit code.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub GitHubConfig
	Jira   JiraConfig
	HTTP   HTTPConfig
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token  string
	Domain string
}

// JiraConfig holds Jira specific configuration.
type JiraConfig struct {
	URL      string
	Username string
	Token    string
}

// HTTPConfig holds tuning parameters for the API client layer.
type HTTPConfig struct {
	// Timeout applies to a single request round trip.
	Timeout time.Duration

	// MaxPages caps the number of pages fetched per paginated operation.
	MaxPages int

	// PageSize is the per-page record count requested from the upstream
	// (per_page for GitHub, maxResults for Jira). Both APIs cap it at 100.
	PageSize int

	// Backend selects the HTTP transport implementation: "net" or "resty".
	Backend string
}

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxPages = 50
	defaultPageSize = 100
	defaultBackend  = "net"
)

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.token", "JIRA_TOKEN")
	v.BindEnv("http.timeout", "WORKLENS_TIMEOUT")
	v.BindEnv("http.max_pages", "WORKLENS_MAX_PAGES")
	v.BindEnv("http.page_size", "WORKLENS_PAGE_SIZE")
	v.BindEnv("http.backend", "WORKLENS_HTTP_BACKEND")

	v.SetDefault("github.domain", "github.com")
	v.SetDefault("http.timeout", defaultTimeout.String())
	v.SetDefault("http.max_pages", defaultMaxPages)
	v.SetDefault("http.page_size", defaultPageSize)
	v.SetDefault("http.backend", defaultBackend)

	config := &Config{
		GitHub: GitHubConfig{
			Token:  v.GetString("github.token"),
			Domain: v.GetString("github.domain"),
		},
		Jira: JiraConfig{
			URL:      v.GetString("jira.url"),
			Username: v.GetString("jira.username"),
			Token:    v.GetString("jira.token"),
		},
		HTTP: HTTPConfig{
			Timeout:  v.GetDuration("http.timeout"),
			MaxPages: v.GetInt("http.max_pages"),
			PageSize: v.GetInt("http.page_size"),
			Backend:  v.GetString("http.backend"),
		},
	}

	if err := validateHTTPConfig(&config.HTTP); err != nil {
		return nil, err
	}

	return config, nil
}

// validateHTTPConfig normalizes and validates tuning parameters.
func validateHTTPConfig(cfg *HTTPConfig) error {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 100 {
		cfg.PageSize = defaultPageSize
	}
	switch cfg.Backend {
	case "net", "resty":
	default:
		return fmt.Errorf("%w: WORKLENS_HTTP_BACKEND must be 'net' or 'resty', got %q", ErrInvalid, cfg.Backend)
	}
	return nil
}

// ValidateGitHubConfig ensures the GitHub-specific configuration is complete.
func ValidateGitHubConfig(config *Config) error {
	if config.GitHub.Token == "" {
		return fmt.Errorf("%w: missing required environment variable GITHUB_TOKEN", ErrInvalid)
	}
	return nil
}

// ValidateJiraConfig ensures the Jira-specific configuration is complete.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("%w: missing required environment variables: %v", ErrInvalid, missingVars)
	}

	return nil
}
