// Package config loads git-tracker settings. Sources are layered, later
// ones winning: built-in defaults, a YAML file, a .env file, then the
// process environment. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/gateway"
)

const (
	// DefaultConfigFile is read from the working directory when no path is given.
	DefaultConfigFile = "git-tracker.yaml"
	// DefaultLogFile receives logs while the interactive dashboard owns the terminal.
	DefaultLogFile = "git-tracker.log"

	defaultTimeout = 30 * time.Second
)

const defaultConfigYAML = `# git-tracker configuration
# Backend origin. The Flask API listens here by default.
api_url: http://127.0.0.1:5000

# Per-request timeout. Summary generation runs an LLM, so keep this generous.
timeout: 30s

# Platform the AI summary page starts on: linkedin or x.
default_platform: linkedin

# Where the interactive dashboard writes its log.
log_file: git-tracker.log

# Check repositories on GitHub before adding them during onboarding.
# Set GITHUB_TOKEN to use the GraphQL API and a higher rate limit.
verify_upstream: false
`

// Config holds the runtime configuration.
type Config struct {
	APIURL          string        `yaml:"api_url" env:"GIT_TRACKER_API_URL"`
	Timeout         time.Duration `yaml:"timeout" env:"GIT_TRACKER_TIMEOUT"`
	DefaultPlatform string        `yaml:"default_platform" env:"GIT_TRACKER_PLATFORM"`
	LogFile         string        `yaml:"log_file" env:"GIT_TRACKER_LOG_FILE"`
	VerifyUpstream  bool          `yaml:"verify_upstream" env:"GIT_TRACKER_VERIFY_UPSTREAM"`

	// GitHubToken is only ever read from the environment.
	GitHubToken string `yaml:"-" env:"GITHUB_TOKEN"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:          gateway.DefaultBaseURL,
		Timeout:         defaultTimeout,
		DefaultPlatform: string(domain.PlatformLinkedIn),
		LogFile:         DefaultLogFile,
	}
}

// Load builds the configuration. path may be empty, in which case
// $GIT_TRACKER_CONFIG and then DefaultConfigFile are tried; a missing
// default file is not an error, but a missing explicit one is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p := os.Getenv("GIT_TRACKER_CONFIG"); p != "" {
			path, explicit = p, true
		} else {
			path = DefaultConfigFile
		}
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	// .env is optional; values already in the environment take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the gateways cannot work with.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: api_url %q must be an absolute URL", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if _, err := domain.ParsePlatform(c.DefaultPlatform); err != nil {
		return fmt.Errorf("config: default_platform: %w", err)
	}
	return nil
}

// Platform returns the validated default platform.
func (c Config) Platform() domain.Platform {
	p, err := domain.ParsePlatform(c.DefaultPlatform)
	if err != nil {
		return domain.PlatformLinkedIn
	}
	return p
}

// WriteDefault writes a commented starter config to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if strings.TrimSpace(path) == "" {
		path = DefaultConfigFile
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(defaultConfigYAML); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
