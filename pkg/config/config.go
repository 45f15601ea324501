// Package config loads orgtower settings from a TOML file and the
// environment.
//
// The file lives at $XDG_CONFIG_HOME/orgtower/config.toml (or
// ~/.config/orgtower/config.toml) and has one table per concern:
//
//	mode = "tree"
//	width = 1280
//
//	[force]
//	link_distance = 120
//
//	[tree]
//	level_spacing = 300
//
//	[viewport]
//	max_scale = 6
//
//	[jira]
//	server_url = "https://riscv.atlassian.net"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//
// A missing file yields the defaults. Secrets never come from the file:
// after decoding, a .env file in the working directory is loaded and the
// JIRA_SERVER_URL, JIRA_USER_EMAIL, JIRA_API_TOKEN, JIRA_HTTP_TIMEOUT
// and ORGTOWER_REDIS_URL variables override the file.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/integrations/jira"
	"github.com/matzehuels/orgtower/pkg/layout/force"
	"github.com/matzehuels/orgtower/pkg/layout/tree"
	"github.com/matzehuels/orgtower/pkg/viewport"
)

// AppName names the config and cache directories.
const AppName = "orgtower"

// Environment variables read by [Load].
const (
	EnvJiraServer  = "JIRA_SERVER_URL"
	EnvJiraEmail   = "JIRA_USER_EMAIL"
	EnvJiraToken   = "JIRA_API_TOKEN"
	EnvJiraTimeout = "JIRA_HTTP_TIMEOUT" // Seconds
	EnvRedisURL    = "ORGTOWER_REDIS_URL"
)

// Defaults for [Config].
const (
	DefaultMode   = graph.ModeTree
	DefaultWidth  = 960.0
	DefaultHeight = 640.0
	DefaultAddr   = "127.0.0.1:8080"
)

// Config is the complete orgtower configuration.
type Config struct {
	Mode       string  `toml:"mode"`
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	ActiveOnly bool    `toml:"active_only"`

	Force    force.Config    `toml:"force"`
	Tree     tree.Config     `toml:"tree"`
	Viewport viewport.Config `toml:"viewport"`
	Jira     jira.Config     `toml:"jira"`
	Cache    CacheConfig     `toml:"cache"`
	Server   ServerConfig    `toml:"server"`
}

// CacheConfig selects the cache backend. A Redis URL takes precedence
// over the file cache directory.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"` // Key prefix, for Redis instances shared by several deployments
}

// ServerConfig configures the scene server.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	Static       string        `toml:"static"` // Optional directory served at /
}

// Default returns the configuration used without a file or environment.
func Default() Config {
	c := base()
	c.SetDefaults()
	return c
}

// base holds the settings SetDefaults does not derive. Engine sizes stay
// zero so they can follow the top-level width and height.
func base() Config {
	return Config{
		Server: ServerConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// SetDefaults fills zero fields and propagates the viewport size into
// the engine configurations.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Force.Width <= 0 {
		c.Force.Width = c.Width
	}
	if c.Force.Height <= 0 {
		c.Force.Height = c.Height
	}
	if c.Tree.Width <= 0 {
		c.Tree.Width = c.Width
	}
	if c.Tree.Height <= 0 {
		c.Tree.Height = c.Height
	}
	c.Force.SetDefaults()
	c.Tree.SetDefaults()
	c.Viewport.SetDefaults()
	c.Jira.SetDefaults()
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the configured cache directory, or the XDG default.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the config file at path, or at [DefaultPath] when path is
// empty, and applies the environment. A missing default file yields the
// defaults; a missing explicit file is an error.
func Load(path string) (Config, error) {
	c := base()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return c, err
		}
	}

	if _, err := toml.DecodeFile(path, &c); err != nil {
		switch {
		case stderrors.Is(err, fs.ErrNotExist) && !explicit:
		case stderrors.Is(err, fs.ErrNotExist):
			return c, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		default:
			return c, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
		}
	}

	// .env is optional
	_ = godotenv.Load()
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return c, err
	}

	// Checked before defaults, which reorder inverted scales.
	if err := checkScales(c.Viewport); err != nil {
		return c, err
	}
	c.SetDefaults()
	return c, c.Validate()
}

// ApplyEnv overrides settings from environment variables read through
// getenv. Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvJiraServer)); v != "" {
		c.Jira.ServerURL = v
	}
	if v := strings.TrimSpace(getenv(EnvJiraEmail)); v != "" {
		c.Jira.Email = v
	}
	if v := strings.TrimSpace(getenv(EnvJiraToken)); v != "" {
		c.Jira.Token = v
	}
	if v := strings.TrimSpace(getenv(EnvJiraTimeout)); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be a positive number of seconds, got %q", EnvJiraTimeout, v)
		}
		c.Jira.Timeout = time.Duration(secs) * time.Second
	}
	if v := strings.TrimSpace(getenv(EnvRedisURL)); v != "" {
		c.Cache.RedisURL = v
	}
	return nil
}

// Validate checks the settings that defaults cannot repair.
func (c Config) Validate() error {
	if err := errors.ValidateMode(c.Mode); err != nil {
		return err
	}
	if err := errors.ValidateURL(c.Jira.ServerURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "jira.server_url")
	}
	if err := checkScales(c.Viewport); err != nil {
		return err
	}
	if u := c.Cache.RedisURL; u != "" && !strings.HasPrefix(u, "redis://") && !strings.HasPrefix(u, "rediss://") {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_url must use redis:// or rediss://")
	}
	return nil
}

func checkScales(v viewport.Config) error {
	if v.MinScale > 0 && v.MaxScale > 0 && v.MinScale > v.MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "viewport.min_scale %v exceeds max_scale %v", v.MinScale, v.MaxScale)
	}
	return nil
}
