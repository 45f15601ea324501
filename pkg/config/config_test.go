package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/integrations/jira"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvJiraServer, EnvJiraEmail, EnvJiraToken, EnvJiraTimeout, EnvRedisURL} {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.Mode != "tree" || c.Width != DefaultWidth || c.Height != DefaultHeight {
		t.Errorf("Default() = %q %vx%v", c.Mode, c.Width, c.Height)
	}
	if c.Force.Width != DefaultWidth || c.Tree.Height != DefaultHeight {
		t.Error("viewport size should propagate into the engines")
	}
	if c.Jira.ServerURL != jira.DefaultServerURL {
		t.Errorf("Jira.ServerURL = %q", c.Jira.ServerURL)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
mode = "graph"
width = 1280
active_only = true

[force]
link_distance = 120
fit_delay = "2s"

[tree]
level_spacing = 300

[viewport]
max_scale = 6

[jira]
server_url = "https://jira.example.org"
timeout = "10s"

[server]
addr = ":9090"
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Mode != "graph" || c.Width != 1280 || !c.ActiveOnly {
		t.Errorf("top level = %q %v %v", c.Mode, c.Width, c.ActiveOnly)
	}
	if c.Force.LinkDistance != 120 || c.Force.FitDelay != 2*time.Second || c.Force.Width != 1280 {
		t.Errorf("force = %+v", c.Force)
	}
	if c.Tree.LevelSpacing != 300 || c.Viewport.MaxScale != 6 {
		t.Errorf("tree/viewport = %v %v", c.Tree.LevelSpacing, c.Viewport.MaxScale)
	}
	if c.Jira.ServerURL != "https://jira.example.org" || c.Jira.Timeout != 10*time.Second {
		t.Errorf("jira = %+v", c.Jira)
	}
	if c.Server.Addr != ":9090" || c.Server.ReadTimeout == 0 {
		t.Errorf("server = %+v", c.Server)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvJiraServer, "https://override.example.org")
	t.Setenv(EnvJiraEmail, "me@example.org")
	t.Setenv(EnvJiraToken, "secret")
	t.Setenv(EnvJiraTimeout, "45")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/1")

	c, err := Load(writeConfig(t, `[jira]
server_url = "https://file.example.org"
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Jira.ServerURL != "https://override.example.org" {
		t.Errorf("ServerURL = %q, want the environment value", c.Jira.ServerURL)
	}
	if c.Jira.Email != "me@example.org" || c.Jira.Token != "secret" || c.Jira.Timeout != 45*time.Second {
		t.Errorf("jira = %+v", c.Jira)
	}
	if c.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("RedisURL = %q", c.Cache.RedisURL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") without a file error: %v", err)
	}
	if c.Mode != DefaultMode {
		t.Errorf("Mode = %q", c.Mode)
	}

	_, err = Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadSizePropagation(t *testing.T) {
	clearEnv(t)
	c, err := Load(writeConfig(t, "width = 1280\nheight = 800\n\n[tree]\nwidth = 1000\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Force.Width != 1280 || c.Force.Height != 800 {
		t.Errorf("force size = %vx%v, want 1280x800", c.Force.Width, c.Force.Height)
	}
	if c.Tree.Width != 1000 || c.Tree.Height != 800 {
		t.Errorf("tree size = %vx%v, want 1000x800", c.Tree.Width, c.Tree.Height)
	}
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "mode = ", errors.ErrCodeInvalidInput},
		{"mode", `mode = "radial"`, errors.ErrCodeInvalidMode},
		{"jira url", "[jira]\nserver_url = \"ftp://x\"", errors.ErrCodeInvalidInput},
		{"scales", "[viewport]\nmin_scale = 5\nmax_scale = 2", errors.ErrCodeInvalidInput},
		{"redis", "[cache]\nredis_url = \"localhost:6379\"", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestApplyEnvBadTimeout(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(func(k string) string {
		if k == EnvJiraTimeout {
			return "soon"
		}
		return ""
	})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ApplyEnv() error = %v, want INVALID_INPUT", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", AppName, "config.toml"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")
	c := Default()
	if dir, _ := c.CacheDir(); dir != filepath.Join("/tmp/cache", AppName) {
		t.Errorf("CacheDir() = %q", dir)
	}
	c.Cache.Dir = "/srv/cache"
	if dir, _ := c.CacheDir(); dir != "/srv/cache" {
		t.Errorf("CacheDir() with override = %q", dir)
	}
}
