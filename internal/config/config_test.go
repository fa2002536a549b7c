package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/whois/internal/config"
)

func writeConfig(c *qt.C, dir, body string) string {
	path := filepath.Join(dir, "config.yaml")
	c.Assert(os.WriteFile(path, []byte(body), 0o600), qt.IsNil)
	return path
}

func TestDefault_HappyPath(t *testing.T) {
	c := qt.New(t)
	cfg := config.Default()
	c.Assert(cfg, qt.IsNotNil)
	c.Assert(cfg.Directory.Port, qt.Equals, 389)
	c.Assert(cfg.Directory.Auth, qt.Equals, "sspi")
	c.Assert(cfg.Directory.Timeout, qt.Equals, 15*time.Second)
	c.Assert(cfg.Directory.SizeLimit, qt.Equals, 10)
	c.Assert(cfg.Directory.StrictFiltering, qt.IsTrue)
	c.Assert(cfg.Remote.Viewer, qt.Equals, config.DefaultViewer)
	c.Assert(cfg.Remote.Args, qt.DeepEquals, []string{"{host}"})
	c.Assert(cfg.Shell.MaxInput, qt.Equals, 1024)
	c.Assert(cfg.Audit.Enabled, qt.IsTrue)
	c.Assert(cfg.Log.Level, qt.Equals, "warn")
}

func TestLoad_HappyPath(t *testing.T) {
	c := qt.New(t)

	c.Run("non-existent file returns defaults without error", func(c *qt.C) {
		cfg, err := config.Load("/nonexistent/config.yaml")
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.Directory.Host, qt.Equals, "localhost")
	})

	tests := []struct {
		name       string
		yaml       string
		wantHost   string
		wantPort   int
		wantAuth   string
		wantTO     time.Duration
		wantStrict bool
	}{
		{
			name:       "full directory section",
			yaml:       "directory:\n  host: dc01.corp.example\n  port: 3268\n  base: DC=corp,DC=example\n  auth: NTLM\n  timeout: 5s\n  strict_filtering: false\n",
			wantHost:   "dc01.corp.example",
			wantPort:   3268,
			wantAuth:   "ntlm",
			wantTO:     5 * time.Second,
			wantStrict: false,
		},
		{
			name:       "tls switches the default port",
			yaml:       "directory:\n  tls: true\n",
			wantHost:   "localhost",
			wantPort:   636,
			wantAuth:   "sspi",
			wantTO:     15 * time.Second,
			wantStrict: true,
		},
		{
			name:       "explicit port survives tls",
			yaml:       "directory:\n  port: 389\n  tls: true\n",
			wantHost:   "localhost",
			wantPort:   389,
			wantAuth:   "sspi",
			wantTO:     15 * time.Second,
			wantStrict: true,
		},
		{
			name:       "bare number timeout is seconds",
			yaml:       "directory:\n  timeout: 30\n",
			wantHost:   "localhost",
			wantPort:   389,
			wantAuth:   "sspi",
			wantTO:     30 * time.Second,
			wantStrict: true,
		},
		{
			name:       "empty auth retains default",
			yaml:       "directory:\n  auth: \"\"\n",
			wantHost:   "localhost",
			wantPort:   389,
			wantAuth:   "sspi",
			wantTO:     15 * time.Second,
			wantStrict: true,
		},
	}

	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			path := writeConfig(c, t.TempDir(), tt.yaml)
			cfg, err := config.Load(path)
			c.Assert(err, qt.IsNil)
			c.Assert(cfg.Directory.Host, qt.Equals, tt.wantHost)
			c.Assert(cfg.Directory.Port, qt.Equals, tt.wantPort)
			c.Assert(cfg.Directory.Auth, qt.Equals, tt.wantAuth)
			c.Assert(cfg.Directory.Timeout, qt.Equals, tt.wantTO)
			c.Assert(cfg.Directory.StrictFiltering, qt.Equals, tt.wantStrict)
		})
	}
}

func TestLoad_RemoteShellAuditLog(t *testing.T) {
	c := qt.New(t)

	path := writeConfig(c, t.TempDir(), `
remote:
  viewer: /usr/bin/vncviewer
  args: ["-shared", "{host}:0"]
shell:
  max_input: 64
  history: false
audit:
  enabled: false
  path: /var/lib/whois/audit.db
log:
  level: debug
`)
	cfg, err := config.Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Remote.Viewer, qt.Equals, "/usr/bin/vncviewer")
	c.Assert(cfg.Remote.Args, qt.DeepEquals, []string{"-shared", "{host}:0"})
	c.Assert(cfg.Shell.MaxInput, qt.Equals, 64)
	c.Assert(cfg.Shell.MaxQuery, qt.Equals, 256)
	c.Assert(cfg.Shell.History, qt.IsFalse)
	c.Assert(cfg.Audit.Enabled, qt.IsFalse)
	c.Assert(cfg.AuditPath("/home/x/.whois"), qt.Equals, "/var/lib/whois/audit.db")
	c.Assert(cfg.Log.SlogLevel(), qt.Equals, slog.LevelDebug)
}

func TestLoad_FailurePath(t *testing.T) {
	c := qt.New(t)

	c.Run("malformed yaml", func(c *qt.C) {
		path := writeConfig(c, t.TempDir(), "directory: [unclosed\n")
		_, err := config.Load(path)
		c.Assert(err, qt.IsNotNil)
	})

	c.Run("negative timeout", func(c *qt.C) {
		path := writeConfig(c, t.TempDir(), "directory:\n  timeout: -5\n")
		_, err := config.Load(path)
		c.Assert(err, qt.ErrorMatches, `config.Load: directory.timeout: negative value -5`)
	})

	c.Run("non-scalar timeout", func(c *qt.C) {
		path := writeConfig(c, t.TempDir(), "directory:\n  timeout: [1, 2]\n")
		_, err := config.Load(path)
		c.Assert(err, qt.ErrorMatches, `config.Load: directory.timeout: unsupported value .*`)
	})

	c.Run("bad timeout", func(c *qt.C) {
		path := writeConfig(c, t.TempDir(), "directory:\n  timeout: soon\n")
		_, err := config.Load(path)
		c.Assert(err, qt.ErrorMatches, `config.Load: directory.timeout: .*`)
	})
}

func TestApplyEnv_Overrides(t *testing.T) {
	c := qt.New(t)

	t.Setenv("WHOIS_LDAP_HOST", "dc02")
	t.Setenv("WHOIS_LDAP_PORT", "3269")
	t.Setenv("WHOIS_LDAP_BASE", "DC=x")
	t.Setenv("WHOIS_LDAP_USER", "svc-whois")
	t.Setenv("WHOIS_LDAP_PASSWORD", "hunter2")
	t.Setenv("WHOIS_LDAP_DOMAIN", "CORP")

	cfg := config.Default()
	config.ApplyEnv(cfg)
	c.Assert(cfg.Directory.Host, qt.Equals, "dc02")
	c.Assert(cfg.Directory.Port, qt.Equals, 3269)
	c.Assert(cfg.Directory.Base, qt.Equals, "DC=x")
	c.Assert(cfg.Directory.Username, qt.Equals, "svc-whois")
	c.Assert(cfg.Directory.Password, qt.Equals, "hunter2")
	c.Assert(cfg.Directory.Domain, qt.Equals, "CORP")
	c.Assert(cfg.Directory.URL(), qt.Equals, "ldap://dc02:3269")
}

func TestApplyEnv_InvalidPortIgnored(t *testing.T) {
	c := qt.New(t)
	t.Setenv("WHOIS_LDAP_PORT", "not-a-port")
	cfg := config.Default()
	config.ApplyEnv(cfg)
	c.Assert(cfg.Directory.Port, qt.Equals, 389)
}

func TestLogLevel_DefaultsToWarn(t *testing.T) {
	c := qt.New(t)
	c.Assert(config.LogConfig{Level: "verbose"}.SlogLevel(), qt.Equals, slog.LevelWarn)
	c.Assert(config.LogConfig{Level: "INFO"}.SlogLevel(), qt.Equals, slog.LevelInfo)
}

func TestResolveHome_EnvOverride(t *testing.T) {
	c := qt.New(t)

	tmp := t.TempDir()
	t.Setenv("WHOIS_HOME", tmp)

	path, source := config.ResolveHome()
	c.Assert(source, qt.Equals, "env")
	c.Assert(path, qt.Equals, tmp)
	c.Assert(config.GetHome(), qt.Equals, tmp)
}

func TestLoadHome_AppliesEnv(t *testing.T) {
	c := qt.New(t)

	home := t.TempDir()
	writeConfig(c, home, "directory:\n  host: from-file\n  base: DC=file\n")
	t.Setenv("WHOIS_LDAP_HOST", "from-env")

	cfg, err := config.LoadHome(home)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Directory.Host, qt.Equals, "from-env")
	c.Assert(cfg.Directory.Base, qt.Equals, "DC=file")
	c.Assert(cfg.AuditPath(home), qt.Equals, filepath.Join(home, "audit.db"))
}
