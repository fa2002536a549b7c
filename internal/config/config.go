// Package config handles configuration loading and whois home resolution.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Config types
// ---------------------------------------------------------------------------

// DirectoryConfig holds settings for the directory (LDAP) connection.
type DirectoryConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Base            string        `yaml:"base"`
	TLS             bool          `yaml:"tls"`
	Auth            string        `yaml:"auth"` // "sspi" | "ntlm" | "simple" | "anonymous"
	Domain          string        `yaml:"domain"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"` // #nosec G117 -- bind password is an intentional field for ntlm/simple auth
	Timeout         time.Duration `yaml:"timeout"`
	SizeLimit       int           `yaml:"size_limit"`
	StrictFiltering bool          `yaml:"strict_filtering"`
}

// URL returns the ldap:// or ldaps:// URL for the configured host and port.
func (d DirectoryConfig) URL() string {
	scheme := "ldap"
	if d.TLS {
		scheme = "ldaps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, d.Host, d.Port)
}

// RemoteConfig controls the remote-session viewer launched by `remote`.
type RemoteConfig struct {
	Viewer string   `yaml:"viewer"`
	Args   []string `yaml:"args"` // "{host}" is replaced with the target host
}

// ShellConfig bounds interactive input.
type ShellConfig struct {
	MaxInput int  `yaml:"max_input"`
	MaxQuery int  `yaml:"max_query"`
	History  bool `yaml:"history"`
}

// AuditConfig controls the local lookup audit log.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // relative paths resolve against the whois home
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
}

// SlogLevel maps Level onto a slog.Level, defaulting to warn.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

// Config is the root whois configuration.
type Config struct {
	Directory DirectoryConfig `yaml:"directory"`
	Remote    RemoteConfig    `yaml:"remote"`
	Shell     ShellConfig     `yaml:"shell"`
	Audit     AuditConfig     `yaml:"audit"`
	Log       LogConfig       `yaml:"log"`
}

// DefaultViewer is the ConfigMgr remote control viewer shipped with the admin console.
const DefaultViewer = `C:\Program Files (x86)\Microsoft Configuration Manager\AdminConsole\bin\i386\CmRcViewer.exe`

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Directory: DirectoryConfig{
			Host:            "localhost",
			Port:            389,
			Auth:            "sspi",
			Timeout:         15 * time.Second,
			SizeLimit:       10,
			StrictFiltering: true,
		},
		Remote: RemoteConfig{
			Viewer: DefaultViewer,
			Args:   []string{"{host}"},
		},
		Shell: ShellConfig{
			MaxInput: 1024,
			MaxQuery: 256,
			History:  true,
		},
		Audit: AuditConfig{
			Enabled: true,
			Path:    "audit.db",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads a config.yaml from path.
// If the file does not exist it returns Default() with no error.
// Missing keys retain their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	// Unmarshal into a plain map so we can apply only the keys that are present.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	if dir, ok := raw["directory"].(map[string]any); ok {
		if err := applyDirectory(&cfg.Directory, dir); err != nil {
			return nil, err
		}
	}

	if rem, ok := raw["remote"].(map[string]any); ok {
		if v, ok := rem["viewer"].(string); ok && v != "" {
			cfg.Remote.Viewer = v
		}
		if v, ok := rem["args"].([]any); ok {
			args := make([]string, 0, len(v))
			for _, a := range v {
				args = append(args, fmt.Sprint(a))
			}
			cfg.Remote.Args = args
		}
	}

	if sh, ok := raw["shell"].(map[string]any); ok {
		if v, ok := sh["max_input"].(int); ok && v > 0 {
			cfg.Shell.MaxInput = v
		}
		if v, ok := sh["max_query"].(int); ok && v > 0 {
			cfg.Shell.MaxQuery = v
		}
		if v, ok := sh["history"].(bool); ok {
			cfg.Shell.History = v
		}
	}

	if au, ok := raw["audit"].(map[string]any); ok {
		if v, ok := au["enabled"].(bool); ok {
			cfg.Audit.Enabled = v
		}
		if v, ok := au["path"].(string); ok && v != "" {
			cfg.Audit.Path = v
		}
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v, ok := lg["level"].(string); ok && v != "" {
			cfg.Log.Level = v
		}
	}

	return cfg, nil
}

func applyDirectory(d *DirectoryConfig, raw map[string]any) error {
	if v, ok := raw["host"].(string); ok && v != "" {
		d.Host = v
	}
	if v, ok := raw["port"].(int); ok && v > 0 {
		d.Port = v
	}
	if v, ok := raw["base"].(string); ok {
		d.Base = v
	}
	if v, ok := raw["tls"].(bool); ok {
		d.TLS = v
		if _, portSet := raw["port"]; v && !portSet && d.Port == 389 {
			d.Port = 636
		}
	}
	if v, ok := raw["auth"].(string); ok && v != "" {
		d.Auth = strings.ToLower(v)
	}
	if v, ok := raw["domain"].(string); ok {
		d.Domain = v
	}
	if v, ok := raw["username"].(string); ok {
		d.Username = v
	}
	if v, ok := raw["password"].(string); ok {
		d.Password = v
	}
	switch v := raw["timeout"].(type) {
	case nil:
	case string:
		if v != "" {
			t, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config.Load: directory.timeout: %w", err)
			}
			d.Timeout = t
		}
	case int:
		// A bare number is seconds.
		if v < 0 {
			return fmt.Errorf("config.Load: directory.timeout: negative value %d", v)
		}
		d.Timeout = time.Duration(v) * time.Second
	default:
		return fmt.Errorf("config.Load: directory.timeout: unsupported value %v (%T)", v, v)
	}
	if v, ok := raw["size_limit"].(int); ok && v >= 0 {
		d.SizeLimit = v
	}
	if v, ok := raw["strict_filtering"].(bool); ok {
		d.StrictFiltering = v
	}
	return nil
}

// ApplyEnv overlays WHOIS_LDAP_* environment variables onto cfg.
// Environment values win over the config file.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("WHOIS_LDAP_HOST"); v != "" {
		cfg.Directory.Host = v
	}
	if v := os.Getenv("WHOIS_LDAP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Directory.Port = p
		} else {
			slog.Warn("ignoring invalid WHOIS_LDAP_PORT", "value", v)
		}
	}
	if v := os.Getenv("WHOIS_LDAP_BASE"); v != "" {
		cfg.Directory.Base = v
	}
	if v := os.Getenv("WHOIS_LDAP_DOMAIN"); v != "" {
		cfg.Directory.Domain = v
	}
	if v := os.Getenv("WHOIS_LDAP_USER"); v != "" {
		cfg.Directory.Username = v
	}
	if v := os.Getenv("WHOIS_LDAP_PASSWORD"); v != "" {
		cfg.Directory.Password = v
	}
}

// LoadHome loads <home>/config.yaml and applies environment overrides.
func LoadHome(home string) (*Config, error) {
	cfg, err := Load(filepath.Join(home, "config.yaml"))
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg)
	return cfg, nil
}

// AuditPath resolves the audit database path against home.
func (c *Config) AuditPath(home string) string {
	if filepath.IsAbs(c.Audit.Path) {
		return c.Audit.Path
	}
	return filepath.Join(home, c.Audit.Path)
}

// ---------------------------------------------------------------------------
// Home resolution
// ---------------------------------------------------------------------------

// normalizePath expands ~ and makes the path absolute.
func normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(os.ExpandEnv(path))
}

// ResolveHome returns the whois home path and the source of the resolution.
// Priority: WHOIS_HOME env → ~/.whois
// source is one of "env" or "default".
func ResolveHome() (path, source string) {
	if env := os.Getenv("WHOIS_HOME"); env != "" {
		p, err := normalizePath(env)
		if err == nil {
			return p, "env"
		}
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".whois"), "default"
}

// GetHome returns the resolved whois home path.
func GetHome() string {
	path, _ := ResolveHome()
	return path
}
