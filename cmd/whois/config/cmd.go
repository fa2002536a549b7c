// Package configcmd implements the `whois config` command group.
package configcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/whois/cmd/whois/shared"
	"github.com/go-ports/whois/internal/config"
)

const configTemplate = `# whois configuration
# Environment variables WHOIS_LDAP_HOST, WHOIS_LDAP_PORT, WHOIS_LDAP_BASE,
# WHOIS_LDAP_USER, WHOIS_LDAP_PASSWORD and WHOIS_LDAP_DOMAIN override this file.

directory:
  host: dc01.example.com
  port: 389
  base: DC=example,DC=com
  tls: false
  auth: sspi                    # sspi | ntlm | simple | anonymous
  # domain: EXAMPLE             # ntlm only
  # username: svc-whois
  # password: ...               # prefer WHOIS_LDAP_PASSWORD
  timeout: 15s
  size_limit: 10
  strict_filtering: true        # escape * ( ) \ in queries

# Viewer started by the remote command. {host} is replaced with the target.
remote:
  viewer: 'C:\Program Files (x86)\Microsoft Configuration Manager\AdminConsole\bin\i386\CmRcViewer.exe'
  args: ["{host}"]

shell:
  max_input: 1024
  max_query: 256
  history: true

audit:
  enabled: true
  path: audit.db                # relative to the whois home

log:
  level: warn                   # debug | info | warn | error
`

// Command implements `whois config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		Args:  cobra.NoArgs,
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(newConfigInit(ctx))
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	home, source := c.ctx.ResolveHome()
	cfg, err := config.LoadHome(home)
	if err != nil {
		return err
	}
	d := cfg.Directory
	data := map[string]any{
		"directory": map[string]any{
			"url":              d.URL(),
			"base":             d.Base,
			"auth":             d.Auth,
			"domain":           d.Domain,
			"username":         d.Username,
			"password":         redact(d.Password),
			"timeout":          d.Timeout.String(),
			"size_limit":       d.SizeLimit,
			"strict_filtering": d.StrictFiltering,
		},
		"remote": map[string]any{
			"viewer": cfg.Remote.Viewer,
			"args":   cfg.Remote.Args,
		},
		"shell": map[string]any{
			"max_input": cfg.Shell.MaxInput,
			"max_query": cfg.Shell.MaxQuery,
			"history":   cfg.Shell.History,
		},
		"audit": map[string]any{
			"enabled": cfg.Audit.Enabled,
			"path":    cfg.AuditPath(home),
		},
		"log": map[string]any{
			"level": cfg.Log.Level,
		},
		"home":        home,
		"home_source": source,
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}

// ---------------------------------------------------------------------------
// config init
// ---------------------------------------------------------------------------

func newConfigInit(ctx *shared.Context) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a starter config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, _ := ctx.ResolveHome()
			cfgPath := filepath.Join(home, "config.yaml")
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfgPath); err == nil && !force {
				fmt.Fprintf(out, "Config already exists at %s\n", cfgPath)
				fmt.Fprintln(out, "Use --force to overwrite.")
				return nil
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			if err := os.WriteFile(cfgPath, []byte(configTemplate), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s\n", cfgPath)
			fmt.Fprintln(out, "Edit the directory section to point at your domain controller.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")
	return cmd
}

func redact(secret string) string {
	if secret != "" {
		return "<redacted>"
	}
	return ""
}
