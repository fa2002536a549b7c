// Package rootcmd wires the root cobra.Command for the whois CLI binary.
package rootcmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	auditcmd "github.com/go-ports/whois/cmd/whois/audit"
	configcmd "github.com/go-ports/whois/cmd/whois/config"
	mcpcmd "github.com/go-ports/whois/cmd/whois/mcp"
	"github.com/go-ports/whois/cmd/whois/shared"
	"github.com/go-ports/whois/internal/buildinfo"
	"github.com/go-ports/whois/internal/config"
	"github.com/go-ports/whois/internal/service"
	"github.com/go-ports/whois/internal/session"
	"github.com/go-ports/whois/internal/shell"
)

// New creates and returns the root cobra.Command for the whois CLI.
func New() *cobra.Command {
	return NewWithContext(&shared.Context{})
}

// NewWithContext is New with a caller-supplied context, letting tests inject
// a directory dialer.
func NewWithContext(ctx *shared.Context) *cobra.Command {
	root := &cobra.Command{
		Use:           "whois",
		Short:         "Interactive directory lookup shell",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, ctx)
		},
	}

	root.PersistentFlags().StringVar(
		&ctx.Home, "home", "",
		"Override whois home directory (default: $WHOIS_HOME env → ~/.whois)",
	)

	root.AddCommand(
		configcmd.New(ctx).Cmd(),
		auditcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
	)

	return root
}

func runShell(cmd *cobra.Command, ctx *shared.Context) error {
	home, _ := ctx.ResolveHome()

	svc, err := service.New(home)
	if err != nil {
		return err
	}
	defer svc.Close()

	setupLogging(cmd.ErrOrStderr(), svc.Config.Log)

	out := cmd.OutOrStdout()
	printBanner(out)

	conn, err := svc.Connect(cmd.Context(), ctx.Dial)
	if err != nil {
		return err
	}
	slog.Info("connected", "url", svc.Config.Directory.URL(), "session", svc.SessionID())

	historyPath := ""
	if svc.Config.Shell.History {
		historyPath = filepath.Join(home, "history")
	}
	reader := shell.NewLineReader(cmd.InOrStdin(), out, svc.Config.Shell.MaxInput, historyPath)
	defer reader.Close()

	return shell.New(svc, session.New(conn), reader, out).Run(cmd.Context())
}

func setupLogging(w io.Writer, lc config.LogConfig) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lc.SlogLevel()})))
}

func printBanner(w io.Writer) {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 2).
		Render("whois  directory lookup")
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, buildinfo.Summary())
	fmt.Fprintln(w, "Type help for a list of commands.")
	fmt.Fprintln(w)
}
