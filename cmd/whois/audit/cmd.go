// Package auditcmd implements the `whois audit` command.
package auditcmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-ports/whois/cmd/whois/shared"
	"github.com/go-ports/whois/internal/service"
)

// Command implements `whois audit`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	limit   int
	account string
}

// New creates the audit command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "audit",
		Short: "List recent lookups and remote launches",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	f := c.cmd.Flags()
	f.IntVar(&c.limit, "limit", 20, "Maximum number of events to show")
	f.StringVar(&c.account, "account", "", "Only show events for this account name")

	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	home, _ := c.ctx.ResolveHome()
	svc, err := service.New(home)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	if !svc.AuditEnabled() {
		fmt.Fprintln(out, "Audit log is disabled.")
		return nil
	}

	events, err := svc.Recent(c.limit, c.account)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(out, "No audit events.")
		return nil
	}

	fmt.Fprintf(out, "\n Audit events (%d shown) \n\n", len(events))
	for _, ev := range events {
		subject := ev.Account
		if subject == "" {
			subject = "-"
		}
		fmt.Fprintf(out, " %s  %-6s  %-5s  %s\n",
			ev.OccurredAt.Local().Format(time.DateTime), ev.Command, ev.Outcome, subject)
		if ev.Query != "" {
			fmt.Fprintf(out, "     Query: %s (%s)\n", ev.Query, ev.Strategy)
		}
		if ev.Target != "" {
			fmt.Fprintf(out, "     Target: %s\n", ev.Target)
		}
		if ev.Error != "" {
			fmt.Fprintf(out, "     Error: %s\n", ev.Error)
		}
	}
	return nil
}
