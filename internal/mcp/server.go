// Package mcp provides the stdio MCP server exposing directory lookups as
// tools for agents.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/go-ports/whois/internal/audit"
	"github.com/go-ports/whois/internal/buildinfo"
	"github.com/go-ports/whois/internal/directory"
	"github.com/go-ports/whois/internal/models"
	"github.com/go-ports/whois/internal/service"
)

const searchDescription = `Look up one user in the directory. The query is classified the same way as the interactive shell: a query containing a space matches the full name, one containing @ matches the email address, anything else matches the account name. Returns the first matching user's attributes.` //nolint:lll

const remoteTargetDescription = `Resolve the computer a user last logged on to, as recorded in their directory description ("Last Logon: <host> at <time>"). Does not start a remote session.` //nolint:lll

const auditDescription = `List recent lookups and remote launches recorded by whois, newest first.`

const (
	defaultAuditLimit = 20
	maxAuditLimit     = 200
)

// NewServer creates and registers all directory tools on a new MCP server.
// conn is shared by every tool call; svc serializes access to it.
func NewServer(svc *service.Service, conn directory.Searcher) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("whois", buildinfo.Version)
	registerTools(s, svc, conn)
	return s
}

// Serve connects to the directory and starts the stdio MCP server, blocking
// until stdin closes. dial may be nil to use directory.Dial.
func Serve(ctx context.Context, home string, dial directory.DialFunc) error {
	svc, err := service.New(home)
	if err != nil {
		return fmt.Errorf("mcp: init service: %w", err)
	}
	defer svc.Close()

	conn, err := svc.Connect(ctx, dial)
	if err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	defer conn.Unbind()

	return mcpserver.ServeStdio(NewServer(svc, conn))
}

// registerTools wires all three MCP tools into the server.
func registerTools(s *mcpserver.MCPServer, svc *service.Service, conn directory.Searcher) {
	s.AddTool(mcp.NewTool("directory_search",
		mcp.WithDescription(searchDescription),
		mcp.WithString("query",
			mcp.Description("Full name, email address or account name."),
			mcp.Required(),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearch(ctx, svc, conn, req)
	})

	s.AddTool(mcp.NewTool("directory_remote_target",
		mcp.WithDescription(remoteTargetDescription),
		mcp.WithString("query",
			mcp.Description("Full name, email address or account name."),
			mcp.Required(),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRemoteTarget(ctx, svc, conn, req)
	})

	s.AddTool(mcp.NewTool("directory_audit_recent",
		mcp.WithDescription(auditDescription),
		mcp.WithNumber("limit",
			mcp.Description("Max events (default 20, max 200)"),
		),
		mcp.WithString("account",
			mcp.Description("Only events for this account name."),
		),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAuditRecent(svc, req)
	})
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func handleSearch(ctx context.Context, svc *service.Service, conn directory.Searcher, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := svc.Lookup(ctx, conn, q)
	if errors.Is(err, directory.ErrNoResults) {
		return jsonResult(map[string]any{
			"found": false,
			"query": q,
		})
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"found":    true,
		"query":    q,
		"strategy": res.Strategy.String(),
		"matches":  res.Matches,
		"subject":  subjectJSON(res.Subject),
	})
}

func handleRemoteTarget(ctx context.Context, svc *service.Service, conn directory.Searcher, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := svc.Lookup(ctx, conn, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	host, err := svc.RemoteTarget(&res.Subject)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"account_name": res.Subject.AccountName,
		"target":       host,
	})
}

func handleAuditRecent(svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clampLimit(req.GetInt("limit", defaultAuditLimit))

	if !svc.AuditEnabled() {
		return jsonResult(map[string]any{
			"enabled": false,
			"total":   0,
			"events":  make([]map[string]any, 0),
		})
	}

	events, err := svc.Recent(limit, req.GetString("account", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	clean := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		clean = append(clean, eventJSON(ev))
	}
	return jsonResult(map[string]any{
		"enabled": true,
		"total":   len(clean),
		"events":  clean,
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func subjectJSON(s models.Subject) map[string]any {
	return map[string]any{
		"common_name":  s.CommonName,
		"department":   s.Department,
		"description":  s.Description,
		"employee_id":  s.EmployeeID,
		"email":        s.Email,
		"full_name":    s.FullName,
		"account_name": s.AccountName,
		"title":        s.Title,
	}
}

func eventJSON(ev audit.Event) map[string]any {
	out := map[string]any{
		"id":          ev.ID,
		"occurred_at": ev.OccurredAt.UTC().Format(time.RFC3339),
		"command":     ev.Command,
		"outcome":     ev.Outcome,
	}
	for k, v := range map[string]string{
		"query":    ev.Query,
		"strategy": ev.Strategy,
		"account":  ev.Account,
		"target":   ev.Target,
		"error":    ev.Error,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return defaultAuditLimit
	case n > maxAuditLimit:
		return maxAuditLimit
	}
	return n
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
