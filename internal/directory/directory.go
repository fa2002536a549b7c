// Package directory talks to the LDAP directory: it authenticates once, runs
// subtree searches for user entries and maps results into Subjects.
package directory

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/go-ports/whois/internal/config"
)

var (
	// ErrAuth is returned when the initial connection or bind fails.
	ErrAuth = errors.New("directory authentication failed")
	// ErrSearch is returned when the directory rejects or fails a search.
	ErrSearch = errors.New("directory search failed")
	// ErrTimeout is returned when a directory call exceeds its deadline.
	ErrTimeout = errors.New("directory request timed out")
	// ErrNoResults is returned when a search matched no entries.
	ErrNoResults = errors.New("no results found")
)

// Searcher runs a filter against the configured search base.
type Searcher interface {
	Search(ctx context.Context, filter string) ([]Entry, error)
}

// Conn is an authenticated directory connection.
type Conn interface {
	Searcher
	// Unbind releases the connection. It is safe to call more than once.
	Unbind() error
}

// DialFunc opens an authenticated Conn.
type DialFunc func(ctx context.Context, cfg config.DirectoryConfig) (Conn, error)

type ldapConn struct {
	conn      *ldap.Conn
	base      string
	sizeLimit int
	closed    bool
}

// Dial connects to the configured directory and binds with the configured
// auth method.
func Dial(ctx context.Context, cfg config.DirectoryConfig) (Conn, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	opts := []ldap.DialOpt{ldap.DialWithDialer(&net.Dialer{Timeout: timeout})}
	if cfg.TLS {
		opts = append(opts, ldap.DialWithTLSConfig(&tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}))
	}

	url := cfg.URL()
	slog.Debug("directory: dialing", "url", url, "auth", cfg.Auth)

	conn, err := ldap.DialURL(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrAuth, url, err)
	}
	conn.SetTimeout(timeout)

	if err := ctx.Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	if err := bind(conn, cfg); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %s bind: %v", ErrAuth, cfg.Auth, err)
	}

	return &ldapConn{conn: conn, base: cfg.Base, sizeLimit: cfg.SizeLimit}, nil
}

func bind(conn *ldap.Conn, cfg config.DirectoryConfig) error {
	switch cfg.Auth {
	case "sspi", "":
		return bindCurrentUser(conn, cfg.Host)
	case "ntlm":
		if cfg.Password == "" {
			return conn.NTLMUnauthenticatedBind(cfg.Domain, cfg.Username)
		}
		return conn.NTLMBind(cfg.Domain, cfg.Username, cfg.Password)
	case "simple":
		return conn.Bind(cfg.Username, cfg.Password)
	case "anonymous":
		return conn.UnauthenticatedBind(cfg.Username)
	default:
		return fmt.Errorf("unknown auth method %q", cfg.Auth)
	}
}

// Search runs filter as a subtree search under the base DN and returns the
// matching entries. A size-limit-exceeded response that carries entries is
// treated as success.
func (c *ldapConn) Search(ctx context.Context, filter string) ([]Entry, error) {
	req := ldap.NewSearchRequest(
		c.base,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
		c.sizeLimit, 0, false,
		filter,
		Attributes,
		nil,
	)

	resp := c.conn.SearchAsync(ctx, req, 0)
	var entries []Entry
	for resp.Next() {
		if e := resp.Entry(); e != nil {
			entries = append(entries, toEntry(e))
		}
	}

	if err := classifySearchErr(ctx, resp.Err(), len(entries)); err != nil {
		return nil, err
	}
	return entries, nil
}

// classifySearchErr maps a search error onto ErrTimeout or ErrSearch. A
// size-limit error is not a failure when n entries arrived before it.
func classifySearchErr(ctx context.Context, err error, n int) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case ldap.IsErrorWithCode(err, ldap.LDAPResultTimeLimitExceeded), ldap.IsErrorWithCode(err, ldap.LDAPResultTimeout):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) && n > 0:
		slog.Debug("directory: size limit reached", "entries", n)
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrSearch, err)
	}
}

// Unbind sends an unbind request and closes the connection.
func (c *ldapConn) Unbind() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.conn.Unbind(); err != nil {
		slog.Debug("directory: unbind", "err", err)
		return c.conn.Close()
	}
	return nil
}

func toEntry(e *ldap.Entry) Entry {
	out := make(Entry, len(e.Attributes))
	for _, attr := range e.Attributes {
		out[attr.Name] = attr.Values
	}
	return out
}
