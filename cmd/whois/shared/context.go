// Package shared holds the context passed to all CLI commands.
package shared

import (
	"github.com/go-ports/whois/internal/config"
	"github.com/go-ports/whois/internal/directory"
)

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// Home overrides the whois home directory.
	// When empty, resolution falls through to WHOIS_HOME env var → ~/.whois.
	Home string

	// Dial opens the directory connection. Nil means directory.Dial.
	Dial directory.DialFunc
}

// ResolveHome returns the home directory and where it came from:
// "flag", "env" or "default".
func (c *Context) ResolveHome() (path, source string) {
	if c.Home != "" {
		return c.Home, "flag"
	}
	return config.ResolveHome()
}
