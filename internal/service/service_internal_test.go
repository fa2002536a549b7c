package service

// White-box testing required: outcome maps a lookup error onto the audit
// outcome columns and is not reachable without a backing audit store.

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/whois/internal/audit"
)

func TestOutcome(t *testing.T) {
	c := qt.New(t)

	status, msg := outcome(nil)
	c.Assert(status, qt.Equals, audit.OutcomeOK)
	c.Assert(msg, qt.Equals, "")

	status, msg = outcome(errors.New("boom"))
	c.Assert(status, qt.Equals, audit.OutcomeError)
	c.Assert(msg, qt.Equals, "boom")
}
