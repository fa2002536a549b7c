package audit_test

import (
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/whois/internal/audit"
)

// openTestStore opens a fresh audit database in a temp directory and registers
// t.Cleanup to close it.
func openTestStore(t *testing.T) *audit.Store {
	t.Helper()
	s, err := audit.Open(filepath.Join(t.TempDir(), "nested", "audit.db"))
	if err != nil {
		t.Fatalf("openTestStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_HappyPath(t *testing.T) {
	c := qt.New(t)
	s := openTestStore(t)
	n, err := s.Count()
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 0)
	c.Assert(filepath.Base(s.Path()), qt.Equals, "audit.db")
}

func TestRecord_AssignsDefaults(t *testing.T) {
	c := qt.New(t)
	s := openTestStore(t)

	ev, err := s.Record(audit.Event{SessionID: "sess", Command: "search", Query: "jdoe"})
	c.Assert(err, qt.IsNil)
	c.Assert(ev.ID, qt.Not(qt.Equals), "")
	c.Assert(ev.OccurredAt.IsZero(), qt.IsFalse)
	c.Assert(ev.Outcome, qt.Equals, audit.OutcomeOK)

	got, err := s.Recent(10, "")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.HasLen, 1)
	c.Assert(got[0].ID, qt.Equals, ev.ID)
	c.Assert(got[0].Query, qt.Equals, "jdoe")
}

func TestRecent_OrderLimitAndFilter(t *testing.T) {
	c := qt.New(t)
	s := openTestStore(t)

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, acct := range []string{"jdoe", "asmith", "JDOE"} {
		_, err := s.Record(audit.Event{
			SessionID:  "sess",
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
			Command:    "search",
			Query:      acct,
			Account:    acct,
		})
		c.Assert(err, qt.IsNil)
	}
	_, err := s.Record(audit.Event{SessionID: "sess", Command: "search", Query: "ghost", Outcome: audit.OutcomeError, Error: "no results found"})
	c.Assert(err, qt.IsNil)

	c.Run("newest first", func(c *qt.C) {
		got, err := s.Recent(10, "")
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.HasLen, 4)
		c.Assert(got[0].Query, qt.Equals, "ghost")
		c.Assert(got[0].Outcome, qt.Equals, audit.OutcomeError)
		c.Assert(got[0].Error, qt.Equals, "no results found")
		c.Assert(got[3].Query, qt.Equals, "jdoe")
		c.Assert(got[3].OccurredAt.Equal(base), qt.IsTrue)
	})

	c.Run("limit", func(c *qt.C) {
		got, err := s.Recent(2, "")
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.HasLen, 2)
	})

	c.Run("account filter is case-insensitive", func(c *qt.C) {
		got, err := s.Recent(10, "jdoe")
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.HasLen, 2)
	})
}

func TestNewSessionID_Unique(t *testing.T) {
	c := qt.New(t)
	c.Assert(audit.NewSessionID(), qt.Not(qt.Equals), audit.NewSessionID())
}
