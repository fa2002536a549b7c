package session_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/whois/internal/directory/directorytest"
	"github.com/go-ports/whois/internal/models"
	"github.com/go-ports/whois/internal/session"
)

func TestState_Subject(t *testing.T) {
	c := qt.New(t)

	c.Run("new state has no subject", func(c *qt.C) {
		st := session.New(nil)
		_, ok := st.Subject()
		c.Assert(ok, qt.IsFalse)
		_, err := st.RequireSubject()
		c.Assert(err, qt.ErrorIs, session.ErrNoSubjectSelected)
	})

	c.Run("last write wins without merging", func(c *qt.C) {
		st := session.New(nil)
		st.SetSubject(models.Subject{AccountName: "jdoe", Title: "Engineer"})
		st.SetSubject(models.Subject{AccountName: "asmith"})

		got, ok := st.Subject()
		c.Assert(ok, qt.IsTrue)
		c.Assert(got, qt.DeepEquals, models.Subject{AccountName: "asmith"})
	})

	c.Run("returned subject is a copy", func(c *qt.C) {
		st := session.New(nil)
		st.SetSubject(models.Subject{AccountName: "jdoe"})

		got, _ := st.Subject()
		got.AccountName = "mutated"

		again, err := st.RequireSubject()
		c.Assert(err, qt.IsNil)
		c.Assert(again.AccountName, qt.Equals, "jdoe")
	})
}

func TestState_Conn(t *testing.T) {
	c := qt.New(t)

	fake := directorytest.New()
	st := session.New(fake)
	c.Assert(st.Conn(), qt.Equals, fake)

	c.Assert(st.Release(), qt.IsNil)
	c.Assert(fake.Unbinds(), qt.Equals, 1)
	c.Assert(st.Conn(), qt.IsNil)

	// Releasing twice does not unbind twice.
	c.Assert(st.Release(), qt.IsNil)
	c.Assert(fake.Unbinds(), qt.Equals, 1)

	other := directorytest.New()
	st.SetConn(other)
	c.Assert(st.Conn(), qt.Equals, other)
}
