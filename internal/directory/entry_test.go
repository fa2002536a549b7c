package directory_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/whois/internal/directory"
	"github.com/go-ports/whois/internal/models"
)

func TestMapEntry_OnlyPresentAttributes(t *testing.T) {
	c := qt.New(t)

	got := directory.MapEntry(directory.Entry{
		"cn":   {"Jane Doe"},
		"mail": {"jane@x.com"},
	})
	c.Assert(got, qt.DeepEquals, models.Subject{
		CommonName: "Jane Doe",
		Email:      "jane@x.com",
	})
}

func TestMapEntry_AllAttributes(t *testing.T) {
	c := qt.New(t)

	got := directory.MapEntry(directory.Entry{
		"cn":             {"Jane Doe"},
		"department":     {"IT"},
		"description":    {"Last Logon: WKS-042 at 2024-01-01"},
		"employeeID":     {"1001"},
		"mail":           {"jane@x.com", "j.doe@x.com"},
		"name":           {"Jane Doe"},
		"sAMAccountName": {"jdoe"},
		"title":          {"Engineer"},
		"memberOf":       {"CN=Staff"},
	})
	c.Assert(got, qt.DeepEquals, models.Subject{
		CommonName:  "Jane Doe",
		Department:  "IT",
		Description: "Last Logon: WKS-042 at 2024-01-01",
		EmployeeID:  "1001",
		Email:       "jane@x.com",
		FullName:    "Jane Doe",
		AccountName: "jdoe",
		Title:       "Engineer",
	})
}

func TestMapEntry_EdgeCases(t *testing.T) {
	c := qt.New(t)

	c.Run("empty map yields zero subject", func(c *qt.C) {
		c.Assert(directory.MapEntry(directory.Entry{}), qt.DeepEquals, models.Subject{})
	})

	c.Run("attribute with no values is unset", func(c *qt.C) {
		got := directory.MapEntry(directory.Entry{"title": {}})
		c.Assert(got.Title, qt.Equals, "")
	})

	c.Run("attribute names match case-insensitively", func(c *qt.C) {
		got := directory.MapEntry(directory.Entry{
			"samaccountname": {"jdoe"},
			"EmployeeId":     {"7"},
		})
		c.Assert(got.AccountName, qt.Equals, "jdoe")
		c.Assert(got.EmployeeID, qt.Equals, "7")
	})

	c.Run("empty exact-case key falls back to another spelling", func(c *qt.C) {
		got := directory.MapEntry(directory.Entry{
			"title": {},
			"Title": {"Engineer"},
		})
		c.Assert(got.Title, qt.Equals, "Engineer")
	})

	c.Run("values are not validated", func(c *qt.C) {
		got := directory.MapEntry(directory.Entry{"mail": {"not an email"}})
		c.Assert(got.Email, qt.Equals, "not an email")
	})
}

func TestAttributes_MatchSubjectFieldOrder(t *testing.T) {
	c := qt.New(t)

	entry := directory.Entry{}
	for i, attr := range directory.Attributes {
		entry[attr] = []string{string(rune('a' + i))}
	}
	fields := directory.MapEntry(entry).Fields()
	c.Assert(fields, qt.HasLen, len(directory.Attributes))
	for i, f := range fields {
		c.Assert(f.Value, qt.Equals, string(rune('a'+i)), qt.Commentf("field %s", f.Label))
	}
}
