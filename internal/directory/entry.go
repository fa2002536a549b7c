package directory

import (
	"strings"

	"github.com/go-ports/whois/internal/models"
)

// Attributes lists the directory attributes requested for every search, in
// Subject field order.
var Attributes = []string{
	"cn",
	"department",
	"description",
	"employeeID",
	"mail",
	"name",
	"sAMAccountName",
	"title",
}

// Entry is the raw attribute map of one search result: attribute name to values.
type Entry map[string][]string

// First returns the first value of attr. An exact-case key with values wins,
// otherwise any case-insensitive match with values is used.
func (e Entry) First(attr string) (string, bool) {
	if vals := e[attr]; len(vals) > 0 {
		return vals[0], true
	}
	for name, vals := range e {
		if strings.EqualFold(name, attr) && len(vals) > 0 {
			return vals[0], true
		}
	}
	return "", false
}

// MapEntry converts the first matching directory entry into a Subject.
// Attributes the directory did not return are left empty.
func MapEntry(e Entry) models.Subject {
	first := func(attr string) string {
		v, _ := e.First(attr)
		return v
	}
	return models.Subject{
		CommonName:  first("cn"),
		Department:  first("department"),
		Description: first("description"),
		EmployeeID:  first("employeeID"),
		Email:       first("mail"),
		FullName:    first("name"),
		AccountName: first("sAMAccountName"),
		Title:       first("title"),
	}
}
