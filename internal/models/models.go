// Package models defines the core data types for directory lookups.
package models

// Subject is one directory principal as mapped from a search result.
// An empty field means the directory did not return that attribute.
// Subject is a value type: replacing the current subject means storing a new
// value, never editing one in place.
type Subject struct {
	CommonName  string
	Department  string
	Description string
	EmployeeID  string
	Email       string
	FullName    string
	AccountName string
	Title       string
}

// Field is a labelled Subject attribute used for rendering.
type Field struct {
	Label string
	Value string
}

// Fields returns the subject's attributes in display order.
func (s Subject) Fields() []Field {
	return []Field{
		{"Common name", s.CommonName},
		{"Department", s.Department},
		{"Description", s.Description},
		{"Employee ID", s.EmployeeID},
		{"Email", s.Email},
		{"Full name", s.FullName},
		{"Account name", s.AccountName},
		{"Title", s.Title},
	}
}

// Strategy selects which directory attribute a free-text query is matched against.
type Strategy int

const (
	ByFullName Strategy = iota
	ByEmail
	ByAccountName
)

// String returns the strategy name used in logs and audit rows.
func (s Strategy) String() string {
	switch s {
	case ByFullName:
		return "full_name"
	case ByEmail:
		return "email"
	case ByAccountName:
		return "account_name"
	}
	return "unknown"
}

// Attribute returns the directory attribute the strategy filters on.
func (s Strategy) Attribute() string {
	switch s {
	case ByFullName:
		return "Name"
	case ByEmail:
		return "mail"
	case ByAccountName:
		return "sAMAccountName"
	}
	return ""
}

// LookupResult is returned from Service.Lookup.
type LookupResult struct {
	Subject  Subject
	Strategy Strategy
	Filter   string
	Matches  int
}
