// Package query classifies free-text lookups into a directory search strategy
// and builds the matching LDAP filter.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/go-ports/whois/internal/models"
)

// ErrEmptyQuery is returned when the query is empty after trimming.
var ErrEmptyQuery = errors.New("query is empty")

// ErrQueryTooLong is returned when the query exceeds the classifier's MaxLength.
var ErrQueryTooLong = errors.New("query is too long")

const filterTemplate = "(&(objectClass=user)(%s=%s))"

// Classification is the outcome of classifying one query.
type Classification struct {
	Query    string
	Strategy models.Strategy
	Filter   string
}

// Classifier picks a search strategy for a query.
type Classifier struct {
	// Strict escapes filter metacharacters in the query before it is
	// substituted into the filter template. When false the query is used
	// verbatim and may alter the filter.
	Strict bool
	// MaxLength bounds the trimmed query in bytes; zero means unbounded.
	MaxLength int
}

// Classify selects a strategy for q and builds its filter.
// Precedence: a space selects ByFullName, then an @ selects ByEmail, otherwise
// ByAccountName.
func (c Classifier) Classify(q string) (Classification, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return Classification{}, ErrEmptyQuery
	}
	if c.MaxLength > 0 && len(q) > c.MaxLength {
		return Classification{}, fmt.Errorf("%w (%d > %d bytes)", ErrQueryTooLong, len(q), c.MaxLength)
	}

	strategy := Strategy(q)
	value := q
	if c.Strict {
		value = ldap.EscapeFilter(q)
	}
	return Classification{
		Query:    q,
		Strategy: strategy,
		Filter:   fmt.Sprintf(filterTemplate, strategy.Attribute(), value),
	}, nil
}

// Strategy returns the strategy for an already-trimmed, non-empty query.
func Strategy(q string) models.Strategy {
	switch {
	case strings.Contains(q, " "):
		return models.ByFullName
	case strings.Contains(q, "@"):
		return models.ByEmail
	default:
		return models.ByAccountName
	}
}
