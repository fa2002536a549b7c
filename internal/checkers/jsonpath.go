// Package checkers provides quicktest checkers shared by the test suites.
package checkers

import (
	"encoding/json"
	"fmt"

	qt "github.com/frankban/quicktest"
	"github.com/yalp/jsonpath"
)

// JSONPathEquals returns a checker that decodes got (a string or []byte
// holding JSON), reads path from it and compares the value with the wanted
// argument using qt.DeepEquals. JSON numbers decode as float64.
//
//	c.Assert(text, checkers.JSONPathEquals("$.subject.account_name"), "jdoe")
func JSONPathEquals(path string) qt.Checker {
	return &jsonPathChecker{path: path}
}

type jsonPathChecker struct {
	path string
}

func (c *jsonPathChecker) ArgNames() []string {
	return []string{"got", "want"}
}

func (c *jsonPathChecker) Check(got any, args []any, note func(key string, value any)) error {
	var raw []byte
	switch v := got.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return qt.BadCheckf("first argument is not a string or []byte: %T", got)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("cannot decode JSON: %w", err)
	}

	value, err := jsonpath.Read(doc, c.path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", c.path, err)
	}
	note("path", c.path)
	return qt.DeepEquals.Check(value, args, note)
}
