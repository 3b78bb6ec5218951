package warehouse

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Check is a single named verification query.
type Check struct {
	Name      string `yaml:"name"`
	Statement string `yaml:"statement"`
}

// Suite is an ordered list of verification queries run by the test command.
type Suite struct {
	Checks []Check `yaml:"checks"`
}

// DefaultSuite returns the built-in verification queries, mirroring what a
// manual connection test would run by hand.
func DefaultSuite() Suite {
	return Suite{Checks: []Check{
		{Name: "session", Statement: "SELECT CURRENT_VERSION(), CURRENT_USER(), CURRENT_ROLE()"},
		{Name: "context", Statement: "SELECT CURRENT_ACCOUNT(), CURRENT_WAREHOUSE(), CURRENT_DATABASE(), CURRENT_SCHEMA()"},
		{Name: "timestamp", Statement: "SELECT CURRENT_TIMESTAMP()"},
	}}
}

// LoadSuite reads a check suite from a YAML file. Unknown fields are
// rejected so typos surface as errors instead of silently empty checks.
func LoadSuite(path string) (Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("read suite %q: %w", path, err)
	}

	var suite Suite
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&suite); err != nil {
		return Suite{}, fmt.Errorf("parse suite %q: %w", path, err)
	}

	if len(suite.Checks) == 0 {
		return Suite{}, fmt.Errorf("suite %q contains no checks", path)
	}
	for i, check := range suite.Checks {
		if strings.TrimSpace(check.Name) == "" {
			return Suite{}, fmt.Errorf("suite %q: check %d has no name", path, i+1)
		}
		if strings.TrimSpace(check.Statement) == "" {
			return Suite{}, fmt.Errorf("suite %q: check %q has no statement", path, check.Name)
		}
	}
	return suite, nil
}
