package warehouse

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSuiteFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write suite file: %v", err)
	}
	return path
}

func TestDefaultSuite(t *testing.T) {
	suite := DefaultSuite()
	if len(suite.Checks) == 0 {
		t.Fatal("default suite has no checks")
	}
	if suite.Checks[0].Name != "session" {
		t.Errorf("first check = %q, want session", suite.Checks[0].Name)
	}
	for _, check := range suite.Checks {
		if check.Statement == "" {
			t.Errorf("check %q has no statement", check.Name)
		}
	}
}

func TestLoadSuite(t *testing.T) {
	path := writeSuiteFile(t, `checks:
  - name: row-count
    statement: SELECT COUNT(*) FROM ORDERS
  - name: freshness
    statement: SELECT MAX(LOADED_AT) FROM ORDERS
`)

	suite, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suite.Checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(suite.Checks))
	}
	if suite.Checks[0].Name != "row-count" {
		t.Errorf("check name = %q", suite.Checks[0].Name)
	}
	if suite.Checks[1].Statement != "SELECT MAX(LOADED_AT) FROM ORDERS" {
		t.Errorf("check statement = %q", suite.Checks[1].Statement)
	}
}

func TestLoadSuite_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty checks", `checks: []`},
		{"missing name", "checks:\n  - statement: SELECT 1\n"},
		{"missing statement", "checks:\n  - name: orphan\n"},
		{"unknown field", "checks:\n  - name: x\n    statement: SELECT 1\n    retries: 3\n"},
		{"not yaml", `{{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSuiteFile(t, tt.content)
			if _, err := LoadSuite(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadSuite_MissingFile(t *testing.T) {
	if _, err := LoadSuite(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
