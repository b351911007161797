package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func intp(n int) *int { return &n }

func TestValidateLoad_ValidMinimal(t *testing.T) {
	t.Parallel()

	l := Load{
		Job:       "people",
		Parser:    Parser{Options: Options{"comma": ";"}},
		Transform: []Transform{{Kind: "infer"}, {Kind: "dedupe", Options: Options{"policy": "most-complete"}}},
		Storage: Storage{
			Kind: "sqlite",
			DB: DBConfig{Columns: []Column{
				{Name: "age", Type: "integer"},
				{Name: "price", Type: "decimal", Size: intp(8), Precision: intp(2)},
			}},
		},
	}

	if issues := ValidateLoad(l); len(issues) != 0 {
		t.Fatalf("ValidateLoad() = %+v, want no issues", issues)
	}
}

// TestValidateLoad_Issues checks one misconfiguration per case.
func TestValidateLoad_Issues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		load Load
		sev  IssueSeverity
		path string
		msg  string
	}{
		{
			name: "empty job",
			load: Load{},
			sev:  SeverityWarning,
			path: "job",
			msg:  "job is empty",
		},
		{
			name: "multi-char comma",
			load: Load{Parser: Parser{Options: Options{"comma": ";;"}}},
			sev:  SeverityError,
			path: "parser.options.comma",
			msg:  "single character",
		},
		{
			name: "quote as comma",
			load: Load{Parser: Parser{Options: Options{"comma": "\""}}},
			sev:  SeverityError,
			path: "parser.options.comma",
			msg:  "not a valid delimiter",
		},
		{
			name: "empty transform kind",
			load: Load{Transform: []Transform{{Kind: " "}}},
			sev:  SeverityError,
			path: "transform[0].kind",
			msg:  "must not be empty",
		},
		{
			name: "unknown transform kind",
			load: Load{Transform: []Transform{{Kind: "infer"}, {Kind: "pivot"}}},
			sev:  SeverityWarning,
			path: "transform[1].kind",
			msg:  "unknown transform kind",
		},
		{
			name: "bad dedupe policy",
			load: Load{Transform: []Transform{{Kind: "dedupe", Options: Options{"policy": "keep-random"}}}},
			sev:  SeverityError,
			path: "transform[0].options.policy",
			msg:  "unknown dedupe policy",
		},
		{
			name: "unknown storage kind",
			load: Load{Storage: Storage{Kind: "oracle"}},
			sev:  SeverityError,
			path: "storage.kind",
			msg:  "unknown storage kind",
		},
		{
			name: "postgres without dsn",
			load: Load{Storage: Storage{Kind: "postgres"}},
			sev:  SeverityWarning,
			path: "storage.db.dsn",
			msg:  "has no dsn",
		},
		{
			name: "invalid column name",
			load: Load{Storage: Storage{DB: DBConfig{Columns: []Column{{Name: "first name", Type: "string"}}}}},
			sev:  SeverityError,
			path: "storage.db.columns[0].name",
			msg:  "invalid column name",
		},
		{
			name: "duplicate column",
			load: Load{Storage: Storage{DB: DBConfig{Columns: []Column{{Name: "age", Type: "integer"}, {Name: "AGE", Type: "integer"}}}}},
			sev:  SeverityError,
			path: "storage.db.columns[1].name",
			msg:  "already declared",
		},
		{
			name: "unknown type",
			load: Load{Storage: Storage{DB: DBConfig{Columns: []Column{{Name: "blob", Type: "geometry"}}}}},
			sev:  SeverityWarning,
			path: "storage.db.columns[0].type",
			msg:  "created as string",
		},
		{
			name: "decimal without precision",
			load: Load{Storage: Storage{DB: DBConfig{Columns: []Column{{Name: "price", Type: "decimal", Size: intp(8)}}}}},
			sev:  SeverityError,
			path: "storage.db.columns[0]",
			msg:  "decimal",
		},
		{
			name: "unknown metrics backend",
			load: Load{Metrics: Metrics{Backend: "graphite"}},
			sev:  SeverityError,
			path: "metrics.backend",
			msg:  "unknown metrics backend",
		},
		{
			name: "prometheus without url",
			load: Load{Metrics: Metrics{Backend: "prometheus"}},
			sev:  SeverityWarning,
			path: "metrics.pushgateway_url",
			msg:  "PUSHGATEWAY_URL",
		},
		{
			name: "datadog without addr",
			load: Load{Metrics: Metrics{Backend: "datadog"}},
			sev:  SeverityWarning,
			path: "metrics.datadog_addr",
			msg:  "DD_AGENT_ADDR",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			issues := ValidateLoad(tt.load)
			if !hasIssue(t, issues, tt.sev, tt.path, tt.msg) {
				t.Fatalf("ValidateLoad() missing %s at %s containing %q; got %+v", tt.sev, tt.path, tt.msg, issues)
			}
		})
	}
}

func TestHasErrorsAndIssueError(t *testing.T) {
	t.Parallel()

	warn := Issue{Severity: SeverityWarning, Path: "job", Message: "empty"}
	bad := Issue{Severity: SeverityError, Path: "storage.kind", Message: "unknown"}

	if HasErrors([]Issue{warn}) {
		t.Fatalf("HasErrors(warning only) = true, want false")
	}
	if !HasErrors([]Issue{warn, bad}) {
		t.Fatalf("HasErrors(with error) = false, want true")
	}
	if got, want := bad.Error(), "error at storage.kind: unknown"; got != want {
		t.Fatalf("Issue.Error() = %q, want %q", got, want)
	}
}
