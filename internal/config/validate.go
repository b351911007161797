package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"csvload/internal/ddl"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "storage.db.columns[1].type"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

var (
	knownStorage    = map[string]struct{}{"sqlite": {}, "postgres": {}, "mssql": {}, "mysql": {}}
	knownTransforms = map[string]struct{}{"infer": {}, "normalize": {}, "dedupe": {}}
	knownPolicies   = map[string]struct{}{"keep-first": {}, "keep-last": {}, "most-complete": {}}
	knownTypes      = map[string]struct{}{
		"integer": {}, "int": {}, "bigint": {},
		"float": {}, "real": {}, "double": {},
		"decimal": {}, "numeric": {},
		"datetime": {}, "timestamp": {}, "date": {},
		"boolean": {}, "bool": {},
		"string": {}, "text": {}, "varchar": {},
	}
)

// ValidateLoad lints a Load. It does not mutate l; callers decide whether
// warnings are fatal.
func ValidateLoad(l Load) []Issue {
	var issues []Issue

	if strings.TrimSpace(l.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  `job is empty; "csvload" will be used for metrics labels`,
		})
	}
	issues = append(issues, validateParser(l.Parser)...)
	issues = append(issues, validateTransforms(l.Transform)...)
	issues = append(issues, validateStorage(l.Storage)...)
	issues = append(issues, validateMetrics(l.Metrics)...)

	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if v, ok := p.Options["comma"]; ok {
		s, isStr := v.(string)
		if !isStr || utf8.RuneCountInString(s) != 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.comma",
				Message:  fmt.Sprintf("comma must be a single character, got %v", v),
			})
		} else if s == "\"" || s == "\n" || s == "\r" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.comma",
				Message:  fmt.Sprintf("comma %q is not a valid delimiter", s),
			})
		}
	}
	return issues
}

func validateTransforms(ts []Transform) []Issue {
	var issues []Issue

	for i, t := range ts {
		path := fmt.Sprintf("transform[%d]", i)
		kind := strings.ToLower(strings.TrimSpace(t.Kind))
		if kind == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  "transform kind must not be empty",
			})
			continue
		}
		if _, ok := knownTransforms[kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("unknown transform kind %q; it will be ignored", t.Kind),
			})
			continue
		}

		if kind == "dedupe" {
			policy := strings.ToLower(strings.TrimSpace(t.Options.String("policy", "")))
			if _, ok := knownPolicies[policy]; policy != "" && !ok {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".options.policy",
					Message:  fmt.Sprintf("unknown dedupe policy %q (want keep-first, keep-last or most-complete)", policy),
				})
			}
		}
	}

	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if kind := strings.TrimSpace(s.Kind); kind != "" {
		if _, ok := knownStorage[kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.kind",
				Message:  fmt.Sprintf("unknown storage kind %q", s.Kind),
			})
		}
		if kind != "sqlite" && strings.TrimSpace(s.DB.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "storage.db.dsn",
				Message:  fmt.Sprintf("storage kind %q has no dsn; one must be given by flag or environment", kind),
			})
		}
	}

	seen := make(map[string]int, len(s.DB.Columns))
	for i, c := range s.DB.Columns {
		path := fmt.Sprintf("storage.db.columns[%d]", i)

		if !ddl.ValidIdentifier(c.Name) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("invalid column name %q", c.Name),
			})
		} else if prev, dup := seen[strings.ToLower(c.Name)]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("column %q is already declared at storage.db.columns[%d]", c.Name, prev),
			})
		} else {
			seen[strings.ToLower(c.Name)] = i
		}

		typ := strings.ToLower(strings.TrimSpace(c.Type))
		if _, ok := knownTypes[typ]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".type",
				Message:  fmt.Sprintf("unknown type %q; column will be created as string", c.Type),
			})
		}

		if _, err := ddl.StandardType(c.Descriptor()); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  err.Error(),
			})
		}
	}

	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch strings.ToLower(strings.TrimSpace(m.Backend)) {
	case "", "none":
	case "prometheus", "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend without pushgateway_url; PUSHGATEWAY_URL must be set",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend without datadog_addr; DD_AGENT_ADDR must be set",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q (want none, prometheus or datadog)", m.Backend),
		})
	}

	return issues
}
