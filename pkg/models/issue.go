package models

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
)

// Severity classifies a validation issue. Warnings mark repairs applied in
// place; errors mark anomalies the engine could not repair. Issues are
// accumulated for the whole run, never raised mid-pass.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// TableRole identifies which logical metadata table an issue or operation
// refers to.
type TableRole string

const (
	// RoleSample is the SRA sample metadata table: one row per physical
	// sequencing library.
	RoleSample TableRole = "sample"
	// RoleProject is the bioproject metadata table: one row per biological
	// sample with collection and environmental context.
	RoleProject TableRole = "project"
)

// Issue is one recorded validation anomaly. Row is the 0-based data row index
// or -1 for table-level issues; Key carries the owning sample_name when known.
type Issue struct {
	Severity Severity  `json:"severity"`
	Table    TableRole `json:"table,omitempty"`
	Column   string    `json:"column,omitempty"`
	Row      int       `json:"row"`
	Key      string    `json:"key,omitempty"`
	Message  string    `json:"message"`
}

// TableIssue builds a table-level issue (no row association).
func TableIssue(sev Severity, role TableRole, column, message string) Issue {
	return Issue{Severity: sev, Table: role, Column: column, Row: -1, Message: message}
}

// IssueList accumulates issues across validation steps.
type IssueList []Issue

// Add appends issues.
func (l *IssueList) Add(issues ...Issue) {
	*l = append(*l, issues...)
}

// Warnings returns the subset with warning severity.
func (l IssueList) Warnings() IssueList {
	return l.withSeverity(SeverityWarning)
}

// Errors returns the subset with error severity.
func (l IssueList) Errors() IssueList {
	return l.withSeverity(SeverityError)
}

func (l IssueList) withSeverity(sev Severity) IssueList {
	var out IssueList
	for _, issue := range l {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// HasErrors reports whether any issue carries error severity.
func (l IssueList) HasErrors() bool {
	for _, issue := range l {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Summary renders a short human-readable count, e.g. "3 warnings, 1 error".
func (l IssueList) Summary() string {
	if len(l) == 0 {
		return "no issues"
	}
	var parts []string
	if n := len(l.Warnings()); n > 0 {
		parts = append(parts, countNoun(n, "warning"))
	}
	if n := len(l.Errors()); n > 0 {
		parts = append(parts, countNoun(n, "error"))
	}
	return strings.Join(parts, ", ")
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %s", n, inflection.Plural(noun))
}
