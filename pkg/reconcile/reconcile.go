// Package reconcile compares the sample and project metadata tables, which
// must describe the same set of samples. Key drift and filename disagreements
// are reported as issues; row removal happens only through DropByKey, driven
// by caller policy.
package reconcile

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/omicslab/sra-engine/pkg/models"
)

// driftKeyDisplayLimit caps how many keys a drift issue spells out.
const driftKeyDisplayLimit = 5

// Drift holds the primary keys present in exactly one of the two tables.
// Both slices are deduplicated and keep first-seen row order.
type Drift struct {
	OnlyInSample  []string `json:"only_in_sample,omitempty"`
	OnlyInProject []string `json:"only_in_project,omitempty"`
}

// Empty reports whether the two tables cover the same key set.
func (d Drift) Empty() bool {
	return len(d.OnlyInSample) == 0 && len(d.OnlyInProject) == 0
}

// Issues renders the drift as validation issues, one per direction.
func (d Drift) Issues() models.IssueList {
	var issues models.IssueList
	if len(d.OnlyInSample) > 0 {
		issues.Add(driftIssue(models.RoleSample, "project", d.OnlyInSample))
	}
	if len(d.OnlyInProject) > 0 {
		issues.Add(driftIssue(models.RoleProject, "sample", d.OnlyInProject))
	}
	return issues
}

func driftIssue(role models.TableRole, other string, keys []string) models.Issue {
	shown := keys
	more := ""
	if len(shown) > driftKeyDisplayLimit {
		shown = shown[:driftKeyDisplayLimit]
		more = fmt.Sprintf(" (and %d more)", len(keys)-driftKeyDisplayLimit)
	}
	return models.TableIssue(models.SeverityWarning, role, models.KeyColumn,
		fmt.Sprintf("samples in %s metadata but missing from %s metadata: %s%s",
			role, other, strings.Join(shown, ", "), more))
}

// Reconciler cross-checks the two metadata tables of a run.
type Reconciler struct {
	logger *zap.Logger
}

// New builds a reconciler.
func New(logger *zap.Logger) *Reconciler {
	return &Reconciler{logger: logger.Named("reconcile")}
}

// Diff returns the keys unique to each table. Empty keys are ignored;
// duplicate keys count once.
func (r *Reconciler) Diff(sample, project *models.Table) Drift {
	drift := Drift{
		OnlyInSample:  missingFrom(sample, project),
		OnlyInProject: missingFrom(project, sample),
	}
	if !drift.Empty() {
		r.logger.Debug("key drift between tables",
			zap.Int("only_in_sample", len(drift.OnlyInSample)),
			zap.Int("only_in_project", len(drift.OnlyInProject)))
	}
	return drift
}

// missingFrom returns the keys of have that want does not carry, in have's
// first-seen row order.
func missingFrom(have, want *models.Table) []string {
	known := make(map[string]struct{}, want.Len())
	for _, k := range want.Keys() {
		if k != "" {
			known[k] = struct{}{}
		}
	}
	var out []string
	seen := map[string]struct{}{}
	for _, k := range have.Keys() {
		if k == "" {
			continue
		}
		if _, ok := known[k]; ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// DropByKey returns a copy of the table without the rows whose primary key is
// in keys, along with the number of rows removed. The input is never mutated.
func (r *Reconciler) DropByKey(t *models.Table, keys []string) (*models.Table, int) {
	if len(keys) == 0 {
		return t.Clone(), 0
	}
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[strings.TrimSpace(k)] = struct{}{}
	}
	kept := t.Filter(func(i int, _ models.Row) bool {
		_, hit := drop[t.Key(i)]
		return !hit
	})
	removed := t.Len() - kept.Len()
	if removed > 0 {
		r.logger.Debug("dropped rows by key",
			zap.Int("removed", removed),
			zap.Int("remaining", kept.Len()))
	}
	return kept, removed
}

// FilenameMismatches compares, for every key present in both tables, the base
// name of each file-bearing column the tables share. Differing base names are
// a distinct issue category from key drift: the sample exists in both tables
// but the tables disagree about its data files. Path prefixes are ignored on
// purpose, the tables often hold the same files under different mount points.
func (r *Reconciler) FilenameMismatches(sample, project *models.Table) models.IssueList {
	var issues models.IssueList

	var shared []string
	for _, col := range models.FileColumns {
		if sample.HasColumn(col) && project.HasColumn(col) {
			shared = append(shared, col)
		}
	}
	if len(shared) == 0 {
		return issues
	}

	projectRows := make(map[string]int, project.Len())
	for i := range project.Rows {
		k := project.Key(i)
		if k == "" {
			continue
		}
		if _, ok := projectRows[k]; !ok {
			projectRows[k] = i
		}
	}

	seen := map[string]struct{}{}
	for i := range sample.Rows {
		k := sample.Key(i)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		j, ok := projectRows[k]
		if !ok {
			continue
		}
		for _, col := range shared {
			a := sample.Get(i, col)
			b := project.Get(j, col)
			if a == "" || b == "" {
				continue
			}
			if filepath.Base(a) == filepath.Base(b) {
				continue
			}
			issues.Add(models.Issue{
				Severity: models.SeverityWarning,
				Table:    models.RoleSample,
				Column:   col,
				Row:      i,
				Key:      k,
				Message: fmt.Sprintf("%s for sample %s differs between tables: %q vs %q",
					col, k, filepath.Base(a), filepath.Base(b)),
			})
		}
	}
	return issues
}
