// Package validate applies the ordered repair and audit pass to metadata
// tables before submission. Each step appends issues to the run's list and
// keeps going; the pass always yields a complete best-effort table. Only
// strict mode turns accumulated issues into a failure, and only at the end.
package validate

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/omicslab/sra-engine/pkg/apperrors"
	"github.com/omicslab/sra-engine/pkg/config"
	"github.com/omicslab/sra-engine/pkg/logging"
	"github.com/omicslab/sra-engine/pkg/models"
	"github.com/omicslab/sra-engine/pkg/normalize"
	"github.com/omicslab/sra-engine/pkg/vocab"
)

// Options tunes a validation pass.
type Options struct {
	// Strict escalates any accumulated issue to a failure once the pass
	// completes. Intermediate behavior is identical either way.
	Strict bool
}

// Validator runs the repair and audit pass over one table at a time.
type Validator struct {
	registry *Registry
	logger   *zap.Logger
}

// New builds a validator bound to the run configuration.
func New(cfg *config.Config, logger *zap.Logger) *Validator {
	return &Validator{
		registry: NewRegistry(cfg),
		logger:   logger.Named("validate"),
	}
}

// Validate runs the ordered pass over a table of the given role. The input
// table is never mutated; repairs land on the returned copy. Later steps
// depend on earlier repairs, so the order is fixed:
//
//  0. flag rows whose parsed cell count disagrees with the header
//  1. drop rows with an empty primary key
//  2. report duplicate primary keys (rows are kept)
//  3. create missing required columns
//  4. fill empty cells in columns that carry a configured default
//  5. normalize dates, geographic names, coordinates and sample sources
//  6. coerce controlled-vocabulary fields
//  7. cross-field checks (read pairing, host presence)
//  8. backfill empty library_ID from sample_name
//  9. trim trailing rows left without a primary key
func (v *Validator) Validate(table *models.Table, role models.TableRole, opts Options) (*models.Table, models.IssueList, error) {
	t := table.Clone()
	var issues models.IssueList

	v.flagMisalignedRows(t, role, &issues)
	t = v.dropEmptyKeys(t, role, &issues)
	v.reportDuplicateKeys(t, role, &issues)
	v.ensureRequiredColumns(t, role, &issues)
	v.fillDefaults(t, role, &issues)
	v.applyNormalizers(t, role, &issues)
	if role == models.RoleProject {
		v.auditProjectFormats(t, &issues)
	}
	v.coerceVocabularies(t, role, &issues)
	v.checkCrossFields(t, role, &issues)
	if role == models.RoleSample {
		v.backfillLibraryID(t, role, &issues)
	}
	t = v.trimRaggedTail(t, role, &issues)

	v.logger.Info("validation pass complete",
		zap.String("table", string(role)),
		zap.Int("rows_in", table.Len()),
		zap.Int("rows_out", t.Len()),
		zap.Int("issues", len(issues)))

	if opts.Strict && len(issues) > 0 {
		return t, issues, fmt.Errorf("%s table has %s: %w", role, issues.Summary(), apperrors.ErrStrictValidation)
	}
	return t, issues, nil
}

func (v *Validator) flagMisalignedRows(t *models.Table, role models.TableRole, issues *models.IssueList) {
	if t.Widths == nil {
		return
	}
	want := len(t.Columns)
	for i := range t.Rows {
		w := t.Width(i)
		if w < 0 || w == want {
			continue
		}
		issues.Add(models.Issue{
			Severity: models.SeverityWarning,
			Table:    role,
			Row:      i,
			Key:      t.Key(i),
			Message:  fmt.Sprintf("row has %d cells but the header has %d columns", w, want),
		})
	}
}

func (v *Validator) dropEmptyKeys(t *models.Table, role models.TableRole, issues *models.IssueList) *models.Table {
	if !t.HasColumn(models.KeyColumn) {
		return t
	}
	kept := t.Filter(func(i int, _ models.Row) bool { return t.Key(i) != "" })
	if dropped := t.Len() - kept.Len(); dropped > 0 {
		issues.Add(models.TableIssue(models.SeverityWarning, role, models.KeyColumn,
			fmt.Sprintf("dropped %s with empty %s", countNoun(dropped, "row"), models.KeyColumn)))
		v.logger.Debug("dropped rows with empty key",
			zap.String("table", string(role)),
			zap.Int("dropped", dropped))
	}
	return kept
}

func (v *Validator) reportDuplicateKeys(t *models.Table, role models.TableRole, issues *models.IssueList) {
	if !t.HasColumn(models.KeyColumn) {
		return
	}
	rowsByKey := map[string][]int{}
	var order []string
	for i := range t.Rows {
		k := t.Key(i)
		if k == "" {
			continue
		}
		if _, seen := rowsByKey[k]; !seen {
			order = append(order, k)
		}
		rowsByKey[k] = append(rowsByKey[k], i)
	}
	for _, k := range order {
		rows := rowsByKey[k]
		if len(rows) < 2 {
			continue
		}
		issues.Add(models.Issue{
			Severity: models.SeverityWarning,
			Table:    role,
			Column:   models.KeyColumn,
			Row:      -1,
			Key:      k,
			Message:  fmt.Sprintf("%s %q appears %d times (rows %v)", models.KeyColumn, k, len(rows), rows),
		})
	}
}

func (v *Validator) ensureRequiredColumns(t *models.Table, role models.TableRole, issues *models.IssueList) {
	var created []string
	for _, col := range requiredColumns[role] {
		if !t.EnsureColumn(col) {
			continue
		}
		created = append(created, col)
		if def, ok := v.registry.Default(col); ok && def != "" {
			for i := range t.Rows {
				t.Set(i, col, def)
			}
		}
	}
	if len(created) > 0 {
		issues.Add(models.TableIssue(models.SeverityWarning, role, "",
			"created missing required columns: "+strings.Join(created, ", ")))
	}
}

func (v *Validator) fillDefaults(t *models.Table, role models.TableRole, issues *models.IssueList) {
	for _, col := range t.Columns {
		def, ok := v.registry.Default(col)
		if !ok || def == "" {
			continue
		}
		filled := 0
		for i := range t.Rows {
			if t.Get(i, col) == "" {
				t.Set(i, col, def)
				filled++
			}
		}
		if filled > 0 {
			issues.Add(models.TableIssue(models.SeverityWarning, role, col,
				fmt.Sprintf("applied default %q to %s in column %s", def, countNoun(filled, "empty cell"), col)))
		}
	}
}

func (v *Validator) applyNormalizers(t *models.Table, role models.TableRole, issues *models.IssueList) {
	for _, col := range t.Columns {
		spec := v.registry.Spec(col)
		if spec.Normalize == nil {
			continue
		}
		isDate := strings.HasSuffix(col, "_date")
		for i := range t.Rows {
			raw := t.Get(i, col)
			normalized := spec.Normalize(raw)
			if normalized != raw {
				t.Set(i, col, normalized)
			}
			if isDate && !normalize.IsCanonicalDate(normalized) {
				issues.Add(models.Issue{
					Severity: models.SeverityWarning,
					Table:    role,
					Column:   col,
					Row:      i,
					Key:      t.Key(i),
					Message:  fmt.Sprintf("unrecognized date %q left unchanged", logging.TruncateCell(raw)),
				})
			}
		}
	}
}

// auditProjectFormats reports cells that survive lenient normalization but
// still miss the strict submission-portal formats. Report only, no mutation.
func (v *Validator) auditProjectFormats(t *models.Table, issues *models.IssueList) {
	checks := []struct {
		column string
		valid  func(string) bool
	}{
		{"geo_loc_name", normalize.IsValidGeoLocName},
		{"lat_lon", normalize.IsValidLatLon},
	}
	for _, check := range checks {
		if !t.HasColumn(check.column) {
			continue
		}
		for i := range t.Rows {
			val := t.Get(i, check.column)
			if val == "" || check.valid(val) {
				continue
			}
			issues.Add(models.Issue{
				Severity: models.SeverityWarning,
				Table:    models.RoleProject,
				Column:   check.column,
				Row:      i,
				Key:      t.Key(i),
				Message:  fmt.Sprintf("%s %q does not match the expected format", check.column, logging.TruncateCell(val)),
			})
		}
	}
}

func (v *Validator) coerceVocabularies(t *models.Table, role models.TableRole, issues *models.IssueList) {
	for _, col := range t.Columns {
		spec := v.registry.Spec(col)
		if !spec.HasVocab {
			continue
		}
		for i := range t.Rows {
			raw := t.Get(i, col)
			coerced, outcome := vocab.Coerce(col, raw, spec.Default)
			if coerced != raw {
				t.Set(i, col, coerced)
			}
			switch outcome {
			case vocab.OutcomeReplaced:
				issues.Add(models.Issue{
					Severity: models.SeverityWarning,
					Table:    role,
					Column:   col,
					Row:      i,
					Key:      t.Key(i),
					Message:  fmt.Sprintf("invalid %s %q replaced with default %q", col, logging.TruncateCell(raw), coerced),
				})
			case vocab.OutcomeRejected:
				issues.Add(models.Issue{
					Severity: models.SeverityWarning,
					Table:    role,
					Column:   col,
					Row:      i,
					Key:      t.Key(i),
					Message:  fmt.Sprintf("invalid %s %q kept, no default configured", col, logging.TruncateCell(raw)),
				})
			}
		}
	}
}

func (v *Validator) checkCrossFields(t *models.Table, role models.TableRole, issues *models.IssueList) {
	switch role {
	case models.RoleSample:
		v.checkReadPairing(t, issues)
	case models.RoleProject:
		v.checkHostPresence(t, issues)
	}
}

func (v *Validator) checkReadPairing(t *models.Table, issues *models.IssueList) {
	if !t.HasColumn("library_layout") {
		return
	}
	for i := range t.Rows {
		layout := t.Get(i, "library_layout")
		second := t.Get(i, "filename2")
		switch {
		case layout == "paired" && second == "":
			issues.Add(models.Issue{
				Severity: models.SeverityWarning,
				Table:    models.RoleSample,
				Column:   "filename2",
				Row:      i,
				Key:      t.Key(i),
				Message:  fmt.Sprintf("sample %s is marked paired but filename2 is empty", t.Key(i)),
			})
		case layout == "single" && second != "":
			issues.Add(models.Issue{
				Severity: models.SeverityWarning,
				Table:    models.RoleSample,
				Column:   "filename2",
				Row:      i,
				Key:      t.Key(i),
				Message:  fmt.Sprintf("sample %s is marked single but carries a second filename", t.Key(i)),
			})
		}
	}
}

func (v *Validator) checkHostPresence(t *models.Table, issues *models.IssueList) {
	if !t.HasColumn("sample_source") || !t.HasColumn("host") {
		return
	}
	for i := range t.Rows {
		if t.Get(i, "sample_source") != "host-associated" || t.Get(i, "host") != "" {
			continue
		}
		issues.Add(models.Issue{
			Severity: models.SeverityWarning,
			Table:    models.RoleProject,
			Column:   "host",
			Row:      i,
			Key:      t.Key(i),
			Message:  fmt.Sprintf("sample %s is host-associated but host is empty", t.Key(i)),
		})
	}
}

func (v *Validator) backfillLibraryID(t *models.Table, role models.TableRole, issues *models.IssueList) {
	if !t.HasColumn("library_ID") {
		return
	}
	filled := 0
	for i := range t.Rows {
		if t.Get(i, "library_ID") != "" {
			continue
		}
		name := t.Get(i, models.KeyColumn)
		if name == "" {
			continue
		}
		t.Set(i, "library_ID", name)
		filled++
	}
	if filled > 0 {
		issues.Add(models.TableIssue(models.SeverityWarning, role, "library_ID",
			fmt.Sprintf("copied %s into %s", models.KeyColumn, countNoun(filled, "empty library_ID cell"))))
	}
}

func (v *Validator) trimRaggedTail(t *models.Table, role models.TableRole, issues *models.IssueList) *models.Table {
	if !t.HasColumn(models.KeyColumn) {
		return t
	}
	last := -1
	for i := range t.Rows {
		if t.Key(i) != "" {
			last = i
		}
	}
	if last < 0 || last == t.Len()-1 {
		return t
	}
	trimmed := t.Filter(func(i int, _ models.Row) bool { return i <= last })
	issues.Add(models.TableIssue(models.SeverityWarning, role, models.KeyColumn,
		fmt.Sprintf("trimmed %s past the last keyed row", countNoun(t.Len()-1-last, "trailing row"))))
	return trimmed
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %s", n, inflection.Plural(noun))
}
