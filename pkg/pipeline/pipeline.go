// Package pipeline runs the full metadata validation flow: load the sample
// and project tables, validate each, reconcile them against each other,
// resolve the sequence files they reference, and write the validated outputs
// plus a machine-readable run report.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/omicslab/sra-engine/pkg/apperrors"
	"github.com/omicslab/sra-engine/pkg/config"
	"github.com/omicslab/sra-engine/pkg/models"
	"github.com/omicslab/sra-engine/pkg/reconcile"
	"github.com/omicslab/sra-engine/pkg/resolve"
	"github.com/omicslab/sra-engine/pkg/submission"
	"github.com/omicslab/sra-engine/pkg/tabular"
	"github.com/omicslab/sra-engine/pkg/validate"
)

// DefaultOutputDir receives validated tables, the manifest, and the run
// report when the request does not name an output directory.
const DefaultOutputDir = "validated_metadata"

const (
	manifestName = "file_manifest.txt"
	reportName   = "validation_report.json"
)

// RunRequest describes one validation run. At least one metadata path is
// required; the rest is optional.
type RunRequest struct {
	SamplePath  string
	ProjectPath string

	// FileDir is joined onto relative file references before they are
	// checked on disk. Empty means references are used as written.
	FileDir string

	// OutputDir defaults to DefaultOutputDir.
	OutputDir string

	// DropMissing removes rows whose samples reference missing files from
	// both tables instead of merely reporting them.
	DropMissing bool

	// Strict fails the run on any recorded issue and suppresses all outputs.
	Strict bool

	// Workers caps concurrent file checks. Zero uses performance.max_workers.
	Workers int

	// WriteManifest emits file_manifest.txt listing every present file.
	WriteManifest bool
}

// TableReport summarizes one table's trip through the run.
type TableReport struct {
	Role    models.TableRole `json:"role"`
	Path    string           `json:"path"`
	RowsIn  int              `json:"rows_in"`
	RowsOut int              `json:"rows_out"`
	Output  string           `json:"output,omitempty"`
}

// FileReport totals the file resolution sweep.
type FileReport struct {
	Checked int `json:"checked"`
	Present int `json:"present"`
	Missing int `json:"missing"`
}

// RunReport is the run's outcome, also written to validation_report.json.
type RunReport struct {
	RunID              uuid.UUID        `json:"run_id"`
	StartedAt          time.Time        `json:"started_at"`
	DurationMS         int64            `json:"duration_ms"`
	Tables             []TableReport    `json:"tables"`
	Issues             models.IssueList `json:"issues"`
	Warnings           int              `json:"warnings"`
	Errors             int              `json:"errors"`
	Files              FileReport       `json:"files"`
	DroppedKeys        []string         `json:"dropped_keys,omitempty"`
	ManifestPath       string           `json:"manifest_path,omitempty"`
	CheckpointsEnabled bool             `json:"checkpoints_enabled"`

	// ReportPath is where the JSON form of this report landed. Not part of
	// the JSON itself.
	ReportPath string `json:"-"`
}

// Runner executes validation runs.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (*RunReport, error)
}

type runner struct {
	cfg        *config.Config
	validator  *validate.Validator
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
}

// NewRunner builds a Runner on the given configuration.
func NewRunner(cfg *config.Config, logger *zap.Logger) Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	return &runner{
		cfg:        cfg,
		validator:  validate.New(cfg, logger),
		reconciler: reconcile.New(logger),
		logger:     logger.Named("pipeline"),
	}
}

// tableState tracks one table through the run; reportIdx points into
// RunReport.Tables.
type tableState struct {
	role      models.TableRole
	path      string
	table     *models.Table
	reportIdx int
}

// Run executes the flow described in the package comment. On a strict
// failure the report is still returned alongside ErrStrictValidation so
// callers can render the recorded issues; no files are written in that case.
func (r *runner) Run(ctx context.Context, req RunRequest) (*RunReport, error) {
	if req.SamplePath == "" && req.ProjectPath == "" {
		return nil, fmt.Errorf("a sample or project metadata path is required")
	}
	outDir := req.OutputDir
	if outDir == "" {
		outDir = DefaultOutputDir
	}
	workers := req.Workers
	if workers <= 0 {
		workers = r.cfg.Performance.MaxWorkers
	}

	started := time.Now()
	report := &RunReport{
		RunID:              uuid.New(),
		StartedAt:          started.UTC(),
		CheckpointsEnabled: r.cfg.Performance.EnableCheckpoints,
	}
	r.logger.Info("starting validation run",
		zap.String("run_id", report.RunID.String()),
		zap.String("sample_path", req.SamplePath),
		zap.String("project_path", req.ProjectPath),
		zap.String("output_dir", outDir),
		zap.Int("workers", workers),
		zap.Bool("strict", req.Strict))

	states, err := r.loadTables(req, report)
	if err != nil {
		return nil, err
	}

	var issues models.IssueList
	for _, st := range states {
		validated, tableIssues, err := r.validator.Validate(st.table, st.role, validate.Options{})
		if err != nil {
			return nil, fmt.Errorf("failed to validate %s table: %w", st.role, err)
		}
		st.table = validated
		report.Tables[st.reportIdx].RowsOut = validated.Len()
		issues.Add(tableIssues...)
	}

	if sample, project := findRole(states, models.RoleSample), findRole(states, models.RoleProject); sample != nil && project != nil {
		drift := r.reconciler.Diff(sample.table, project.table)
		issues.Add(drift.Issues()...)
		issues.Add(r.reconciler.FilenameMismatches(sample.table, project.table)...)
	}

	records, err := r.resolveFiles(ctx, states, req.FileDir, workers, &issues)
	if err != nil {
		return nil, err
	}
	missing := resolve.Missing(records)
	report.Files = FileReport{
		Checked: len(records),
		Present: len(records) - len(missing),
		Missing: len(missing),
	}

	if req.DropMissing && len(missing) > 0 {
		records = r.dropMissingSamples(states, records, report, &issues)
	}

	report.Issues = issues
	report.Warnings = len(issues.Warnings())
	report.Errors = len(issues.Errors())

	if req.Strict && len(issues) > 0 {
		report.DurationMS = time.Since(started).Milliseconds()
		return report, fmt.Errorf("run produced %s: %w", issues.Summary(), apperrors.ErrStrictValidation)
	}

	if err := r.writeOutputs(req, outDir, states, records, report); err != nil {
		return nil, err
	}

	report.DurationMS = time.Since(started).Milliseconds()
	if err := r.writeReport(outDir, report); err != nil {
		return nil, err
	}

	r.logger.Info("validation run complete",
		zap.String("run_id", report.RunID.String()),
		zap.Int("warnings", report.Warnings),
		zap.Int("errors", report.Errors),
		zap.Int("files_missing", report.Files.Missing),
		zap.Int64("duration_ms", report.DurationMS))
	return report, nil
}

func (r *runner) loadTables(req RunRequest, report *RunReport) ([]*tableState, error) {
	var states []*tableState
	add := func(role models.TableRole, path string) error {
		if path == "" {
			return nil
		}
		table, err := tabular.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load %s metadata: %w", role, err)
		}
		report.Tables = append(report.Tables, TableReport{
			Role:   role,
			Path:   path,
			RowsIn: table.Len(),
		})
		states = append(states, &tableState{
			role:      role,
			path:      path,
			table:     table,
			reportIdx: len(report.Tables) - 1,
		})
		return nil
	}
	if err := add(models.RoleSample, req.SamplePath); err != nil {
		return nil, err
	}
	if err := add(models.RoleProject, req.ProjectPath); err != nil {
		return nil, err
	}
	return states, nil
}

// resolveFiles sweeps every table for file references. A table without file
// columns is skipped rather than failed; the project table commonly carries
// none. Each missing file is recorded as a warning against its row.
func (r *runner) resolveFiles(ctx context.Context, states []*tableState, fileDir string, workers int, issues *models.IssueList) ([]models.FilePresenceRecord, error) {
	resolver := resolve.New(resolve.Config{Workers: workers}, r.logger)
	var combined []models.FilePresenceRecord
	for _, st := range states {
		records, err := resolver.Resolve(ctx, st.table, fileDir)
		if errors.Is(err, apperrors.ErrNoFileColumns) {
			r.logger.Debug("table carries no file columns, skipping file resolution",
				zap.String("table", string(st.role)))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve files for %s table: %w", st.role, err)
		}
		for _, rec := range resolve.Missing(records) {
			issues.Add(models.Issue{
				Severity: models.SeverityWarning,
				Table:    st.role,
				Column:   rec.Column,
				Row:      rec.Row,
				Key:      rec.Key,
				Message:  fmt.Sprintf("referenced file %q not found", rec.Ref),
			})
		}
		combined = append(combined, records...)
	}
	return combined, nil
}

// dropMissingSamples removes every row keyed by a sample that owns a missing
// file, from both tables, and filters the presence records down to the
// survivors so the manifest reflects what remains.
func (r *runner) dropMissingSamples(states []*tableState, records []models.FilePresenceRecord, report *RunReport, issues *models.IssueList) []models.FilePresenceRecord {
	dropKeys := missingKeys(records)
	if len(dropKeys) == 0 {
		return records
	}
	report.DroppedKeys = dropKeys

	for _, st := range states {
		dropped, removed := r.reconciler.DropByKey(st.table, dropKeys)
		if removed == 0 {
			continue
		}
		st.table = dropped
		report.Tables[st.reportIdx].RowsOut = dropped.Len()
		issues.Add(models.TableIssue(models.SeverityWarning, st.role, models.KeyColumn,
			fmt.Sprintf("dropped %s with missing files: %s",
				countNoun(removed, "row"), strings.Join(dropKeys, ", "))))
	}

	dropSet := make(map[string]struct{}, len(dropKeys))
	for _, k := range dropKeys {
		dropSet[k] = struct{}{}
	}
	kept := records[:0]
	for _, rec := range records {
		if _, gone := dropSet[rec.Key]; gone {
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// missingKeys returns the distinct non-empty keys owning missing records,
// in first-seen order.
func missingKeys(records []models.FilePresenceRecord) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, rec := range resolve.Missing(records) {
		if rec.Key == "" {
			continue
		}
		if _, dup := seen[rec.Key]; dup {
			continue
		}
		seen[rec.Key] = struct{}{}
		keys = append(keys, rec.Key)
	}
	return keys
}

func (r *runner) writeOutputs(req RunRequest, outDir string, states []*tableState, records []models.FilePresenceRecord, report *RunReport) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	for _, st := range states {
		outPath := tabular.ValidatedPath(st.path, outDir)
		if err := tabular.Write(st.table, outPath); err != nil {
			return fmt.Errorf("failed to write validated %s table: %w", st.role, err)
		}
		report.Tables[st.reportIdx].Output = outPath
	}

	if req.WriteManifest {
		manifestPath := filepath.Join(outDir, manifestName)
		f, err := os.Create(manifestPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", manifestPath, err)
		}
		if err := submission.WriteManifest(resolve.PresentPaths(records), f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", manifestPath, err)
		}
		report.ManifestPath = manifestPath
	}
	return nil
}

func (r *runner) writeReport(outDir string, report *RunReport) error {
	reportPath := filepath.Join(outDir, reportName)
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render run report: %w", err)
	}
	if err := os.WriteFile(reportPath, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", reportPath, err)
	}
	report.ReportPath = reportPath
	return nil
}

func findRole(states []*tableState, role models.TableRole) *tableState {
	for _, st := range states {
		if st.role == role {
			return st
		}
	}
	return nil
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %s", n, inflection.Plural(noun))
}
