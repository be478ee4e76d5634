// Package resolve checks that the sequence files a metadata table references
// actually exist on disk. Small tables are checked inline; large ones fan out
// over a bounded worker pool. Both modes emit the same row-major record
// sequence, so callers never see a difference beyond wall time.
package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/omicslab/sra-engine/pkg/apperrors"
	"github.com/omicslab/sra-engine/pkg/models"
)

// progressLogEvery spaces out progress entries on big resolutions.
const progressLogEvery = 500

// Config tunes a Resolver.
type Config struct {
	// Workers caps concurrent existence checks. Zero means the stock pool
	// default; one or less runs checks inline without the pool.
	Workers int
}

// Resolver locates and stat-checks every file reference in a table.
type Resolver struct {
	workers int
	logger  *zap.Logger
}

// New builds a resolver.
func New(cfg Config, logger *zap.Logger) *Resolver {
	workers := cfg.Workers
	if workers == 0 {
		workers = DefaultPoolConfig().MaxConcurrent
	}
	return &Resolver{
		workers: workers,
		logger:  logger.Named("resolve"),
	}
}

// Resolve checks every non-empty cell of every file-bearing column the table
// carries. Absolute references are used as-is; relative ones are joined to
// baseDir (or used verbatim when baseDir is empty). Records come back in
// row-major order regardless of the execution mode.
func (r *Resolver) Resolve(ctx context.Context, table *models.Table, baseDir string) ([]models.FilePresenceRecord, error) {
	var columns []string
	for _, col := range models.FileColumns {
		if table.HasColumn(col) {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table has columns %v: %w", table.Columns, apperrors.ErrNoFileColumns)
	}

	var records []models.FilePresenceRecord
	for i := range table.Rows {
		for _, col := range columns {
			ref := table.Get(i, col)
			if ref == "" {
				continue
			}
			records = append(records, models.FilePresenceRecord{
				Row:    i,
				Key:    table.Key(i),
				Column: col,
				Ref:    ref,
				Path:   joinRef(ref, baseDir),
			})
		}
	}
	if len(records) == 0 {
		return nil, nil
	}

	if r.workers <= 1 {
		for i := range records {
			records[i].Exists = fileExists(records[i].Path)
		}
	} else if err := r.resolveConcurrent(ctx, records); err != nil {
		return nil, err
	}

	present := 0
	for _, rec := range records {
		if rec.Exists {
			present++
		}
	}
	r.logger.Info("file resolution complete",
		zap.Int("checked", len(records)),
		zap.Int("present", present),
		zap.Int("missing", len(records)-present),
		zap.Int("workers", r.workers))
	return records, nil
}

func (r *Resolver) resolveConcurrent(ctx context.Context, records []models.FilePresenceRecord) error {
	type outcome struct {
		index  int
		exists bool
	}

	items := make([]WorkItem[outcome], len(records))
	for i := range records {
		index, path := i, records[i].Path
		items[i] = WorkItem[outcome]{
			ID: path,
			Execute: func(context.Context) (outcome, error) {
				return outcome{index: index, exists: fileExists(path)}, nil
			},
		}
	}

	pool := NewPool(PoolConfig{MaxConcurrent: r.workers}, r.logger)
	results := Process(ctx, pool, items, func(completed, total int) {
		if completed%progressLogEvery == 0 || completed == total {
			r.logger.Debug("existence checks running",
				zap.Int("completed", completed),
				zap.Int("total", total))
		}
	})
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("file resolution interrupted: %w", err)
	}
	for _, res := range results {
		if res.Err != nil {
			return fmt.Errorf("failed to check %s: %w", res.ID, res.Err)
		}
		records[res.Result.index].Exists = res.Result.exists
	}
	return nil
}

func joinRef(ref, baseDir string) string {
	if baseDir == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(baseDir, ref)
}

// fileExists mirrors a plain existence probe: any stat failure counts as
// missing, including permission errors.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// PresentPaths returns the paths that exist, deduplicated with first-seen
// order preserved. A file referenced from two columns or two rows counts
// once. This list is the handoff contract to any uploader.
func PresentPaths(records []models.FilePresenceRecord) []string {
	seen := make(map[string]struct{}, len(records))
	var out []string
	for _, rec := range records {
		if !rec.Exists {
			continue
		}
		if _, dup := seen[rec.Path]; dup {
			continue
		}
		seen[rec.Path] = struct{}{}
		out = append(out, rec.Path)
	}
	return out
}

// Missing returns the records whose path was not found.
func Missing(records []models.FilePresenceRecord) []models.FilePresenceRecord {
	var out []models.FilePresenceRecord
	for _, rec := range records {
		if !rec.Exists {
			out = append(out, rec)
		}
	}
	return out
}

// MissingGroup collects the unresolved references of one sample.
type MissingGroup struct {
	Key  string
	Refs []string
}

// GroupMissingByKey buckets missing references by their owning sample,
// preserving first-seen key order.
func GroupMissingByKey(records []models.FilePresenceRecord) []MissingGroup {
	index := map[string]int{}
	var groups []MissingGroup
	for _, rec := range records {
		if rec.Exists {
			continue
		}
		i, ok := index[rec.Key]
		if !ok {
			i = len(groups)
			index[rec.Key] = i
			groups = append(groups, MissingGroup{Key: rec.Key})
		}
		groups[i].Refs = append(groups[i].Refs, rec.Ref)
	}
	return groups
}
