// Package prepare builds SRA-shaped sample metadata: either a fresh table
// skeleton from detected read pairs, or an enriched copy of an arbitrary
// incoming table with the SRA-required fields mapped in.
package prepare

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/omicslab/sra-engine/pkg/config"
	"github.com/omicslab/sra-engine/pkg/models"
	"github.com/omicslab/sra-engine/pkg/resolve"
)

// requiredFields are mapped into every prepared table, in this column order:
// copied from the input when present, filled from the configured default
// otherwise, empty as a last resort.
var requiredFields = []string{
	"sample_name", "title", "library_ID", "library_strategy",
	"library_source", "library_selection", "library_layout",
	"platform", "instrument_model",
}

// pairBaseColumns is the fixed leading column order of a table built from
// read pairs.
var pairBaseColumns = []string{
	"sample_name", "title", "filename", "filename2",
	"filepath", "filepath2", "library_layout",
}

type contactColumn struct {
	name  string
	value string
}

func contactColumns(cfg *config.Config) []contactColumn {
	var out []contactColumn
	if cfg.Contact.Name != "" {
		out = append(out, contactColumn{"contact_name", cfg.Contact.Name})
	}
	if cfg.Contact.Email != "" {
		out = append(out, contactColumn{"contact_email", cfg.Contact.Email})
	}
	if cfg.Contact.Organization != "" {
		out = append(out, contactColumn{"contact_organization", cfg.Contact.Organization})
	}
	return out
}

// FromReadPairs builds a sample metadata skeleton from detected read pairs.
// Sample names and titles derive from the forward-read file names; configured
// defaults fill the remaining columns.
func FromReadPairs(pairs []resolve.ReadPair, cfg *config.Config) *models.Table {
	if cfg == nil {
		cfg = config.Default()
	}

	baseSet := map[string]struct{}{}
	for _, col := range pairBaseColumns {
		baseSet[col] = struct{}{}
	}
	var defaultCols []string
	for col := range cfg.DefaultValues {
		if _, taken := baseSet[col]; taken {
			continue
		}
		defaultCols = append(defaultCols, col)
	}
	sort.Strings(defaultCols)

	contacts := contactColumns(cfg)
	columns := append([]string{}, pairBaseColumns...)
	columns = append(columns, defaultCols...)
	for _, cc := range contacts {
		columns = append(columns, cc.name)
	}
	columns = append(columns, "bioproject_id", "biosample_id")

	table := models.NewTable(columns...)
	for _, pair := range pairs {
		name := pair.SampleName()
		row := models.Row{
			"sample_name":   name,
			"title":         "Metagenome from " + name,
			"filename":      filepath.Base(pair.Forward),
			"filename2":     "",
			"filepath":      pair.Forward,
			"filepath2":     "",
			"bioproject_id": "",
			"biosample_id":  "",
		}
		if pair.Paired() {
			row["filename2"] = filepath.Base(pair.Reverse)
			row["filepath2"] = pair.Reverse
			row["library_layout"] = "paired"
		} else {
			row["library_layout"] = "single"
		}
		for _, col := range defaultCols {
			row[col] = cfg.DefaultValues[col]
		}
		for _, cc := range contacts {
			row[cc.name] = cc.value
		}
		table.AppendRow(row)
	}
	return table
}

// EnrichTable maps an arbitrary incoming table onto the SRA-required column
// set: required fields copied or defaulted, a missing filename2 inferred from
// forward-read names, sample_source/host/isolation_source derived from title
// keywords, contact columns attached. The input table is never mutated.
func EnrichTable(t *models.Table, cfg *config.Config) (*models.Table, models.IssueList) {
	if cfg == nil {
		cfg = config.Default()
	}
	var issues models.IssueList

	out := models.NewTable()
	out.Rows = make([]models.Row, t.Len())
	for i := range out.Rows {
		out.Rows[i] = models.Row{}
	}
	fill := func(col string, get func(i int) string) {
		out.EnsureColumn(col)
		for i := range out.Rows {
			out.Rows[i][col] = get(i)
		}
	}

	var defaulted, emptied []string
	for _, col := range requiredFields {
		if t.HasColumn(col) {
			fill(col, func(i int) string { return t.Get(i, col) })
			continue
		}
		def := cfg.DefaultFor(col)
		fill(col, func(int) string { return def })
		if def != "" {
			defaulted = append(defaulted, col)
		} else {
			emptied = append(emptied, col)
		}
	}
	if len(defaulted) > 0 {
		issues.Add(models.TableIssue(models.SeverityWarning, models.RoleSample, "",
			"filled required columns from configured defaults: "+strings.Join(defaulted, ", ")))
	}
	if len(emptied) > 0 {
		issues.Add(models.TableIssue(models.SeverityWarning, models.RoleSample, "",
			"created empty required columns: "+strings.Join(emptied, ", ")))
	}

	if t.HasColumn("filename") {
		fill("filename", func(i int) string { return t.Get(i, "filename") })
		if t.HasColumn("filename2") {
			fill("filename2", func(i int) string { return t.Get(i, "filename2") })
		} else {
			inferred := 0
			fill("filename2", func(i int) string {
				name := t.Get(i, "filename")
				if !strings.Contains(name, "_R1") && !strings.Contains(name, "_1.") {
					return ""
				}
				inferred++
				return strings.ReplaceAll(strings.ReplaceAll(name, "_R1", "_R2"), "_1.", "_2.")
			})
			if inferred > 0 {
				issues.Add(models.TableIssue(models.SeverityWarning, models.RoleSample, "filename2",
					fmt.Sprintf("inferred filename2 from forward-read names for %d of %d rows", inferred, t.Len())))
			}
		}
	}

	// Title keywords carry the sample context in the lab's naming scheme.
	fill("sample_source", func(i int) string {
		title := out.Get(i, "title")
		if strings.Contains(title, "Human") || strings.Contains(title, "Mouse") {
			return "host-associated"
		}
		return "environmental"
	})
	fill("host", func(i int) string {
		title := out.Get(i, "title")
		switch {
		case strings.Contains(title, "Human"):
			return "Homo sapiens"
		case strings.Contains(title, "Mouse"):
			return "Mus musculus"
		default:
			return ""
		}
	})
	fill("isolation_source", func(i int) string {
		if strings.Contains(out.Get(i, "title"), "Stool") {
			return "Stool"
		}
		return ""
	})

	for _, cc := range contactColumns(cfg) {
		value := cc.value
		fill(cc.name, func(int) string { return value })
	}

	for _, col := range []string{"bioproject_id", "biosample_id"} {
		if !out.HasColumn(col) {
			fill(col, func(int) string { return "" })
		}
	}

	if t.HasColumn("design_description") {
		fill("design_description", func(i int) string { return t.Get(i, "design_description") })
	} else {
		fill("design_description", func(int) string { return "Metagenomic sequencing" })
	}

	return out, issues
}
