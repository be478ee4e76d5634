// Package testhelpers provides shared fixtures for package tests: on-disk
// metadata files, stub sequence files, and canned in-memory tables that pass
// validation cleanly.
package testhelpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omicslab/sra-engine/pkg/models"
)

// stubRead is the payload written into stub sequence files. Content is never
// parsed; resolution only checks presence.
const stubRead = "@read1\nACGT\n+\nFFFF\n"

// WriteTSV writes content to name under dir and returns the full path.
func WriteTSV(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// TouchFiles creates each named file under dir, making parent directories as
// needed, and returns the created paths in input order.
func TouchFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(stubRead), 0o644); err != nil {
			t.Fatalf("failed to touch %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths
}

// TSV renders a table as tab-separated text, header first.
func TSV(t *models.Table) string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Columns, "\t"))
	b.WriteByte('\n')
	for i := 0; i < t.Len(); i++ {
		cells := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			cells[j] = t.Get(i, col)
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// SampleTable returns a two-sample metadata table that validates with no
// issues. Keys are S1 and S2 with paired fastq references.
func SampleTable() *models.Table {
	t := models.NewTable(
		"sample_name", "library_ID", "title", "library_strategy",
		"library_source", "library_selection", "library_layout", "platform",
		"instrument_model", "design_description", "filetype",
		"filename", "filename2",
	)
	for _, key := range []string{"S1", "S2"} {
		t.AppendRow(models.Row{
			"sample_name":        key,
			"library_ID":         key,
			"title":              "Metagenome from " + key,
			"library_strategy":   "WGS",
			"library_source":     "METAGENOMIC",
			"library_selection":  "RANDOM",
			"library_layout":     "paired",
			"platform":           "ILLUMINA",
			"instrument_model":   "Illumina NovaSeq X",
			"design_description": "Metagenomic sequencing",
			"filetype":           "fastq",
			"filename":           key + "_R1.fastq.gz",
			"filename2":          key + "_R2.fastq.gz",
		})
	}
	return t
}

// ProjectTable returns project metadata keyed like SampleTable that
// validates with no issues.
func ProjectTable() *models.Table {
	t := models.NewTable(
		"sample_name", "organism", "bioproject_id", "project_title",
		"project_description", "sample_source", "collection_date",
		"geo_loc_name", "lat_lon", "library_strategy", "library_source",
		"library_selection", "platform", "instrument_model",
		"env_biome", "env_feature", "env_material",
	)
	for _, key := range []string{"S1", "S2"} {
		t.AppendRow(models.Row{
			"sample_name":         key,
			"organism":            "human gut metagenome",
			"bioproject_id":       "PRJNA901234",
			"project_title":       "Infant gut survey",
			"project_description": "Longitudinal stool metagenomes",
			"sample_source":       "host-associated",
			"collection_date":     "2021-03-11",
			"geo_loc_name":        "United States: Ohio: Cincinnati",
			"lat_lon":             "39.10 N 84.51 W",
			"library_strategy":    "WGS",
			"library_source":      "METAGENOMIC",
			"library_selection":   "RANDOM",
			"platform":            "ILLUMINA",
			"instrument_model":    "Illumina NovaSeq X",
			"env_biome":           "human gut",
			"env_feature":         "intestine",
			"env_material":        "stool",
		})
	}
	return t
}
