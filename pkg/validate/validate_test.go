package validate

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omicslab/sra-engine/pkg/apperrors"
	"github.com/omicslab/sra-engine/pkg/config"
	"github.com/omicslab/sra-engine/pkg/models"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	return New(config.Default(), zap.NewNop())
}

// cleanSampleTable carries every required sample column with valid values so
// a validation pass has nothing to repair.
func cleanSampleTable() *models.Table {
	table := models.NewTable(
		"sample_name", "library_ID", "title", "library_strategy",
		"library_source", "library_selection", "library_layout",
		"platform", "instrument_model", "design_description",
		"filetype", "filename", "filename2",
	)
	for i := 1; i <= 2; i++ {
		table.AppendRow(models.Row{
			"sample_name":        fmt.Sprintf("S%d", i),
			"library_ID":         fmt.Sprintf("S%d", i),
			"title":              "Metagenome from stool",
			"library_strategy":   "WGS",
			"library_source":     "METAGENOMIC",
			"library_selection":  "RANDOM",
			"library_layout":     "paired",
			"platform":           "ILLUMINA",
			"instrument_model":   "Illumina NovaSeq X",
			"design_description": "Metagenomic sequencing",
			"filetype":           "fastq",
			"filename":           fmt.Sprintf("S%d_R1.fastq.gz", i),
			"filename2":          fmt.Sprintf("S%d_R2.fastq.gz", i),
		})
	}
	return table
}

func messagesContaining(issues models.IssueList, substr string) models.IssueList {
	var out models.IssueList
	for _, issue := range issues {
		if strings.Contains(issue.Message, substr) {
			out = append(out, issue)
		}
	}
	return out
}

func TestValidateCleanTableIsUnchanged(t *testing.T) {
	v := newValidator(t)
	in := cleanSampleTable()

	out, issues, err := v.Validate(in, models.RoleSample, Options{})
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, in.Rows, out.Rows)

	again, issues2, err := v.Validate(out, models.RoleSample, Options{})
	require.NoError(t, err)
	assert.Empty(t, issues2)
	assert.Equal(t, out.Rows, again.Rows)
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	v := newValidator(t)
	in := models.NewTable("sample_name", "collection_date")
	in.AppendRow(models.Row{"sample_name": "S1", "collection_date": "7/24/2017"})

	out, _, err := v.Validate(in, models.RoleProject, Options{})
	require.NoError(t, err)

	assert.Equal(t, "7/24/2017", in.Get(0, "collection_date"))
	assert.Equal(t, "2017-07-24", out.Get(0, "collection_date"))
}

func TestValidateDropsEmptyKeys(t *testing.T) {
	v := newValidator(t)
	in := cleanSampleTable()
	in.AppendRow(models.Row{"sample_name": "   ", "filename": "orphan_R1.fastq.gz"})

	out, issues, err := v.Validate(in, models.RoleSample, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Len())
	dropIssues := messagesContaining(issues, "dropped 1 row")
	require.Len(t, dropIssues, 1)
	assert.Equal(t, models.SeverityWarning, dropIssues[0].Severity)
}

func TestValidateReportsDuplicateKeysWithoutRemoval(t *testing.T) {
	v := newValidator(t)
	in := models.NewTable("sample_name")
	for _, k := range []string{"a", "a", "b"} {
		in.AppendRow(models.Row{"sample_name": k})
	}

	out, issues, err := v.Validate(in, models.RoleSample, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, out.Len())
	dups := messagesContaining(issues, "appears")
	require.Len(t, dups, 1)
	assert.Equal(t, "a", dups[0].Key)
	assert.Contains(t, dups[0].Message, "appears 2 times")
	assert.Contains(t, dups[0].Message, "[0 1]")
}

func TestValidateCreatesRequiredColumns(t *testing.T) {
	v := newValidator(t)
	in := models.NewTable("sample_name")
	in.AppendRow(models.Row{"sample_name": "S1"})

	out, issues, err := v.Validate(in, models.RoleSample, Options{})
	require.NoError(t, err)

	for _, col := range RequiredColumns(models.RoleSample) {
		assert.True(t, out.HasColumn(col), "missing column %s", col)
	}
	// Columns with configured defaults are created pre-filled.
	assert.Equal(t, "WGS", out.Get(0, "library_strategy"))
	assert.Equal(t, "ILLUMINA", out.Get(0, "platform"))
	assert.Equal(t, "", out.Get(0, "design_description"))
	created := messagesContaining(issues, "created missing required columns")
	require.Len(t, created, 1)
	assert.Contains(t, created[0].Message, "library_ID")
}

func TestValidateFillsDefaults(t *testing.T) {
	v := newValidator(t)
	in := models.NewTable("sample_name", "organism", "collection_date", "geo_loc_name", "lat_lon")
	in.AppendRow(models.Row{"sample_name": "S1", "organism": "", "collection_date": "2020-01-01"})
	in.AppendRow(models.Row{"sample_name": "S2", "organism": "soil metagenome", "collection_date": "2020-01-02"})

	out, issues, err := v.Validate(in, models.RoleProject, Options{})
	require.NoError(t, err)

	assert.Equal(t, "Homo sapiens", out.Get(0, "organism"))
	assert.Equal(t, "soil metagenome", out.Get(1, "organism"))
	fills := messagesContaining(issues, "applied default \"Homo sapiens\"")
	require.Len(t, fills, 1)
	assert.Contains(t, fills[0].Message, "1 empty cell")
}

func TestValidateNormalizesDates(t *testing.T) {
	v := newValidator(t)
	in := models.NewTable("sample_name", "collection_date")
	in.AppendRow(models.Row{"sample_name": "S1", "collection_date": "7/24/2017"})
	in.AppendRow(models.Row{"sample_name": "S2", "collection_date": ""})
	in.AppendRow(models.Row{"sample_name": "S3", "collection_date": "sometime last spring"})

	out, issues, err := v.Validate(in, models.RoleProject, Options{})
	require.NoError(t, err)

	assert.Equal(t, "2017-07-24", out.Get(0, "collection_date"))
	assert.Equal(t, "not collected", out.Get(1, "collection_date"))
	assert.Equal(t, "sometime last spring", out.Get(2, "collection_date"))

	flags := messagesContaining(issues, "unrecognized date")
	require.Len(t, flags, 1)
	assert.Equal(t, 2, flags[0].Row)
	assert.Equal(t, "S3", flags[0].Key)
}

func TestValidateAuditsProjectFormats(t *testing.T) {
	v := newValidator(t)
	in := models.NewTable("sample_name", "geo_loc_name", "lat_lon")
	in.AppendRow(models.Row{"sample_name": "S1", "geo_loc_name": "USA:California", "lat_lon": "36.9513 N 122.0733 W"})
	in.AppendRow(models.Row{"sample_name": "S2", "geo_loc_name": "USA: California", "lat_lon": "36.9513 N 122.0733 W"})

	out, issues, err := v.Validate(in, models.RoleProject, Options{})
	require.NoError(t, err)

	// Lenient normalization leaves the colon form alone; the strict audit
	// still reports it.
	assert.Equal(t, "USA:California", out.Get(0, "geo_loc_name"))
	audits := messagesContaining(issues, "does not match the expected format")
	require.Len(t, audits, 1)
	assert.Equal(t, "geo_loc_name", audits[0].Column)
	assert.Equal(t, "S1", audits[0].Key)
}

func TestValidateNormalizesLatLon(t *testing.T) {
	v := newValidator(t)
	in := models.NewTable("sample_name", "lat_lon")
	in.AppendRow(models.Row{"sample_name": "S1", "lat_lon": "36.9513, -122.0733"})

	out, _, err := v.Validate(in, models.RoleProject, Options{})
	require.NoError(t, err)
	assert.Equal(t, "36.9513 N 122.0733 W", out.Get(0, "lat_lon"))
}

func TestValidateCoercesVocabulary(t *testing.T) {
	v := newValidator(t)
	in := cleanSampleTable()
	in.Set(0, "platform", "illumina")
	in.Set(1, "library_layout", "PE")

	out, issues, err := v.Validate(in, models.RoleSample, Options{})
	require.NoError(t, err)

	// Non-member replaced with the configured default and reported.
	assert.Equal(t, "ILLUMINA", out.Get(0, "platform"))
	replaced := messagesContaining(issues, "invalid platform")
	require.Len(t, replaced, 1)
	assert.Contains(t, replaced[0].Message, `"illumina"`)
	assert.Contains(t, replaced[0].Message, `"ILLUMINA"`)

	// Layout synonyms fold silently.
	assert.Equal(t, "paired", out.Get(1, "library_layout"))
	assert.Empty(t, messagesContaining(issues, "invalid library_layout"))
}

func TestValidateKeepsInvalidValueWithoutDefault(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultValues["filetype"] = ""
	v := New(cfg, zap.NewNop())

	in := cleanSampleTable()
	in.Set(0, "filetype", "bam7")

	out, issues, err := v.Validate(in, models.RoleSample, Options{})
	require.NoError(t, err)

	assert.Equal(t, "bam7", out.Get(0, "filetype"))
	kept := messagesContaining(issues, "no default configured")
	require.Len(t, kept, 1)
	assert.Equal(t, "filetype", kept[0].Column)
}

func TestValidatePairedLayoutRequiresSecondFilename(t *testing.T) {
	v := newValidator(t)
	in := models.NewTable("sample_name", "library_layout", "filename", "filename2")
	in.AppendRow(models.Row{
		"sample_name":    "S1",
		"library_layout": "paired",
		"filename":       "S1_R1.fastq.gz",
		"filename2":      "",
	})

	out, issues, err := v.Validate(in, models.RoleSample, Options{})
	require.NoError(t, err)

	assert.Equal(t, "S1_R1.fastq.gz", out.Get(0, "filename"))
	assert.Equal(t, "paired", out.Get(0, "library_layout"))
	pairing := messagesContaining(issues, "marked paired")
	require.Len(t, pairing, 1)
	assert.Equal(t, "S1", pairing[0].Key)
}

func TestValidateSingleLayoutWithSecondFilename(t *testing.T) {
	v := newValidator(t)
	in := cleanSampleTable()
	in.Set(0, "library_layout", "SE")

	_, issues, err := v.Validate(in, models.RoleSample, Options{})
	require.NoError(t, err)

	// SE folds to single before the cross-field check runs.
	single := messagesContaining(issues, "marked single")
	require.Len(t, single, 1)
	assert.Equal(t, "S1", single[0].Key)
}

func TestValidateHostPresence(t *testing.T) {
	v := newValidator(t)
	in := models.NewTable("sample_name", "sample_source", "host")
	in.AppendRow(models.Row{"sample_name": "S1", "sample_source": "host", "host": ""})
	in.AppendRow(models.Row{"sample_name": "S2", "sample_source": "environment", "host": ""})

	out, issues, err := v.Validate(in, models.RoleProject, Options{})
	require.NoError(t, err)

	assert.Equal(t, "host-associated", out.Get(0, "sample_source"))
	assert.Equal(t, "environmental", out.Get(1, "sample_source"))
	hostIssues := messagesContaining(issues, "host is empty")
	require.Len(t, hostIssues, 1)
	assert.Equal(t, "S1", hostIssues[0].Key)
}

func TestValidateHostCheckSkippedWithoutHostColumn(t *testing.T) {
	v := newValidator(t)
	in := models.NewTable("sample_name", "sample_source")
	in.AppendRow(models.Row{"sample_name": "S1", "sample_source": "host-associated"})

	_, issues, err := v.Validate(in, models.RoleProject, Options{})
	require.NoError(t, err)
	assert.Empty(t, messagesContaining(issues, "host is empty"))
}

func TestValidateBackfillsLibraryID(t *testing.T) {
	v := newValidator(t)
	in := cleanSampleTable()
	in.Set(0, "library_ID", "")
	in.Set(1, "library_ID", "custom-lib")

	out, issues, err := v.Validate(in, models.RoleSample, Options{})
	require.NoError(t, err)

	assert.Equal(t, "S1", out.Get(0, "library_ID"))
	assert.Equal(t, "custom-lib", out.Get(1, "library_ID"))
	require.Len(t, messagesContaining(issues, "library_ID"), 1)
}

func TestValidateFlagsMisalignedRows(t *testing.T) {
	v := newValidator(t)
	in := cleanSampleTable()
	in.Widths = []int{len(in.Columns), len(in.Columns) - 2}

	_, issues, err := v.Validate(in, models.RoleSample, Options{})
	require.NoError(t, err)

	misaligned := messagesContaining(issues, "cells but the header")
	require.Len(t, misaligned, 1)
	assert.Equal(t, 1, misaligned[0].Row)
}

func TestValidateStrictMode(t *testing.T) {
	v := newValidator(t)
	in := models.NewTable("sample_name", "collection_date")
	in.AppendRow(models.Row{"sample_name": "S1", "collection_date": "garbage"})

	_, issues, err := v.Validate(in, models.RoleProject, Options{Strict: true})
	assert.True(t, errors.Is(err, apperrors.ErrStrictValidation))
	assert.NotEmpty(t, issues)

	_, lenientIssues, err := v.Validate(in, models.RoleProject, Options{Strict: false})
	assert.NoError(t, err)
	assert.Equal(t, len(issues), len(lenientIssues))
}

func TestValidateStrictModeCleanTable(t *testing.T) {
	v := newValidator(t)
	_, issues, err := v.Validate(cleanSampleTable(), models.RoleSample, Options{Strict: true})
	assert.NoError(t, err)
	assert.Empty(t, issues)
}

func TestRequiredColumnsStartWithKey(t *testing.T) {
	for _, role := range []models.TableRole{models.RoleSample, models.RoleProject} {
		cols := RequiredColumns(role)
		require.NotEmpty(t, cols)
		assert.Equal(t, models.KeyColumn, cols[0])
	}
}
