package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omicslab/sra-engine/pkg/apperrors"
	"github.com/omicslab/sra-engine/pkg/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadTSV(t *testing.T) {
	path := writeFile(t, "samples.txt",
		"sample_name\tcollection_date\thost\n"+
			"S1\t2021-03-04\tHomo sapiens\n"+
			"S2\t\tMus musculus\n")

	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"sample_name", "collection_date", "host"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "2021-03-04", table.Get(0, "collection_date"))
	assert.Equal(t, "", table.Get(1, "collection_date"))
	assert.Equal(t, "Mus musculus", table.Get(1, "host"))
	assert.Equal(t, 3, table.Width(0))
	assert.Equal(t, 3, table.Width(1))
}

func TestLoadTSVRaggedRows(t *testing.T) {
	path := writeFile(t, "ragged.tsv",
		"sample_name\thost\tisolation_source\n"+
			"S1\tHomo sapiens\n"+
			"S2\tMus musculus\tstool\textra\n")

	table, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, 2, table.Width(0))
	assert.Equal(t, 4, table.Width(1))
	// Short rows read back as empty, overflow cells are dropped.
	assert.Equal(t, "", table.Get(0, "isolation_source"))
	assert.Equal(t, "stool", table.Get(1, "isolation_source"))
}

func TestLoadTSVStripsByteOrderMark(t *testing.T) {
	path := writeFile(t, "bom.txt", "\uFEFFsample_name\thost\nS1\tHomo sapiens\n")

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"sample_name", "host"}, table.Columns)
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.txt", "")

	_, err := Load(path)
	assert.True(t, errors.Is(err, apperrors.ErrEmptyTable))
}

func TestLoadUnsupportedExtension(t *testing.T) {
	for _, name := range []string{"legacy.xls", "metadata.csv", "notes.docx"} {
		path := writeFile(t, name, "sample_name\nS1\n")
		_, err := Load(path)
		assert.True(t, errors.Is(err, apperrors.ErrUnsupportedFormat), "expected unsupported format for %s", name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestWriteTSVRoundTrip(t *testing.T) {
	table := models.NewTable("sample_name", "title")
	table.AppendRow(models.Row{"sample_name": "S1", "title": "Metagenome from stool"})
	table.AppendRow(models.Row{"sample_name": "S2"})

	path := filepath.Join(t.TempDir(), "out.tsv")
	require.NoError(t, Write(table, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, loaded.Columns)
	require.Equal(t, 2, loaded.Len())
	assert.Equal(t, "Metagenome from stool", loaded.Get(0, "title"))
	assert.Equal(t, "", loaded.Get(1, "title"))
}

func TestWriteWorkbookRoundTrip(t *testing.T) {
	table := models.NewTable("sample_name", "organism", "collection_date")
	table.AppendRow(models.Row{"sample_name": "S1", "organism": "Homo sapiens", "collection_date": "2021-03-04"})
	table.AppendRow(models.Row{"sample_name": "S2", "organism": "Mus musculus", "collection_date": "not collected"})

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Write(table, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, loaded.Columns)
	require.Equal(t, 2, loaded.Len())
	assert.Equal(t, "Homo sapiens", loaded.Get(0, "organism"))
	assert.Equal(t, "not collected", loaded.Get(1, "collection_date"))
	assert.Nil(t, loaded.Widths)
}

func TestWriteUnsupportedExtension(t *testing.T) {
	table := models.NewTable("sample_name")
	err := Write(table, filepath.Join(t.TempDir(), "out.parquet"))
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedFormat))
}

func TestValidatedPath(t *testing.T) {
	got := ValidatedPath(filepath.Join("raw", "sample-metadata.txt"), "out")
	assert.Equal(t, filepath.Join("out", "validated-sample-metadata.txt"), got)
}
