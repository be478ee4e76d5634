// Package tabular reads and writes metadata tables. Tab-delimited text files
// (.txt, .tsv) are the primary interchange format; Excel workbooks (.xlsx,
// .xlsm) are accepted because that is what sequencing cores hand over.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/omicslab/sra-engine/pkg/apperrors"
	"github.com/omicslab/sra-engine/pkg/models"
)

// OutputPrefix marks files the engine writes. Inputs are never touched.
const OutputPrefix = "validated-"

// Load reads a metadata table, dispatching on the file extension. Tables come
// back with header order preserved; tab-delimited sources also record per-row
// cell counts so the validator can flag misaligned rows.
func Load(path string) (*models.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".tsv":
		return loadTSV(path)
	case ".xlsx", ".xlsm":
		return loadWorkbook(path)
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, ext)
	}
}

func loadTSV(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, apperrors.ErrEmptyTable)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	table := models.NewTable(header...)
	for _, record := range records[1:] {
		row := models.Row{}
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = cell
		}
		table.Rows = append(table.Rows, row)
		table.Widths = append(table.Widths, len(record))
	}
	return table, nil
}

func loadWorkbook(path string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", path, apperrors.ErrEmptyTable)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, apperrors.ErrEmptyTable)
	}

	// Workbook rows drop trailing empty cells, so cell counts carry no
	// misalignment signal and Widths stays nil.
	header := rows[0]
	table := models.NewTable(header...)
	for _, record := range rows[1:] {
		row := models.Row{}
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = cell
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Write saves a table, dispatching on the file extension the same way Load
// does. Cells absent from a row are written as empty strings.
func Write(t *models.Table, path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".tsv":
		return writeTSV(t, path)
	case ".xlsx", ".xlsm":
		return writeWorkbook(t, path)
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, ext)
	}
}

func writeTSV(t *models.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for i := range t.Rows {
		for j, col := range t.Columns {
			record[j] = t.Get(i, col)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

func writeWorkbook(t *models.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]interface{}, len(t.Columns))
	for i := range t.Rows {
		for j, col := range t.Columns {
			record[j] = t.Get(i, col)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// ValidatedPath places the output file for an input table: the input's base
// name under outDir with the output prefix attached.
func ValidatedPath(inputPath, outDir string) string {
	return filepath.Join(outDir, OutputPrefix+filepath.Base(inputPath))
}
