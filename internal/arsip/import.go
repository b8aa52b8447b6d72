package arsip

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"arsip-api/internal/apperr"
	"arsip-api/internal/identifier"
	"arsip-api/internal/logs"
)

// ParseCSVReader reads a CSV stream and returns headers + data rows.
func ParseCSVReader(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv file: %w", err)
	}
	if len(allRows) < 1 {
		return nil, nil, fmt.Errorf("csv file is empty")
	}
	return allRows[0], allRows[1:], nil
}

// ParseExcelReader reads the first sheet of an XLSX stream and returns
// headers + data rows, padding short rows to the header width.
func ParseExcelReader(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 1 {
		return nil, nil, fmt.Errorf("excel file is empty")
	}

	headers := rows[0]
	var dataRows [][]string
	for _, row := range rows[1:] {
		newRow := make([]string, len(headers))
		for i := range headers {
			if i < len(row) {
				newRow[i] = row[i]
			}
		}
		dataRows = append(dataRows, newRow)
	}
	return headers, dataRows, nil
}

// Import maps parsed spreadsheet rows onto schema columns and inserts them
// with InsertBatch semantics: per-row data failures are reported and skipped,
// defaults fill omitted fields, a storage failure rolls everything back.
// mapping is column name -> source header and may only name schema columns
// (or nomor_arsip); unmapped columns fall through to the type's default values.
func (s *RowService) Import(jenisID int64, headers []string, dataRows [][]string, mapping map[string]string, actorID int64) (*BatchResult, error) {
	if len(mapping) == 0 {
		return nil, apperr.Validationf("mapping kolom wajib diisi")
	}

	_, fields, err := s.target(jenisID)
	if err != nil {
		return nil, err
	}
	allowed := map[string]bool{"nomor_arsip": true}
	for _, f := range fields {
		allowed[f.NamaKolom] = true
	}

	headerIdx := make(map[string]int, len(headers))
	for i, h := range headers {
		headerIdx[h] = i
	}

	colToIdx := make(map[string]int, len(mapping))
	for col, header := range mapping {
		if !identifier.IsSafeIdentifier(col) {
			return nil, apperr.Validationf("nama kolom %q tidak valid", col)
		}
		if !allowed[col] {
			return nil, apperr.Validationf("kolom %q tidak ada pada schema", col)
		}
		idx, ok := headerIdx[header]
		if !ok {
			return nil, apperr.Validationf("header %q tidak ada di file", header)
		}
		colToIdx[col] = idx
	}

	rows := make([]map[string]interface{}, 0, len(dataRows))
	for _, raw := range dataRows {
		row := make(map[string]interface{}, len(colToIdx))
		for col, idx := range colToIdx {
			if idx < len(raw) {
				row[col] = raw[idx]
			}
		}
		rows = append(rows, row)
	}

	return s.insertBatch(jenisID, rows, actorID, logs.AksiImportArsip)
}
